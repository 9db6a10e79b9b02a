package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ironsheep/dlparkimg/internal/config"
	"github.com/ironsheep/dlparkimg/internal/logging"
	"github.com/ironsheep/dlparkimg/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("dlparkimg %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("dlparkimg - MCP server exchanging images as DLPack tensors")
			fmt.Println()
			fmt.Println("Usage: dlparkimg [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (also read from ./.env):")
			fmt.Printf("  %s=info       Log level (debug, info, warn, error)\n", config.EnvLogLevel)
			fmt.Printf("  %s=64       Maximum live tensor handles\n", config.EnvMaxTensors)
			fmt.Printf("  %s=95      Default JPEG quality (1-100)\n", config.EnvJPEGQuality)
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// stdout is for MCP protocol
	logger := logging.New(os.Stderr, cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit),
		zap.Int("max_tensors", cfg.MaxTensors),
	)

	srv := server.New(cfg, logger)
	if err := srv.Run(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
