// Package server implements the MCP (Model Context Protocol) server that
// exchanges images as DLPack tensors.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Tensor exchange:
//   - read_image: Decode a file into a [height, width, 3] uint8 tensor handle
//   - write_image: Encode a tensor handle to a file
//   - tensor_info: Describe a tensor handle
//   - release_tensor: Free a tensor handle
//
// Inspection:
//   - image_info: Report a file's native format, depth and alpha
//
// Diagnostics:
//   - sum_as_string: Add two unsigned integers
//
// # Tensor Handles
//
// A handle is an opaque UUID naming a dlpack.ManagedTensor held by the
// server's TensorRegistry. The registry keeps the pixel buffer alive and
// pinned until release_tensor is called or the server stops. The number of
// live handles is capped by config.Config.MaxTensors.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: ToolErrorData with a stable kind ("decode_error",
//     "shape_mismatch", "encode_error", "unknown_handle", "registry_full",
//     "invalid_arguments", "error") and the Go error string
//
// No tool failure terminates the server.
//
// # Usage
//
//	srv := server.New(cfg, logger)
//	if err := srv.Run(); err != nil {
//	    logger.Fatal("server error", zap.Error(err))
//	}
package server
