package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

type readConfig struct {
	autoOrient bool
}

// ReadOption configures ReadImage.
type ReadOption func(*readConfig)

// WithAutoOrientation applies the EXIF orientation tag of JPEG sources
// before conversion. Disabled by default so pixel data matches the stored
// raster exactly.
func WithAutoOrientation(enabled bool) ReadOption {
	return func(c *readConfig) {
		c.autoOrient = enabled
	}
}

// ReadImage decodes the image at path into a dense RGB buffer.
//
// Parameters:
//   - path: File path of a PNG, JPEG, GIF, BMP, TIFF or WebP image. The format
//     is detected from the file contents. Only the first frame of an
//     animated GIF is read.
//   - opts: Optional decode settings.
//
// Returns:
//   - *RGBImage: The pixels as a [height, width, 3] uint8 tensor.
//   - error: A *DecodeError if the file cannot be opened, the format is not
//     recognised, or the data is corrupt.
//
// The file is closed before ReadImage returns.
func ReadImage(path string, opts ...ReadOption) (*RGBImage, error) {
	var cfg readConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(cfg.autoOrient))
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return NewRGBImage(img), nil
}

// ImageInfo contains metadata about an image file.
//
// It tells a caller, before reading pixels, whether the conversion to 8-bit
// RGB will discard information.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the format name reported by the decoder: "png", "jpeg",
	// "gif", "bmp", "tiff" or "webp".
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether any pixel is not fully opaque.
	HasAlpha bool `json:"has_alpha"`

	// LossyConversion is true when reading the image as 8-bit RGB drops
	// precision or alpha.
	LossyConversion bool `json:"lossy_conversion"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// ReadImageInfo decodes the image at path and reports its native layout.
//
// # Color Depth Detection
//
// Color depth is determined by the decoded Go image type:
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
//   - All other types -> "8-bit"
//
// HasAlpha is true only when at least one pixel is not fully opaque, so an
// RGB PNG decoded as *image.RGBA reports false.
//
// # Errors
//
//   - Returns a *DecodeError if the file does not exist or cannot be read
//   - Returns a *DecodeError if the data is not a recognised image format
func ReadImageInfo(path string) (*ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("failed to stat file: %w", err)}
	}

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	colorDepth := "8-bit"
	switch img.(type) {
	case *image.RGBA64, *image.NRGBA64, *image.Gray16:
		colorDepth = "16-bit"
	}

	hasAlpha := false
	if o, ok := img.(interface{ Opaque() bool }); ok {
		hasAlpha = !o.Opaque()
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:           bounds.Dx(),
		Height:          bounds.Dy(),
		Format:          format,
		ColorDepth:      colorDepth,
		HasAlpha:        hasAlpha,
		LossyConversion: hasAlpha || colorDepth != "8-bit",
		FileSizeBytes:   stat.Size(),
	}, nil
}
