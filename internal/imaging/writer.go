package imaging

import (
	"fmt"
	"image/png"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/dlparkimg/internal/dlpack"
)

// DefaultJPEGQuality is used when WithJPEGQuality is not given.
const DefaultJPEGQuality = 95

type writeConfig struct {
	jpegQuality    int
	pngCompression png.CompressionLevel
}

// WriteOption configures WriteImage.
type WriteOption func(*writeConfig)

// WithJPEGQuality sets the quality (1-100) for JPEG destinations.
func WithJPEGQuality(quality int) WriteOption {
	return func(c *writeConfig) {
		c.jpegQuality = quality
	}
}

// WithPNGCompression sets the compression level for PNG destinations.
func WithPNGCompression(level png.CompressionLevel) WriteOption {
	return func(c *writeConfig) {
		c.pngCompression = level
	}
}

// WriteResult describes a file produced by WriteImage.
type WriteResult struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// WriteImage encodes a [height, width, 3] uint8 host tensor to path.
//
// The output format is chosen from the file extension (.png, .jpg/.jpeg,
// .gif, .bmp, .tif/.tiff). An existing file is overwritten.
//
// # Errors
//
//   - *ShapeMismatchError if the tensor is not a dense 3-channel uint8 host
//     tensor or its buffer length differs from height*width*3
//   - *EncodeError wrapping ErrUnsupportedFormat for an unknown extension
//   - *EncodeError if the file cannot be created or encoding fails
func WriteImage(path string, t dlpack.Tensor, opts ...WriteOption) (*WriteResult, error) {
	cfg := writeConfig{
		jpegQuality:    DefaultJPEGQuality,
		pngCompression: png.DefaultCompression,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	pix, w, h, err := rgbPixels(t)
	if err != nil {
		return nil, err
	}

	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return nil, &EncodeError{Path: path, Err: err}
	}

	img := toNRGBA(pix, w, h)
	if err := imaging.Save(img, path,
		imaging.JPEGQuality(cfg.jpegQuality),
		imaging.PNGCompressionLevel(cfg.pngCompression),
	); err != nil {
		return nil, &EncodeError{Path: path, Err: err}
	}

	return &WriteResult{
		Path:   path,
		Width:  w,
		Height: h,
		Format: format.String(),
	}, nil
}

// rgbPixels checks that t can be viewed as a dense RGB pixel grid and returns
// its bytes along with the image width and height.
func rgbPixels(t dlpack.Tensor) ([]byte, int, int, error) {
	shape := t.Shape()
	mismatch := func(format string, args ...interface{}) error {
		return &ShapeMismatchError{Shape: shape, Reason: fmt.Sprintf(format, args...)}
	}

	if t.Device().Type != dlpack.DeviceCPU {
		return nil, 0, 0, mismatch("device %s is not host memory", t.Device())
	}
	if t.DType() != dlpack.U8 {
		return nil, 0, 0, mismatch("dtype %s, want %s", t.DType(), dlpack.U8)
	}
	if len(shape) != 3 {
		return nil, 0, 0, mismatch("%d dimensions, want 3", len(shape))
	}
	if shape[2] != Channels {
		return nil, 0, 0, mismatch("%d channels, want %d", shape[2], Channels)
	}
	if shape[0] < 0 || shape[1] < 0 || shape[0] > math.MaxInt32 || shape[1] > math.MaxInt32 {
		return nil, 0, 0, mismatch("dimensions out of range")
	}
	if shape[1] != 0 && shape[0] > math.MaxInt/(shape[1]*Channels) {
		return nil, 0, 0, mismatch("%dx%d pixels overflow the addressable size", shape[1], shape[0])
	}
	if !dlpack.IsContiguous(t) {
		return nil, 0, 0, &ShapeMismatchError{Shape: shape, Reason: fmt.Sprintf("strides %v", t.Strides()), Err: dlpack.ErrNotContiguous}
	}

	h, w := int(shape[0]), int(shape[1])
	want := h * w * Channels
	pix, err := dlpack.HostBytes(t, want)
	if err != nil {
		return nil, 0, 0, &ShapeMismatchError{Shape: shape, Reason: "buffer is not readable", Err: err}
	}
	if len(pix) != want {
		return nil, 0, 0, mismatch("buffer holds %d bytes, want %d", len(pix), want)
	}
	return pix, w, h, nil
}
