package imaging

import (
	"fmt"

	"github.com/disintegration/imaging"
)

// ErrUnsupportedFormat is wrapped by EncodeError when the destination
// extension does not name a known format.
var ErrUnsupportedFormat = imaging.ErrUnsupportedFormat

// DecodeError reports that a source file could not be read or decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ShapeMismatchError reports a tensor that cannot be viewed as a dense
// [H, W, 3] uint8 pixel grid.
type ShapeMismatchError struct {
	Shape  []int64
	Reason string
	Err    error
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("tensor of shape %v is not an RGB image: %s", e.Shape, e.Reason)
}

func (e *ShapeMismatchError) Unwrap() error { return e.Err }

// EncodeError reports that an image could not be encoded or written.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
