// Package imaging converts between image files and DLPack tensors.
//
// ReadImage decodes a file into an RGBImage, a dense [height, width, 3]
// uint8 buffer that implements dlpack.Tensor. WriteImage does the reverse
// for any tensor with that layout, choosing the output format from the file
// extension.
//
// # Pixel Layout
//
// Pixels are stored row-major with channels interleaved:
//
//	offset(y, x, c) = (y*width + x)*3 + c
//
// Row 0 is the top of the image. There is no padding between rows.
//
// # Conversion
//
// Every source is converted to 8-bit RGB. Alpha is discarded without
// blending and 16-bit samples are truncated to their high byte, so the
// conversion is lossy for translucent or high-depth images. ReadImageInfo
// reports when that happens.
//
// # Error Handling
//
// Failures are returned, never raised as panics:
//   - *DecodeError: the source cannot be opened, is not an image, or is corrupt
//   - *ShapeMismatchError: the tensor is not a dense 3-channel uint8 host tensor
//     or its buffer length disagrees with its shape
//   - *EncodeError: the destination extension is unknown or the write fails
//
// Use errors.As to recover the concrete type.
//
// # Thread Safety
//
// All functions are stateless. An RGBImage may be read concurrently but must
// not be mutated while a tensor borrowed from it is in use.
package imaging
