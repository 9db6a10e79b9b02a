package dlpack

import (
	"errors"
	"fmt"
	"math"
	"unsafe"
)

var (
	// ErrReleased is returned when a ManagedTensor is used after Release.
	ErrReleased = errors.New("dlpack: tensor has been released")

	// ErrNotContiguous is returned when a dense row-major view is required
	// but the tensor declares other strides.
	ErrNotContiguous = errors.New("dlpack: tensor is not contiguous")

	// ErrDTypeMismatch is returned when a typed view is requested for the
	// wrong element type.
	ErrDTypeMismatch = errors.New("dlpack: dtype mismatch")

	// ErrNilData is returned for a tensor with elements but no data pointer.
	ErrNilData = errors.New("dlpack: nil data pointer for non-empty tensor")

	// ErrNegativeDim is returned when a shape entry is below zero.
	ErrNegativeDim = errors.New("dlpack: negative dimension")

	// ErrStridesRank is returned when strides and shape differ in length.
	ErrStridesRank = errors.New("dlpack: strides rank does not match shape rank")

	// ErrOutOfBounds is returned when the elements do not fit the buffer or
	// their byte count cannot be represented.
	ErrOutOfBounds = errors.New("dlpack: byte offset beyond backing buffer")

	// ErrDeviceNotCPU is returned when host access is requested for a tensor
	// on another device.
	ErrDeviceNotCPU = errors.New("dlpack: tensor is not in host memory")
)

// Tensor is the accessor set a producer implements to describe a buffer.
//
// Method order follows the DLTensor struct. Implementations must return the
// same values on every call.
type Tensor interface {
	// DataPtr returns the address of the first byte of the buffer, before
	// ByteOffset is applied. It may be nil for a tensor with no elements.
	DataPtr() unsafe.Pointer

	// ByteOffset is added to DataPtr to reach the first element.
	ByteOffset() uint64

	// Shape returns the size of each dimension.
	Shape() []int64

	// Device reports where the buffer lives.
	Device() Device

	// DType reports the element type.
	DType() DataType

	// Strides returns per-dimension strides in elements, or nil for a dense
	// row-major layout.
	Strides() []int64
}

// Bytes is implemented by host-memory tensors that can expose their backing
// slice. The slice starts at DataPtr; consumers apply ByteOffset themselves.
// It lets a consumer bounds-check instead of trusting the raw pointer. A nil
// slice means no backing slice is available and the pointer is authoritative.
type Bytes interface {
	Bytes() []byte
}

// NumElements returns the product of shape. An empty shape is a scalar.
func NumElements(shape []int64) int64 {
	n := int64(1)
	for _, d := range shape {
		n *= d
	}
	return n
}

// CheckedNumElements is NumElements that reports false instead of wrapping
// when the product does not fit in an int.
func CheckedNumElements(shape []int64) (int, bool) {
	n := 1
	for _, d := range shape {
		if d < 0 || int64(int(d)) != d {
			return 0, false
		}
		if d != 0 && n > math.MaxInt/int(d) {
			return 0, false
		}
		n *= int(d)
	}
	return n, true
}

// ContiguousStrides returns the dense row-major strides for shape.
func ContiguousStrides(shape []int64) []int64 {
	strides := make([]int64, len(shape))
	acc := int64(1)
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= shape[i]
	}
	return strides
}

// IsContiguous reports whether t is laid out densely in row-major order.
// Strides of size-1 dimensions are ignored, matching common producers that
// emit arbitrary strides for broadcastable axes.
func IsContiguous(t Tensor) bool {
	strides := t.Strides()
	if strides == nil {
		return true
	}
	shape := t.Shape()
	if len(strides) != len(shape) {
		return false
	}
	want := ContiguousStrides(shape)
	for i := range shape {
		if shape[i] == 1 {
			continue
		}
		if strides[i] != want[i] {
			return false
		}
	}
	return true
}

// NBytes returns the number of bytes spanned by the elements of a dense t.
func NBytes(t Tensor) int64 {
	return NumElements(t.Shape()) * int64(t.DType().ItemSize())
}

// Validate checks the structural invariants of a descriptor.
func Validate(t Tensor) error {
	shape := t.Shape()
	for i, d := range shape {
		if d < 0 {
			return fmt.Errorf("%w: shape[%d] = %d", ErrNegativeDim, i, d)
		}
	}
	if s := t.Strides(); s != nil && len(s) != len(shape) {
		return fmt.Errorf("%w: %d strides for %d dimensions", ErrStridesRank, len(s), len(shape))
	}
	if t.DataPtr() == nil && NumElements(shape) > 0 {
		return ErrNilData
	}
	return nil
}

// HostBytes returns the host memory of t starting at its byte offset.
//
// When t implements Bytes and returns a non-nil slice, the result is the
// remainder of that slice, which may be shorter or longer than n; callers
// compare the length against what the shape requires. Otherwise the data
// pointer is trusted to address at least ByteOffset+n bytes and exactly n
// bytes are returned.
func HostBytes(t Tensor, n int) ([]byte, error) {
	if t.Device().Type != DeviceCPU {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotCPU, t.Device())
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrOutOfBounds, n)
	}
	off := t.ByteOffset()
	if b, ok := t.(Bytes); ok {
		if raw := b.Bytes(); raw != nil {
			if off > uint64(len(raw)) {
				return nil, fmt.Errorf("%w: offset %d, buffer %d", ErrOutOfBounds, off, len(raw))
			}
			return raw[off:], nil
		}
	}
	if n == 0 {
		return []byte{}, nil
	}
	ptr := t.DataPtr()
	if ptr == nil {
		return nil, ErrNilData
	}
	return unsafe.Slice((*byte)(unsafe.Add(ptr, off)), n), nil
}
