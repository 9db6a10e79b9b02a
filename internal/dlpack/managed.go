package dlpack

import (
	"fmt"
	"runtime"
	"unsafe"
)

// DLTensor mirrors the C DLTensor struct field for field.
//
// Shape and Strides point into memory owned by the ManagedTensor that
// produced it and stay valid until that tensor is released.
type DLTensor struct {
	Data       unsafe.Pointer
	Device     Device
	NDim       int32
	DType      DataType
	Shape      *int64
	Strides    *int64
	ByteOffset uint64
}

// ManagedTensor is an owning handle around a Tensor.
//
// It copies the descriptor at construction, pins the producer's buffer so
// the exported data pointer cannot move or be collected, and keeps the
// producer reachable until Release. After Release every accessor reports an
// empty descriptor and the fallible ones return ErrReleased.
type ManagedTensor struct {
	src        Tensor
	data       unsafe.Pointer
	byteOffset uint64
	shape      []int64
	strides    []int64
	device     Device
	dtype      DataType
	pinner     runtime.Pinner
	released   bool
}

// NewManagedTensor validates t and takes a keep-alive reference to it.
func NewManagedTensor(t Tensor) (*ManagedTensor, error) {
	if err := Validate(t); err != nil {
		return nil, err
	}

	m := &ManagedTensor{
		src:        t,
		data:       t.DataPtr(),
		byteOffset: t.ByteOffset(),
		shape:      append([]int64(nil), t.Shape()...),
		device:     t.Device(),
		dtype:      t.DType(),
	}
	if s := t.Strides(); s != nil {
		m.strides = append([]int64(nil), s...)
	}

	if m.data != nil {
		m.pinner.Pin(m.data)
	}
	if len(m.shape) > 0 {
		m.pinner.Pin(&m.shape[0])
	}
	if len(m.strides) > 0 {
		m.pinner.Pin(&m.strides[0])
	}
	return m, nil
}

// DataPtr returns the pinned data pointer, nil after Release.
func (m *ManagedTensor) DataPtr() unsafe.Pointer { return m.data }

// ByteOffset returns the offset of the first element.
func (m *ManagedTensor) ByteOffset() uint64 { return m.byteOffset }

// Shape returns the copied shape.
func (m *ManagedTensor) Shape() []int64 { return m.shape }

// Device returns the device the buffer lives on.
func (m *ManagedTensor) Device() Device { return m.device }

// DType returns the element type.
func (m *ManagedTensor) DType() DataType { return m.dtype }

// Strides returns the copied strides, nil for a dense layout.
func (m *ManagedTensor) Strides() []int64 { return m.strides }

// Bytes returns the producer's backing slice when it exposes one, and nil
// otherwise so that HostBytes falls back to the pinned pointer.
func (m *ManagedTensor) Bytes() []byte {
	if m.released {
		return nil
	}
	if b, ok := m.src.(Bytes); ok {
		return b.Bytes()
	}
	return nil
}

// NDim returns the number of dimensions.
func (m *ManagedTensor) NDim() int { return len(m.shape) }

// NBytes returns the size in bytes of the tensor's elements.
func (m *ManagedTensor) NBytes() int64 { return NBytes(m) }

// Released reports whether Release has been called.
func (m *ManagedTensor) Released() bool { return m.released }

// Export returns the C-layout descriptor.
func (m *ManagedTensor) Export() (DLTensor, error) {
	if m.released {
		return DLTensor{}, ErrReleased
	}
	dl := DLTensor{
		Data:       m.data,
		Device:     m.device,
		NDim:       int32(len(m.shape)),
		DType:      m.dtype,
		ByteOffset: m.byteOffset,
	}
	if len(m.shape) > 0 {
		dl.Shape = &m.shape[0]
	}
	if len(m.strides) > 0 {
		dl.Strides = &m.strides[0]
	}
	return dl, nil
}

// AsBytes returns a read view of a dense uint8 tensor. The slice aliases the
// producer's buffer and must not be used after Release.
func (m *ManagedTensor) AsBytes() ([]byte, error) {
	if m.released {
		return nil, ErrReleased
	}
	if m.dtype != U8 {
		return nil, fmt.Errorf("%w: want %s, have %s", ErrDTypeMismatch, U8, m.dtype)
	}
	if !IsContiguous(m) {
		return nil, ErrNotContiguous
	}
	n, ok := CheckedNumElements(m.shape)
	if !ok {
		return nil, fmt.Errorf("%w: shape %v is too large", ErrOutOfBounds, m.shape)
	}
	buf, err := HostBytes(m, n)
	if err != nil {
		return nil, err
	}
	if len(buf) < n {
		return nil, fmt.Errorf("%w: need %d bytes, buffer has %d", ErrOutOfBounds, n, len(buf))
	}
	return buf[:n:n], nil
}

// Release unpins the buffer and drops the reference to the producer.
// Calling it more than once is a no-op.
func (m *ManagedTensor) Release() {
	if m.released {
		return
	}
	m.pinner.Unpin()
	m.src = nil
	m.data = nil
	m.shape = nil
	m.strides = nil
	m.byteOffset = 0
	m.released = true
}
