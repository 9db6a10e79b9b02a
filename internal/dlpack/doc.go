// Package dlpack describes tensors using the DLPack interchange contract.
//
// A producer exposes a buffer by implementing Tensor: a data pointer, a byte
// offset, a shape, a device, an element type and optional strides. The field
// set and the numeric codes of DeviceType and DataTypeCode follow the DLPack
// C ABI so that a descriptor can be handed to another runtime without copying
// the underlying memory.
//
// # Ownership
//
// A Tensor is a borrowed view. The producer owns the buffer and the consumer
// must not use the data pointer after the producer releases it. ManagedTensor
// makes that contract explicit: it pins the producer's buffer for as long as
// the handle is alive and invalidates its accessors on Release.
//
// # Layout
//
// Strides are expressed in elements, not bytes. A nil Strides result means the
// tensor is dense and row-major (the last dimension varies fastest).
//
// # Thread Safety
//
// Descriptors are read-only after construction. ManagedTensor is not safe for
// concurrent Release and access; callers that share a handle between
// goroutines must synchronize.
package dlpack
