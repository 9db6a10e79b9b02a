package server

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ironsheep/dlparkimg/internal/dlpack"
)

var (
	// ErrUnknownHandle is returned for a handle that was never issued or has
	// already been released.
	ErrUnknownHandle = errors.New("unknown tensor handle")

	// ErrRegistryFull is returned when the live handle limit is reached.
	ErrRegistryFull = errors.New("tensor registry is full")
)

// TensorRegistry owns the tensors handed out to the client.
//
// A JSON-RPC client cannot hold a pointer, so each exported tensor is kept
// alive here under an opaque UUID until the client releases it. The
// registry is the owner in the DLPack sense: removing an entry releases the
// ManagedTensor and with it the pinned pixel buffer.
//
// TensorRegistry is safe for concurrent use.
type TensorRegistry struct {
	mu      sync.RWMutex
	tensors map[string]*dlpack.ManagedTensor
	limit   int
}

// NewTensorRegistry creates an empty registry holding at most limit tensors.
// A limit of zero means unlimited.
func NewTensorRegistry(limit int) *TensorRegistry {
	return &TensorRegistry{
		tensors: make(map[string]*dlpack.ManagedTensor),
		limit:   limit,
	}
}

// Add takes ownership of t and returns its handle. On error the caller still
// owns t.
func (r *TensorRegistry) Add(t *dlpack.ManagedTensor) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.limit > 0 && len(r.tensors) >= r.limit {
		return "", fmt.Errorf("%w: %d live tensors", ErrRegistryFull, r.limit)
	}
	handle := uuid.NewString()
	r.tensors[handle] = t
	return handle, nil
}

// Get returns the tensor registered under handle.
func (r *TensorRegistry) Get(handle string) (*dlpack.ManagedTensor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tensors[handle]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHandle, handle)
	}
	return t, nil
}

// Release removes handle and releases its tensor.
func (r *TensorRegistry) Release(handle string) error {
	r.mu.Lock()
	t, ok := r.tensors[handle]
	delete(r.tensors, handle)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownHandle, handle)
	}
	t.Release()
	return nil
}

// Clear releases every registered tensor.
func (r *TensorRegistry) Clear() {
	r.mu.Lock()
	tensors := r.tensors
	r.tensors = make(map[string]*dlpack.ManagedTensor)
	r.mu.Unlock()

	for _, t := range tensors {
		t.Release()
	}
}

// Len returns the number of live tensors.
func (r *TensorRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tensors)
}
