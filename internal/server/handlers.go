package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/bits"
	"strconv"

	"go.uber.org/zap"

	"github.com/ironsheep/dlparkimg/internal/dlpack"
	"github.com/ironsheep/dlparkimg/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "read_image", "write_image").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// Error kinds reported in the data field of a failed tool call.
const (
	KindDecode        = "decode_error"
	KindShapeMismatch = "shape_mismatch"
	KindEncode        = "encode_error"
	KindUnknownHandle = "unknown_handle"
	KindRegistryFull  = "registry_full"
	KindInvalidArgs   = "invalid_arguments"
	KindInternal      = "error"
)

// ToolErrorData is the data payload of a tool execution error.
type ToolErrorData struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type invalidArgsError struct{ err error }

func (e *invalidArgsError) Error() string { return "invalid arguments: " + e.err.Error() }

func (e *invalidArgsError) Unwrap() error { return e.err }

func invalidArgs(format string, args ...interface{}) error {
	return &invalidArgsError{err: fmt.Errorf(format, args...)}
}

// errorKind classifies err for ToolErrorData.
func errorKind(err error) string {
	var (
		decodeErr *imaging.DecodeError
		shapeErr  *imaging.ShapeMismatchError
		encodeErr *imaging.EncodeError
		argsErr   *invalidArgsError
	)
	switch {
	case errors.As(err, &decodeErr):
		return KindDecode
	case errors.As(err, &shapeErr):
		return KindShapeMismatch
	case errors.As(err, &encodeErr):
		return KindEncode
	case errors.Is(err, ErrUnknownHandle):
		return KindUnknownHandle
	case errors.Is(err, ErrRegistryFull):
		return KindRegistryFull
	case errors.As(err, &argsErr):
		return KindInvalidArgs
	default:
		return KindInternal
	}
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000
// and a ToolErrorData payload.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		kind := errorKind(err)
		s.log.Warn("tool failed", zap.String("tool", params.Name), zap.String("kind", kind), zap.Error(err))
		return s.errorResponse(req.ID, -32000, "Tool execution failed", ToolErrorData{
			Kind:    kind,
			Message: err.Error(),
		})
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Tensor exchange
	case "read_image":
		return s.handleReadImage(args)
	case "write_image":
		return s.handleWriteImage(args)
	case "tensor_info":
		return s.handleTensorInfo(args)
	case "release_tensor":
		return s.handleReleaseTensor(args)

	// Inspection
	case "image_info":
		return s.handleImageInfo(args)

	// Diagnostics
	case "sum_as_string":
		return s.handleSumAsString(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return invalidArgs("missing arguments")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return &invalidArgsError{err: err}
	}
	return nil
}

// TensorDescriptor is the JSON view of a registered tensor.
type TensorDescriptor struct {
	Handle     string  `json:"handle"`
	Shape      []int64 `json:"shape"`
	DType      string  `json:"dtype"`
	Device     string  `json:"device"`
	ByteOffset uint64  `json:"byte_offset"`
	// Strides is null for a dense row-major tensor.
	Strides []int64 `json:"strides"`
	NBytes  int64   `json:"nbytes"`
}

func describe(handle string, t *dlpack.ManagedTensor) *TensorDescriptor {
	return &TensorDescriptor{
		Handle:     handle,
		Shape:      t.Shape(),
		DType:      t.DType().String(),
		Device:     t.Device().Type.String(),
		ByteOffset: t.ByteOffset(),
		Strides:    t.Strides(),
		NBytes:     t.NBytes(),
	}
}

// === Tensor Exchange Handlers ===

type readImageArgs struct {
	Path       string `json:"path"`
	AutoOrient bool   `json:"auto_orient"`
}

func (s *Server) handleReadImage(args json.RawMessage) (interface{}, error) {
	var a readImageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, invalidArgs("path is required")
	}

	img, err := imaging.ReadImage(a.Path, imaging.WithAutoOrientation(a.AutoOrient))
	if err != nil {
		return nil, err
	}
	mt, err := dlpack.NewManagedTensor(img)
	if err != nil {
		return nil, err
	}
	handle, err := s.tensors.Add(mt)
	if err != nil {
		mt.Release()
		return nil, err
	}

	s.log.Info("tensor exported",
		zap.String("handle", handle),
		zap.String("path", a.Path),
		zap.Int64s("shape", mt.Shape()),
	)
	return describe(handle, mt), nil
}

type writeImageArgs struct {
	Path        string `json:"path"`
	Handle      string `json:"handle"`
	JPEGQuality *int   `json:"jpeg_quality,omitempty"`
}

func (s *Server) handleWriteImage(args json.RawMessage) (interface{}, error) {
	var a writeImageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, invalidArgs("path is required")
	}

	quality := s.cfg.JPEGQuality
	if a.JPEGQuality != nil {
		if *a.JPEGQuality < 1 || *a.JPEGQuality > 100 {
			return nil, invalidArgs("jpeg_quality must be 1-100, got %d", *a.JPEGQuality)
		}
		quality = *a.JPEGQuality
	}

	mt, err := s.tensors.Get(a.Handle)
	if err != nil {
		return nil, err
	}

	res, err := imaging.WriteImage(a.Path, mt, imaging.WithJPEGQuality(quality))
	if err != nil {
		return nil, err
	}

	s.log.Info("tensor written",
		zap.String("handle", a.Handle),
		zap.String("path", res.Path),
		zap.String("format", res.Format),
	)
	return res, nil
}

type handleArgs struct {
	Handle string `json:"handle"`
}

func (s *Server) handleTensorInfo(args json.RawMessage) (interface{}, error) {
	var a handleArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	mt, err := s.tensors.Get(a.Handle)
	if err != nil {
		return nil, err
	}
	return describe(a.Handle, mt), nil
}

func (s *Server) handleReleaseTensor(args json.RawMessage) (interface{}, error) {
	var a handleArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := s.tensors.Release(a.Handle); err != nil {
		return nil, err
	}
	s.log.Debug("tensor released", zap.String("handle", a.Handle))
	return map[string]interface{}{
		"handle":   a.Handle,
		"released": true,
	}, nil
}

// === Inspection Handlers ===

type imageInfoArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a imageInfoArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, invalidArgs("path is required")
	}
	return imaging.ReadImageInfo(a.Path)
}

// === Diagnostics ===

type sumArgs struct {
	A *uint64 `json:"a"`
	B *uint64 `json:"b"`
}

func (s *Server) handleSumAsString(args json.RawMessage) (interface{}, error) {
	var a sumArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.A == nil || a.B == nil {
		return nil, invalidArgs("a and b are required")
	}
	sum, carry := bits.Add64(*a.A, *a.B, 0)
	if carry != 0 {
		return nil, invalidArgs("sum of %d and %d overflows", *a.A, *a.B)
	}
	return strconv.FormatUint(sum, 10), nil
}
