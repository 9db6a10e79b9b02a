package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func handleSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Tensor handle returned by read_image",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Tensor exchange
		{
			Name:        "read_image",
			Description: "Decode an image file into an 8-bit RGB tensor of shape [height, width, 3] and return a handle to it. The handle stays valid until release_tensor is called.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Path to a PNG, JPEG, GIF, BMP, TIFF or WebP file",
					},
					"auto_orient": map[string]interface{}{
						"type":        "boolean",
						"description": "Apply the EXIF orientation tag before conversion. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "write_image",
			Description: "Encode a [height, width, 3] uint8 tensor to an image file. The format is chosen from the file extension (.png, .jpg, .jpeg, .gif, .bmp, .tif, .tiff). Existing files are overwritten.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Destination path",
					},
					"handle": handleSchema(),
					"jpeg_quality": map[string]interface{}{
						"type":        "integer",
						"description": "JPEG quality 1-100. Defaults to the server setting",
						"minimum":     1,
						"maximum":     100,
					},
				},
				"required": []string{"path", "handle"},
			},
		},
		{
			Name:        "tensor_info",
			Description: "Return the DLPack descriptor of a tensor: shape, dtype, device, byte offset and strides.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": handleSchema(),
				},
				"required": []string{"handle"},
			},
		},
		{
			Name:        "release_tensor",
			Description: "Release a tensor handle and free its pixel buffer. The handle cannot be used afterwards.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": handleSchema(),
				},
				"required": []string{"handle"},
			},
		},

		// Inspection
		{
			Name:        "image_info",
			Description: "Report an image file's dimensions, format, bit depth and alpha, and whether reading it as 8-bit RGB loses information.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Diagnostics
		{
			Name:        "sum_as_string",
			Description: "Add two unsigned integers and return the sum as a decimal string.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"a": map[string]interface{}{"type": "integer", "minimum": 0},
					"b": map[string]interface{}{"type": "integer", "minimum": 0},
				},
				"required": []string{"a", "b"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
