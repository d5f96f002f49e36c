package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var noArgs = map[string]interface{}{
	"type":       "object",
	"properties": map[string]interface{}{},
}

func rectProperties() map[string]interface{} {
	return map[string]interface{}{
		"left": map[string]interface{}{
			"type":        "number",
			"description": "Left edge of the rectangle in pointer coordinates",
		},
		"top": map[string]interface{}{
			"type":        "number",
			"description": "Top edge of the rectangle in pointer coordinates",
		},
		"width": map[string]interface{}{
			"type":        "number",
			"description": "Rendered width (must be > 0)",
		},
		"height": map[string]interface{}{
			"type":        "number",
			"description": "Rendered height (must be > 0)",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	viewportProps := rectProperties()
	viewportProps["container"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Treat the rectangle as the container the image is letterboxed into (object-fit: contain) instead of the image's own rectangle",
		"default":     false,
	}

	return []Tool{
		// Image
		{
			Name:        "image_load",
			Description: "Load the image to work on from a file path, an http(s) or data: URL, or base64 data. Replaces the current image and resets the eyedropper, viewport and palette.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"url": map[string]interface{}{
						"type":        "string",
						"description": "Image URL (http, https or data:). Fetching is best effort.",
					},
					"data": map[string]interface{}{
						"type":        "string",
						"description": "Base64-encoded image bytes",
					},
					"mime_type": map[string]interface{}{
						"type":        "string",
						"description": "MIME type of data, e.g. image/png (informational)",
					},
					"async": map[string]interface{}{
						"type":        "boolean",
						"description": "Return at once and load in the background; image_info reports the outcome. A later image_load supersedes it.",
						"default":     false,
					},
				},
			},
		},
		{
			Name:        "image_info",
			Description: "Get the natural width and height, format, MIME type and size of the current image. Fails with \"image is still loading\" while an async load runs.",
			InputSchema: noArgs,
		},
		{
			Name:        "image_sample_color",
			Description: "Get the exact color of one pixel of the current image in hex, RGB and HSL.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based)",
					},
				},
				"required": []string{"x", "y"},
			},
		},
		{
			Name:        "image_loupe",
			Description: "Magnify the pixels around a point as a base64 PNG with the center pixel outlined.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "Center X coordinate (0-based)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Center Y coordinate (0-based)",
					},
					"radius": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels on each side of the center (1-32)",
						"default":     5,
					},
					"zoom": map[string]interface{}{
						"type":        "integer",
						"description": "Magnification factor (2-32)",
						"default":     12,
					},
				},
				"required": []string{"x", "y"},
			},
		},

		// Eyedropper
		{
			Name:        "viewport_set",
			Description: "Record where the image is drawn on screen so pointer positions can be mapped to pixels. Call again whenever the display is resized.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": viewportProps,
				"required":   []string{"left", "top", "width", "height"},
			},
		},
		{
			Name:        "eyedropper_activate",
			Description: "Arm the eyedropper. Pointer moves then update the hover color.",
			InputSchema: noArgs,
		},
		{
			Name:        "eyedropper_deactivate",
			Description: "Disarm the eyedropper and drop the hover color. The picked color is kept.",
			InputSchema: noArgs,
		},
		{
			Name:        "eyedropper_toggle",
			Description: "Arm the eyedropper if it is off, disarm it if it is on.",
			InputSchema: noArgs,
		},
		{
			Name:        "eyedropper_move",
			Description: "Report a pointer position. While armed, the pixel under the pointer becomes the hover color. Positions outside the image clamp to the nearest edge pixel.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{
						"type":        "number",
						"description": "Pointer X in the same coordinates as the viewport",
					},
					"y": map[string]interface{}{
						"type":        "number",
						"description": "Pointer Y in the same coordinates as the viewport",
					},
					"viewport": map[string]interface{}{
						"type":        "object",
						"description": "Optional image rectangle to record before mapping",
						"properties":  rectProperties(),
					},
					"loupe": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return a magnified view around the hover pixel",
						"default":     false,
					},
					"loupe_radius": map[string]interface{}{
						"type":        "integer",
						"description": "Loupe radius in pixels",
						"default":     5,
					},
					"loupe_zoom": map[string]interface{}{
						"type":        "integer",
						"description": "Loupe magnification",
						"default":     12,
					},
				},
				"required": []string{"x", "y"},
			},
		},
		{
			Name:        "eyedropper_commit",
			Description: "Click: pick the hover color and disarm. Does nothing when there is no hover color.",
			InputSchema: noArgs,
		},
		{
			Name:        "eyedropper_state",
			Description: "Get the eyedropper mode, hover and picked colors, and the recorded viewport.",
			InputSchema: noArgs,
		},

		// Color
		{
			Name:        "color_convert",
			Description: "Convert a color between #RRGGBB hex, rgb(r, g, b) text and HSL.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"hex": map[string]interface{}{
						"type":        "string",
						"description": "Color as #RRGGBB (case-insensitive)",
					},
					"rgb": map[string]interface{}{
						"type":        "string",
						"description": "Color as rgb(r, g, b)",
					},
				},
			},
		},

		// Palette
		{
			Name:        "palette_analyze",
			Description: "Extract a named palette of 10-12 colors from the current image. The gemini source needs an API key; an auth failure clears the stored key and the error data carries reprompt: true.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source": map[string]interface{}{
						"type":        "string",
						"description": "auto uses gemini when a key is configured and local otherwise",
						"enum":        []string{"auto", "gemini", "local"},
						"default":     "auto",
					},
				},
			},
		},
		{
			Name:        "palette_export_pdf",
			Description: "Write the last palette analysis as an A4 PDF, one card per color.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Output file or directory. Default color-palette-analysis.pdf in the output directory.",
					},
					"title": map[string]interface{}{
						"type":        "string",
						"description": "Document title",
						"default":     "Color Palette Analysis",
					},
					"theme": map[string]interface{}{
						"type":        "string",
						"description": "Theme for this export only; defaults to the current theme",
						"enum":        []string{"dark", "light"},
					},
					"include_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Embed a thumbnail of the source image",
						"default":     true,
					},
				},
			},
		},
		{
			Name:        "theme_set",
			Description: "Set the export theme.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"theme": map[string]interface{}{
						"type": "string",
						"enum": []string{"dark", "light"},
					},
				},
				"required": []string{"theme"},
			},
		},
		{
			Name:        "theme_toggle",
			Description: "Switch the export theme between dark and light.",
			InputSchema: noArgs,
		},

		// Credential
		{
			Name:        "credential_save",
			Description: "Store the Gemini API key on disk (obfuscated, not encrypted).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"api_key": map[string]interface{}{
						"type":        "string",
						"description": "Gemini API key",
					},
					"verify": map[string]interface{}{
						"type":        "boolean",
						"description": "Check the key with a test request first; an invalid key is not stored",
						"default":     false,
					},
				},
				"required": []string{"api_key"},
			},
		},
		{
			Name:        "credential_status",
			Description: "Report whether an API key is configured and whether it comes from the environment or the credential file.",
			InputSchema: noArgs,
		},
		{
			Name:        "credential_clear",
			Description: "Delete the stored API key.",
			InputSchema: noArgs,
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
