package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/palette-tools-mcp/internal/eyedropper"
	"github.com/ironsheep/palette-tools-mcp/internal/imaging"
	"github.com/ironsheep/palette-tools-mcp/internal/palette"
	"github.com/ironsheep/palette-tools-mcp/internal/workspace"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "eyedropper_move").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
// When the palette service rejected the API key the error data is an object
// with "reprompt": true so the client knows to ask for a new key.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		if errors.Is(err, palette.ErrUnauthorized) {
			return s.errorResponse(req.ID, -32000, "Tool execution failed", map[string]interface{}{
				"error":    err.Error(),
				"reprompt": true,
			})
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image
	case "image_load":
		return s.handleImageLoad(ctx, args)
	case "image_info":
		return s.ws.Info()
	case "image_sample_color":
		return s.handleImageSampleColor(args)
	case "image_loupe":
		return s.handleImageLoupe(args)

	// Eyedropper
	case "viewport_set":
		return s.handleViewportSet(args)
	case "eyedropper_activate":
		return s.ws.Activate(), nil
	case "eyedropper_deactivate":
		return s.ws.Deactivate(), nil
	case "eyedropper_toggle":
		return s.ws.Toggle(), nil
	case "eyedropper_move":
		return s.handleEyedropperMove(args)
	case "eyedropper_commit":
		return s.handleEyedropperCommit()
	case "eyedropper_state":
		return s.handleEyedropperState(), nil

	// Color
	case "color_convert":
		return s.handleColorConvert(args)

	// Palette
	case "palette_analyze":
		return s.handlePaletteAnalyze(ctx, args)
	case "palette_export_pdf":
		return s.handlePaletteExportPDF(args)
	case "theme_set":
		return s.handleThemeSet(args)
	case "theme_toggle":
		return themeResult{Theme: s.ws.ToggleTheme().Name}, nil

	// Credential
	case "credential_save":
		return s.handleCredentialSave(ctx, args)
	case "credential_status":
		return s.ws.KeyStatus(), nil
	case "credential_clear":
		if err := s.ws.ClearKey(); err != nil {
			return nil, err
		}
		return s.ws.KeyStatus(), nil

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
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments. Absent arguments decode as {}.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// === Image Handlers ===

type imageLoadArgs struct {
	Path     string `json:"path"`
	URL      string `json:"url"`
	Data     string `json:"data"`
	MIMEType string `json:"mime_type"`
	Async    bool   `json:"async"`
}

func (s *Server) handleImageLoad(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	src := workspace.Source{Path: a.Path, URL: a.URL, Data: a.Data, MIMEType: a.MIMEType}
	if !a.Async {
		return s.ws.Load(ctx, src)
	}

	if err := src.Validate(); err != nil {
		return nil, err
	}
	// The result is picked up through image_info; a newer load supersedes it.
	s.ws.LoadAsync(ctx, src)
	return s.ws.LoadStatus(), nil
}

type imageSampleColorArgs struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return s.ws.SampleColor(a.X, a.Y)
}

type imageLoupeArgs struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Radius int `json:"radius"`
	Zoom   int `json:"zoom"`
}

func (s *Server) handleImageLoupe(args json.RawMessage) (interface{}, error) {
	var a imageLoupeArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return s.ws.Loupe(a.X, a.Y, false, a.Radius, a.Zoom)
}

// === Eyedropper Handlers ===

type rectArgs struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type viewportSetArgs struct {
	rectArgs
	// Container means the rect is the box the image is letterboxed into.
	Container bool `json:"container"`
}

func (s *Server) handleViewportSet(args json.RawMessage) (interface{}, error) {
	var a viewportSetArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Container {
		return s.ws.FitViewport(a.Left, a.Top, a.Width, a.Height)
	}
	return s.ws.SetViewport(eyedropper.Viewport{Left: a.Left, Top: a.Top, Width: a.Width, Height: a.Height})
}

type eyedropperMoveArgs struct {
	X        *float64  `json:"x"`
	Y        *float64  `json:"y"`
	Viewport *rectArgs `json:"viewport"`
	Loupe    bool      `json:"loupe"`
	Radius   int       `json:"loupe_radius"`
	Zoom     int       `json:"loupe_zoom"`
}

type eyedropperMoveResult struct {
	State eyedropper.State `json:"state"`
	// Ignored explains why this move did not update the hover sample.
	Ignored string               `json:"ignored,omitempty"`
	Loupe   *imaging.LoupeResult `json:"loupe,omitempty"`
}

func (s *Server) handleEyedropperMove(args json.RawMessage) (interface{}, error) {
	var a eyedropperMoveArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.X == nil || a.Y == nil {
		return nil, fmt.Errorf("x and y are required")
	}

	var vp *eyedropper.Viewport
	if a.Viewport != nil {
		vp = &eyedropper.Viewport{Left: a.Viewport.Left, Top: a.Viewport.Top, Width: a.Viewport.Width, Height: a.Viewport.Height}
	}

	// A failed move is not a failed call: the pointer stream carries on.
	st, err := s.ws.Move(*a.X, *a.Y, vp)
	res := eyedropperMoveResult{State: st}
	if err != nil {
		res.Ignored = err.Error()
	}
	if a.Loupe && st.Hover != nil {
		loupe, err := s.ws.Loupe(0, 0, true, a.Radius, a.Zoom)
		if err != nil {
			return nil, err
		}
		res.Loupe = loupe
	}
	return res, nil
}

type eyedropperCommitResult struct {
	Picked bool                 `json:"picked"`
	State  eyedropper.State     `json:"state"`
	Color  *imaging.ColorResult `json:"color,omitempty"`
}

func (s *Server) handleEyedropperCommit() (interface{}, error) {
	picked, st := s.ws.Commit()
	res := eyedropperCommitResult{Picked: picked, State: st}
	if picked && st.Picked != nil {
		res.Color = imaging.Describe(*st.Picked)
	}
	return res, nil
}

type eyedropperStateResult struct {
	State    eyedropper.State     `json:"state"`
	Viewport *eyedropper.Viewport `json:"viewport,omitempty"`
}

func (s *Server) handleEyedropperState() interface{} {
	res := eyedropperStateResult{State: s.ws.State()}
	if vp := s.ws.Viewport(); vp.Measured() {
		res.Viewport = &vp
	}
	return res
}

// === Color Handlers ===

type colorConvertArgs struct {
	Hex string `json:"hex"`
	RGB string `json:"rgb"`
}

func (s *Server) handleColorConvert(args json.RawMessage) (interface{}, error) {
	var a colorConvertArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	var (
		sample imaging.Sample
		err    error
	)
	switch {
	case a.Hex != "" && a.RGB != "":
		return nil, fmt.Errorf("pass either hex or rgb, not both")
	case a.Hex != "":
		sample, err = imaging.ParseSample(a.Hex)
	case a.RGB != "":
		sample, err = imaging.ParseRGBText(a.RGB)
	default:
		return nil, fmt.Errorf("hex or rgb is required")
	}
	if err != nil {
		return nil, err
	}
	return imaging.Describe(sample), nil
}

// === Palette Handlers ===

type paletteAnalyzeArgs struct {
	Source string `json:"source"`
}

func (s *Server) handlePaletteAnalyze(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a paletteAnalyzeArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return s.ws.Analyze(ctx, a.Source)
}

type paletteExportArgs struct {
	Path         string `json:"path"`
	Title        string `json:"title"`
	Theme        string `json:"theme"`
	IncludeImage *bool  `json:"include_image"`
}

func (s *Server) handlePaletteExportPDF(args json.RawMessage) (interface{}, error) {
	var a paletteExportArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	includeImage := true
	if a.IncludeImage != nil {
		includeImage = *a.IncludeImage
	}
	return s.ws.ExportPDF(a.Path, a.Title, a.Theme, includeImage)
}

type themeArgs struct {
	Theme string `json:"theme"`
}

type themeResult struct {
	Theme string `json:"theme"`
}

func (s *Server) handleThemeSet(args json.RawMessage) (interface{}, error) {
	var a themeArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	t, err := s.ws.SetTheme(a.Theme)
	if err != nil {
		return nil, err
	}
	return themeResult{Theme: t.Name}, nil
}

// === Credential Handlers ===

type credentialSaveArgs struct {
	APIKey string `json:"api_key"`
	Verify bool   `json:"verify"`
}

func (s *Server) handleCredentialSave(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a credentialSaveArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := s.ws.SaveKey(ctx, a.APIKey, a.Verify); err != nil {
		return nil, err
	}
	return s.ws.KeyStatus(), nil
}
