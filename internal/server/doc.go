// Package server implements the MCP (Model Context Protocol) server for
// eyedropper color picking and palette extraction.
//
// The server owns one workspace: a single loaded image with an eyedropper
// over it. The MCP client plays the part of the UI. It reports where the
// image is drawn and forwards pointer moves and clicks as tool calls.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image:
//   - image_load: Load from a path, URL or base64 data, optionally in the
//     background (async); image_info reports when it is done
//   - image_info: Natural size and format
//   - image_sample_color: Exact color at a pixel
//   - image_loupe: Magnified view around a pixel
//
// Eyedropper:
//   - viewport_set: Record the on-screen image rectangle (or its container)
//   - eyedropper_activate, eyedropper_deactivate, eyedropper_toggle
//   - eyedropper_move: Pointer move; updates the hover color while armed
//   - eyedropper_commit: Click; picks the hover color and disarms
//   - eyedropper_state: Mode, hover, picked, viewport
//
// Color:
//   - color_convert: hex, rgb() text and HSL
//
// Palette:
//   - palette_analyze: Named 10-12 color palette (gemini or local)
//   - palette_export_pdf: Themed PDF of the last palette
//   - theme_set, theme_toggle: Export theme
//
// Credential:
//   - credential_save, credential_status, credential_clear
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string, or for a rejected API key an object
//     {"error": "...", "reprompt": true}
//
// A pointer move that cannot be mapped (no viewport yet, no image) is not a
// tool failure: the result carries the unchanged state and an "ignored"
// reason.
//
// # Usage
//
//	ws, err := workspace.New(workspace.Options{Config: cfg})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := server.New(ws).Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
