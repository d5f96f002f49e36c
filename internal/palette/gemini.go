package palette

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// GeminiConfig configures the Gemini-backed analyzer.
type GeminiConfig struct {
	// Model is the Gemini model name. Empty means DefaultModel.
	Model string

	// Temperature for generation. Zero means 0.2.
	Temperature float32

	// Language selects the language of names and descriptions: "ko" or "en".
	Language string

	// BaseURL overrides the API endpoint (used by tests and proxies).
	BaseURL string

	// HTTPClient overrides the transport.
	HTTPClient *http.Client
}

// Gemini asks a Gemini multimodal model to name an image's palette.
type Gemini struct {
	cfg    GeminiConfig
	apiKey string
	logger *slog.Logger
}

// NewGemini returns an analyzer that authenticates with apiKey.
func NewGemini(cfg GeminiConfig, apiKey string, logger *slog.Logger) *Gemini {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.2
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gemini{cfg: cfg, apiKey: apiKey, logger: logger}
}

var prompts = map[string]string{
	"ko": "이미지의 색상을 자세히 분석하세요. 이미지의 분위기와 구성을 대표하는 뚜렷하고 주요한 색상 10~12개를 찾아 " +
		"각 색상마다 16진수 코드, RGB 값, 창의적인 한국어 이름, 그리고 그 색이 이미지의 어디에 주로 나타나는지 " +
		"짧은 한국어 설명을 제공하세요. 주어진 스키마에 맞춰 JSON으로만 응답하세요.",
	"en": "Analyze the colors of this image in detail. Identify 10 to 12 distinct, prominent colors that " +
		"represent its mood and composition. For each color give its hex code, its RGB value, a creative " +
		"English name, and a short description of where it appears in the image. Respond only with JSON " +
		"matching the provided schema.",
}

func (g *Gemini) prompt() string {
	if p, ok := prompts[g.cfg.Language]; ok {
		return p
	}
	return prompts["ko"]
}

// responseSchema constrains the model output to an Analysis.
func responseSchema() *genai.Schema {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"palette": {
				Type:        genai.TypeArray,
				Description: fmt.Sprintf("An array of %d to %d distinct and prominent colors found in the image.", MinColors, MaxColors),
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"hex":         str("The hex code of the color, e.g. #A1B2C3."),
						"rgb":         str("The RGB value of the color, e.g. rgb(161, 178, 195)."),
						"name":        str("A creative name for the color."),
						"description": str("Where the color appears prominently in the image."),
					},
					Required: []string{"hex", "rgb", "name", "description"},
				},
			},
		},
		Required: []string{"palette"},
	}
}

func (g *Gemini) client(ctx context.Context) (*genai.Client, error) {
	cc := &genai.ClientConfig{
		APIKey:     g.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.cfg.HTTPClient,
	}
	if g.cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: g.cfg.BaseURL}
	}
	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return c, nil
}

// Analyze sends the image and prompt and parses the structured reply.
func (g *Gemini) Analyze(ctx context.Context, img Image) (*Analysis, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("%w: no API key", ErrUnauthorized)
	}
	client, err := g.client(ctx)
	if err != nil {
		return nil, err
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(img.Data, img.MIMEType),
		genai.NewPartFromText(g.prompt()),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	g.logger.Debug("requesting palette", "model", g.cfg.Model, "mime_type", img.MIMEType, "bytes", len(img.Data))

	resp, err := client.Models.GenerateContent(ctx, g.cfg.Model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
		Temperature:      genai.Ptr(g.cfg.Temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to analyze image: %w", classify(err))
	}

	analysis, err := ParseResponse(resp.Text())
	if err != nil {
		return nil, err
	}
	if err := Normalize(analysis, g.logger); err != nil {
		return nil, err
	}
	analysis.Source = "gemini:" + g.cfg.Model
	return analysis, nil
}

// Verify checks the key with a minimal text generation.
func (g *Gemini) Verify(ctx context.Context) error {
	if g.apiKey == "" {
		return fmt.Errorf("%w: no API key", ErrUnauthorized)
	}
	client, err := g.client(ctx)
	if err != nil {
		return err
	}
	if _, err := client.Models.GenerateContent(ctx, g.cfg.Model, genai.Text("Hello"), nil); err != nil {
		return fmt.Errorf("key verification failed: %w", classify(err))
	}
	return nil
}

// ParseResponse decodes the model's JSON text into an Analysis.
//
// Markdown code fences around the JSON are tolerated.
func ParseResponse(text string) (*Analysis, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidResponse)
	}

	var raw struct {
		Palette *[]Color `json:"palette"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if raw.Palette == nil {
		return nil, fmt.Errorf("%w: missing palette", ErrInvalidResponse)
	}
	return &Analysis{Palette: *raw.Palette}, nil
}

// classify wraps credential failures with ErrUnauthorized.
//
// The Gemini API reports a bad key as 400 INVALID_ARGUMENT with an "API key
// not valid" message as well as the usual 401/403.
func classify(err error) error {
	code, status, msg := 0, "", err.Error()

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code, status, msg = apiErr.Code, apiErr.Status, apiErr.Message
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		code, status, msg = apiErrPtr.Code, apiErrPtr.Status, apiErrPtr.Message
	}

	if unauthorized(code, status, msg) || unauthorized(0, "", err.Error()) {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return err
}

func unauthorized(code int, status, msg string) bool {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return true
	case status == "UNAUTHENTICATED", status == "PERMISSION_DENIED":
		return true
	}
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "api key not valid") ||
		strings.Contains(lower, "api_key_invalid") ||
		strings.Contains(msg, "Error 401")
}
