package workspace

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ironsheep/palette-tools-mcp/internal/imaging"
)

// Source names where an image comes from. Exactly one field of Path, URL,
// Data or Bytes must be set.
type Source struct {
	Path string
	URL  string
	// Data is base64 image data, optionally as a data: URL.
	Data  string
	Bytes []byte
	// MIMEType is informational; the decoder sniffs the real format.
	MIMEType string
}

func (s Source) count() int {
	n := 0
	for _, set := range []bool{s.Path != "", s.URL != "", s.Data != "", len(s.Bytes) > 0} {
		if set {
			n++
		}
	}
	return n
}

// name is how the source appears in errors and logs.
func (s Source) name() string {
	switch {
	case s.Path != "":
		return s.Path
	case s.URL != "":
		if strings.HasPrefix(s.URL, "data:") {
			return "data URL"
		}
		return s.URL
	case s.MIMEType != "":
		return "inline " + s.MIMEType
	}
	return "inline data"
}

// decode reads the source and decodes it.
func (s Source) decode(ctx context.Context, client *http.Client, maxBytes int64) (*imaging.RasterImage, error) {
	if s.count() == 1 && s.Path != "" {
		return imaging.LoadFile(s.Path)
	}
	data, err := s.read(ctx, client, maxBytes)
	if err != nil {
		return nil, err
	}
	return imaging.Decode(data, s.name())
}

// Validate checks that exactly one source field is set.
func (s Source) Validate() error {
	if s.count() != 1 {
		return fmt.Errorf("exactly one of path, url or data is required")
	}
	return nil
}

// read resolves a non-file source to raw bytes.
func (s Source) read(ctx context.Context, client *http.Client, maxBytes int64) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	switch {
	case s.URL != "":
		if strings.HasPrefix(s.URL, "data:") {
			return decodeDataURL(s.URL)
		}
		return FetchURL(ctx, client, s.URL, maxBytes)
	case s.Data != "":
		if strings.HasPrefix(s.Data, "data:") {
			return decodeDataURL(s.Data)
		}
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s.Data))
		if err != nil {
			return nil, fmt.Errorf("image data is not valid base64: %w", err)
		}
		return data, nil
	}
	return s.Bytes, nil
}

// FetchURL downloads an image over http or https.
//
// This is best effort: the remote may refuse, redirect to HTML or be too
// large, and every such case is reported as an error. Bodies over maxBytes
// are rejected rather than truncated.
func FetchURL(ctx context.Context, client *http.Client, rawURL string, maxBytes int64) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid image URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch image: %s", resp.Status)
	}
	if maxBytes > 0 && resp.ContentLength > maxBytes {
		return nil, fmt.Errorf("image is %d bytes, limit is %d", resp.ContentLength, maxBytes)
	}

	body := io.Reader(resp.Body)
	if maxBytes > 0 {
		body = io.LimitReader(resp.Body, maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("image exceeds the %d byte limit", maxBytes)
	}
	return data, nil
}

var errDataURL = errors.New("malformed data URL")

// decodeDataURL accepts data:[<mime>][;base64],<payload>.
func decodeDataURL(s string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return nil, errDataURL
	}
	if !strings.HasSuffix(header, ";base64") {
		decoded, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errDataURL, err)
		}
		return []byte(decoded), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errDataURL, err)
	}
	return data, nil
}
