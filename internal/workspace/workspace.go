// Package workspace owns the single editing session the server exposes: the
// loaded image, the eyedropper over it, the reported viewport, the last
// palette analysis and the export theme.
//
// Every method is safe for concurrent use. Image loads are ticketed: starting
// a load immediately discards the previous image and its derived state, and a
// load that finishes after a newer one started is dropped with ErrStaleLoad.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ironsheep/palette-tools-mcp/internal/config"
	"github.com/ironsheep/palette-tools-mcp/internal/credential"
	"github.com/ironsheep/palette-tools-mcp/internal/export"
	"github.com/ironsheep/palette-tools-mcp/internal/eyedropper"
	"github.com/ironsheep/palette-tools-mcp/internal/imaging"
	"github.com/ironsheep/palette-tools-mcp/internal/palette"
)

var (
	// ErrStaleLoad means a newer load superseded this one.
	ErrStaleLoad = errors.New("image load superseded by a newer load")

	// ErrNoAnalysis means there is no palette to export yet.
	ErrNoAnalysis = errors.New("no palette analysis available")

	// ErrLoading means an asynchronous load has not finished yet.
	ErrLoading = errors.New("image is still loading")
)

// Load states reported by LoadStatus.
const (
	LoadLoading = "loading"
	LoadLoaded  = "loaded"
	LoadFailed  = "failed"
)

// LoadStatus describes the most recent load.
type LoadStatus struct {
	Generation uint64 `json:"generation"`
	State      string `json:"state"`
	Source     string `json:"source"`
	Error      string `json:"error,omitempty"`
}

// Remote is a palette analyzer that can also check its credentials.
type Remote interface {
	palette.Analyzer
	Verify(ctx context.Context) error
}

// Analysis sources accepted by Analyze.
const (
	SourceAuto   = "auto"
	SourceGemini = "gemini"
	SourceLocal  = "local"
)

// Options configures a Workspace. Zero values fall back to sensible defaults.
type Options struct {
	Config      *config.Config
	Credentials *credential.Store

	// NewRemote builds the remote analyzer for an API key. Nil uses Gemini.
	NewRemote func(apiKey string) Remote

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Workspace is the server's editing session.
type Workspace struct {
	mu sync.Mutex

	cfg       *config.Config
	creds     *credential.Store
	newRemote func(apiKey string) Remote
	client    *http.Client
	logger    *slog.Logger

	generation uint64
	source     string
	status     LoadStatus
	session    *eyedropper.Session
	viewport   eyedropper.Viewport
	analysis   *palette.Analysis
	theme      export.Theme
}

// New returns an empty workspace.
func New(opts Options) (*Workspace, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	theme, err := export.ThemeByName(cfg.Export.Theme)
	if err != nil {
		return nil, err
	}

	w := &Workspace{
		cfg:       cfg,
		creds:     opts.Credentials,
		newRemote: opts.NewRemote,
		client:    opts.HTTPClient,
		logger:    logger,
		session:   eyedropper.NewSession(),
		theme:     theme,
	}
	if w.creds == nil {
		w.creds = credential.NewStore(cfg.Credential.Path, cfg.Credential.EnvVar, logger)
	}
	if w.client == nil {
		w.client = &http.Client{Timeout: time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second}
	}
	if w.newRemote == nil {
		w.newRemote = func(apiKey string) Remote {
			return palette.NewGemini(palette.GeminiConfig{
				Model:       cfg.Gemini.Model,
				Temperature: cfg.Gemini.Temperature,
				Language:    cfg.Gemini.Language,
				BaseURL:     cfg.Gemini.BaseURL,
				HTTPClient:  w.client,
			}, apiKey, logger)
		}
	}
	return w, nil
}

// LoadResult is delivered by LoadAsync.
type LoadResult struct {
	Info *imaging.ImageInfo
	Err  error
}

// Load reads and decodes src and makes it the current image.
func (w *Workspace) Load(ctx context.Context, src Source) (*imaging.ImageInfo, error) {
	return w.load(ctx, w.begin(src.name()), src)
}

// LoadAsync is Load on a goroutine. The previous image is discarded before
// LoadAsync returns, so loads started in order supersede each other in order.
// Until the load finishes, Info reports ErrLoading.
func (w *Workspace) LoadAsync(ctx context.Context, src Source) <-chan LoadResult {
	ticket := w.begin(src.name())
	out := make(chan LoadResult, 1)
	go func() {
		info, err := w.load(ctx, ticket, src)
		out <- LoadResult{Info: info, Err: err}
	}()
	return out
}

func (w *Workspace) load(ctx context.Context, ticket uint64, src Source) (*imaging.ImageInfo, error) {
	r, err := src.decode(ctx, w.client, w.cfg.Fetch.MaxBytes)
	if err != nil {
		w.fail(ticket, err)
		return nil, err
	}
	return w.commit(ticket, r, src.name())
}

// begin takes a new load ticket and drops everything tied to the old image.
func (w *Workspace) begin(name string) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.generation++
	w.session.Load(nil)
	w.viewport = eyedropper.Viewport{}
	w.analysis = nil
	w.source = ""
	w.status = LoadStatus{Generation: w.generation, State: LoadLoading, Source: name}
	return w.generation
}

func (w *Workspace) fail(ticket uint64, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if ticket != w.generation {
		return
	}
	w.status.State = LoadFailed
	w.status.Error = err.Error()
	w.logger.Debug("image load failed", "source", w.status.Source, "error", err)
}

func (w *Workspace) commit(ticket uint64, r *imaging.RasterImage, name string) (*imaging.ImageInfo, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if ticket != w.generation {
		w.logger.Debug("discarding stale image load", "source", name, "ticket", ticket, "current", w.generation)
		return nil, ErrStaleLoad
	}
	w.session.Load(r)
	w.source = name
	w.status.State = LoadLoaded
	w.logger.Info("image loaded", "source", name, "width", r.Width(), "height", r.Height())
	return r.Info(), nil
}

// Info describes the current image.
func (w *Workspace) Info() (*imaging.ImageInfo, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	r := w.session.Raster()
	if r == nil {
		return nil, w.noImage()
	}
	return r.Info(), nil
}

// LoadStatus reports the most recent load.
func (w *Workspace) LoadStatus() LoadStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// noImage explains a missing raster. Callers hold mu.
func (w *Workspace) noImage() error {
	switch w.status.State {
	case LoadLoading:
		return ErrLoading
	case LoadFailed:
		return fmt.Errorf("%w: last load failed: %s", eyedropper.ErrNoImage, w.status.Error)
	}
	return eyedropper.ErrNoImage
}

// Source returns the name of the current image's source.
func (w *Workspace) Source() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.source
}

// SampleColor reads one pixel of the current image.
func (w *Workspace) SampleColor(x, y int) (*imaging.ColorResult, error) {
	r, err := w.raster()
	if err != nil {
		return nil, err
	}
	return imaging.SampleColor(r, x, y)
}

// Loupe magnifies the area around (x, y), or around the hover pixel when
// atHover is set.
func (w *Workspace) Loupe(x, y int, atHover bool, radius, zoom int) (*imaging.LoupeResult, error) {
	w.mu.Lock()
	r := w.session.Raster()
	st := w.session.Snapshot()
	var err error
	if r == nil {
		err = w.noImage()
	}
	w.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if atHover {
		if st.Hover == nil {
			return nil, fmt.Errorf("no hover sample to magnify")
		}
		x, y = st.HoverX, st.HoverY
	}
	if radius <= 0 {
		radius = w.cfg.Eyedropper.LoupeRadius
	}
	if zoom <= 0 {
		zoom = w.cfg.Eyedropper.LoupeZoom
	}
	return imaging.Loupe(r, x, y, radius, zoom)
}

func (w *Workspace) raster() (*imaging.RasterImage, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	r := w.session.Raster()
	if r == nil {
		return nil, w.noImage()
	}
	return r, nil
}

// SetViewport records where the image is drawn. The natural size always comes
// from the loaded image.
func (w *Workspace) SetViewport(vp eyedropper.Viewport) (eyedropper.Viewport, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	r := w.session.Raster()
	if r == nil {
		return eyedropper.Viewport{}, w.noImage()
	}
	vp.NaturalWidth, vp.NaturalHeight = r.Width(), r.Height()
	if !vp.Measured() {
		return eyedropper.Viewport{}, eyedropper.ErrViewportUnmeasured
	}
	w.viewport = vp
	return vp, nil
}

// FitViewport records the rectangle the image occupies when letterboxed into
// the given container.
func (w *Workspace) FitViewport(left, top, width, height float64) (eyedropper.Viewport, error) {
	r, err := w.raster()
	if err != nil {
		return eyedropper.Viewport{}, err
	}
	return w.SetViewport(eyedropper.Fit(left, top, width, height, r.Width(), r.Height()))
}

// Viewport returns the last recorded viewport.
func (w *Workspace) Viewport() eyedropper.Viewport {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewport
}

// Activate arms the eyedropper.
func (w *Workspace) Activate() eyedropper.State {
	return w.withSession(func(s *eyedropper.Session) { s.Activate() })
}

// Deactivate disarms the eyedropper.
func (w *Workspace) Deactivate() eyedropper.State {
	return w.withSession(func(s *eyedropper.Session) { s.Deactivate() })
}

// Toggle flips the eyedropper.
func (w *Workspace) Toggle() eyedropper.State {
	return w.withSession(func(s *eyedropper.Session) { s.Toggle() })
}

// State reports the eyedropper.
func (w *Workspace) State() eyedropper.State {
	return w.withSession(func(*eyedropper.Session) {})
}

func (w *Workspace) withSession(fn func(*eyedropper.Session)) eyedropper.State {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(w.session)
	return w.session.Snapshot()
}

// Move feeds a pointer position to the eyedropper. A non-nil vp replaces the
// recorded viewport first.
//
// A returned error means this one update was skipped; the state is still
// valid and reflects the previous hover.
func (w *Workspace) Move(pointerX, pointerY float64, vp *eyedropper.Viewport) (eyedropper.State, error) {
	if vp != nil {
		if _, err := w.SetViewport(*vp); err != nil {
			return w.State(), err
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	err := w.session.OnPointerMove(pointerX, pointerY, w.viewport)
	if err != nil {
		w.logger.Debug("pointer move ignored", "x", pointerX, "y", pointerY, "error", err)
	}
	return w.session.Snapshot(), err
}

// Commit picks the hover sample. It reports whether a pick happened.
func (w *Workspace) Commit() (bool, eyedropper.State) {
	w.mu.Lock()
	defer w.mu.Unlock()

	picked := w.session.OnCommit()
	return picked, w.session.Snapshot()
}

// Theme returns the export theme.
func (w *Workspace) Theme() export.Theme {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.theme
}

// SetTheme selects the export theme by name.
func (w *Workspace) SetTheme(name string) (export.Theme, error) {
	t, err := export.ThemeByName(name)
	if err != nil {
		return export.Theme{}, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.theme = t
	return t, nil
}

// ToggleTheme swaps dark and light.
func (w *Workspace) ToggleTheme() export.Theme {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.theme = w.theme.Toggle()
	return w.theme
}

// Analysis returns the last palette analysis, or nil.
func (w *Workspace) Analysis() *palette.Analysis {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.analysis
}

// Analyze extracts a palette from the current image.
//
// With SourceAuto the remote analyzer is used when a key is available and the
// local one otherwise. A remote credential failure clears the stored key and
// is returned wrapping palette.ErrUnauthorized so the client can ask again.
func (w *Workspace) Analyze(ctx context.Context, source string) (*palette.Analysis, error) {
	w.mu.Lock()
	r := w.session.Raster()
	ticket := w.generation
	var err error
	if r == nil {
		err = w.noImage()
	}
	w.mu.Unlock()

	if err != nil {
		return nil, err
	}

	switch source {
	case "":
		source = SourceAuto
	case SourceAuto, SourceGemini, SourceLocal:
	default:
		return nil, fmt.Errorf("unknown analysis source %q (want auto, gemini or local)", source)
	}

	var key string
	if source != SourceLocal {
		k, err := w.creds.Load()
		switch {
		case err == nil:
			key = k
			source = SourceGemini
		case source == SourceAuto && errors.Is(err, credential.ErrNotFound):
			source = SourceLocal
		case errors.Is(err, credential.ErrNotFound):
			return nil, fmt.Errorf("%w: no API key configured", palette.ErrUnauthorized)
		default:
			return nil, err
		}
	}

	var a *palette.Analysis
	switch source {
	case SourceLocal:
		a, err = palette.Local{}.AnalyzeRaster(ctx, r)
	default:
		a, err = w.analyzeRemote(ctx, r, key)
	}
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if ticket != w.generation {
		return nil, ErrStaleLoad
	}
	w.analysis = a
	return a, nil
}

func (w *Workspace) analyzeRemote(ctx context.Context, r *imaging.RasterImage, key string) (*palette.Analysis, error) {
	img, err := uploadImage(r, w.cfg.Gemini.MaxUploadEdge)
	if err != nil {
		return nil, err
	}
	a, err := w.newRemote(key).Analyze(ctx, img)
	if errors.Is(err, palette.ErrUnauthorized) {
		w.forgetKey()
	}
	return a, err
}

// forgetKey drops a key the service rejected. An environment key cannot be
// cleared from here and is only reported.
func (w *Workspace) forgetKey() {
	if w.creds.FromEnv() {
		w.logger.Warn("API key from the environment was rejected", "env_var", w.cfg.Credential.EnvVar)
		return
	}
	if err := w.creds.Clear(); err != nil {
		w.logger.Error("failed to clear rejected API key", "error", err)
		return
	}
	w.logger.Warn("stored API key was rejected and has been cleared")
}

// uploadImage prepares the raster for the remote service: bounded in size
// and in a format the service accepts.
func uploadImage(r *imaging.RasterImage, maxEdge int) (palette.Image, error) {
	enc, err := imaging.Downscale(r, maxEdge)
	if err != nil {
		return palette.Image{}, err
	}
	switch enc.MimeType {
	case "image/jpeg", "image/png", "image/webp":
		return palette.Image{Data: enc.Bytes(), MIMEType: enc.MimeType}, nil
	}
	data, err := imaging.EncodePNG(r.Image())
	if err != nil {
		return palette.Image{}, err
	}
	return palette.Image{Data: data, MIMEType: "image/png"}, nil
}

// ExportResult describes a written PDF.
type ExportResult struct {
	Path  string `json:"path"`
	Pages int    `json:"pages"`
	Theme string `json:"theme"`
}

// ExportPDF writes the last analysis as a PDF. An empty path or a directory
// gets the default file name; an empty theme uses the workspace theme.
func (w *Workspace) ExportPDF(path, title, theme string, includeImage bool) (*ExportResult, error) {
	w.mu.Lock()
	doc := export.Document{
		Title:    title,
		Analysis: w.analysis,
		Theme:    w.theme,
		Picked:   w.session.Picked(),
		FontPath: w.cfg.Export.FontPath,
	}
	if includeImage {
		doc.Image = w.session.Raster()
	}
	w.mu.Unlock()

	if doc.Analysis == nil {
		return nil, ErrNoAnalysis
	}
	if theme != "" {
		t, err := export.ThemeByName(theme)
		if err != nil {
			return nil, err
		}
		doc.Theme = t
	}

	path = w.exportPath(path)
	pages, err := export.WriteFile(path, doc)
	if err != nil {
		return nil, err
	}
	w.logger.Info("palette exported", "path", path, "pages", pages, "theme", doc.Theme.Name)
	return &ExportResult{Path: path, Pages: pages, Theme: doc.Theme.Name}, nil
}

func (w *Workspace) exportPath(path string) string {
	if path == "" {
		dir := w.cfg.Export.OutputDir
		if dir == "" {
			dir = "."
		}
		return filepath.Join(dir, export.DefaultFileName)
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return filepath.Join(path, export.DefaultFileName)
	}
	return path
}

// CredentialStatus reports whether a key is available and where it comes from.
type CredentialStatus struct {
	Configured bool   `json:"configured"`
	Source     string `json:"source,omitempty"`
	Path       string `json:"path"`
}

// SaveKey stores an API key, optionally checking it with the service first.
// A key that fails verification is not stored.
func (w *Workspace) SaveKey(ctx context.Context, key string, verify bool) error {
	if verify {
		if err := w.newRemote(key).Verify(ctx); err != nil {
			return err
		}
	}
	return w.creds.Save(key)
}

// KeyStatus reports the credential state.
func (w *Workspace) KeyStatus() CredentialStatus {
	st := CredentialStatus{Path: w.creds.Path()}
	if w.creds.FromEnv() {
		st.Configured, st.Source = true, "env"
		return st
	}
	if _, err := w.creds.Load(); err == nil {
		st.Configured, st.Source = true, "file"
	}
	return st
}

// ClearKey removes the stored key.
func (w *Workspace) ClearKey() error {
	return w.creds.Clear()
}
