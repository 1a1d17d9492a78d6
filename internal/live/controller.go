package live

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/alnah/go-mdslides"
)

// DefaultDebounce is the quiet period after the last change before a render.
const DefaultDebounce = 300 * time.Millisecond

// Sentinel errors.
var (
	ErrSessionDisposed = errors.New("no open session")
	ErrNoSurface       = errors.New("display surface unavailable")
)

// Renderer renders one document snapshot.
type Renderer interface {
	Render(ctx context.Context, input mdslides.Input) (*mdslides.Result, error)
}

// Surface displays rendered pages.
type Surface interface {
	// Show replaces the displayed page.
	Show(page string) error
	// Post sends an incremental update to the displayed page.
	Post(msg Message) error
}

// SurfaceFactory creates the display surface when the first session opens.
type SurfaceFactory func() (Surface, error)

// Notifier reports render failures to the user.
type Notifier interface {
	Error(err error)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(err error)

// Error calls f(err).
func (f NotifierFunc) Error(err error) { f(err) }

// Timer is the handle of a scheduled callback.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run after d on its own goroutine.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce sets the debounce window. Panics if d < 0 (programmer error).
func WithDebounce(d time.Duration) Option {
	if d < 0 {
		panic("live: WithDebounce duration must not be negative")
	}
	return func(c *Controller) {
		c.debounce = d
	}
}

// WithTheme sets the initial theme.
func WithTheme(theme mdslides.Theme) Option {
	return func(c *Controller) {
		c.theme = theme
	}
}

// WithMode sets the initial display mode.
func WithMode(mode mdslides.Mode) Option {
	return func(c *Controller) {
		c.mode = mode
	}
}

// WithLiveURL sets the WebSocket endpoint embedded in rendered pages.
func WithLiveURL(url string) Option {
	return func(c *Controller) {
		c.liveURL = url
	}
}

// WithAssets sets how image references of a document are resolved.
func WithAssets(fn func(docID string) mdslides.AssetResolver) Option {
	return func(c *Controller) {
		c.assets = fn
	}
}

// WithNotifier sets where render failures are reported.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithAfterFunc replaces the timer scheduler (tests use a fake clock).
func WithAfterFunc(fn AfterFunc) Option {
	return func(c *Controller) {
		if fn != nil {
			c.afterFunc = fn
		}
	}
}

// Controller reconciles one display surface with the edited document.
// All methods are safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	renderer  Renderer
	factory   SurfaceFactory
	notifier  Notifier
	logger    *slog.Logger
	afterFunc AfterFunc

	debounce time.Duration
	theme    mdslides.Theme
	mode     mdslides.Mode
	liveURL  string
	assets   func(docID string) mdslides.AssetResolver

	surface    Surface
	session    *Session
	generation uint64
}

// New creates a Controller in the Closed state.
func New(renderer Renderer, factory SurfaceFactory, opts ...Option) *Controller {
	c := &Controller{
		renderer:  renderer,
		factory:   factory,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		afterFunc: realAfterFunc,
		debounce:  DefaultDebounce,
		theme:     mdslides.ThemeDefault,
		mode:      mdslides.ModeSlides,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.notifier == nil {
		c.notifier = NotifierFunc(func(err error) {
			c.logger.Error("render failed", "error", err)
		})
	}
	return c
}

// Open shows docID on the surface, creating the surface and the session on
// the first call. Opening while open reuses the surface and supersedes any
// pending change. The render runs immediately.
func (c *Controller) Open(ctx context.Context, docID, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.surface == nil {
		if c.factory == nil {
			return ErrNoSurface
		}
		surface, err := c.factory()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrNoSurface, err)
		}
		c.surface = surface
	}

	if c.session != nil {
		c.session.stopTimer()
	}
	if c.session == nil || c.session.DocID != docID {
		c.session = &Session{DocID: docID, State: SessionActive}
		c.logger.Info("session opened", "doc", docID)
	}
	c.session.Text = text
	c.generation++

	return c.renderFull(ctx, c.session)
}

// Changed records a new snapshot of docID and schedules a debounced render.
// Every call restarts the window; only the last text of a burst is rendered.
// Changes for documents other than the displayed one are ignored.
func (c *Controller) Changed(docID, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil || s.State != SessionActive || s.DocID != docID {
		return
	}

	s.stopTimer()
	s.Text = text
	c.generation++
	gen := c.generation

	s.Pending = true
	s.timer = c.afterFunc(c.debounce, func() {
		c.fire(s, gen)
	})
}

// fire runs a debounced render if the session and generation are still current.
func (c *Controller) fire(s *Session, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != s || s.State != SessionActive || c.generation != gen {
		return
	}
	s.timer = nil
	s.Pending = false

	result, err := c.render(context.Background(), s)
	if err != nil {
		c.notifyFailure(err)
		return
	}

	if err := c.surface.Post(UpdateMessage(result)); err != nil {
		c.logger.Warn("posting update", "doc", s.DocID, "error", err)
		return
	}
	s.Result = result
	c.logger.Debug("update pushed", "doc", s.DocID, "diagrams", len(result.Diagrams))
}

// SetTheme changes the theme and re-renders at once. With no open session
// the theme is stored for the next Open.
func (c *Controller) SetTheme(ctx context.Context, theme mdslides.Theme) error {
	if err := theme.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.theme = theme
	return c.rerender(ctx)
}

// SetMode switches between slides and preview and re-renders at once.
func (c *Controller) SetMode(ctx context.Context, mode mdslides.Mode) error {
	if err := mode.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.mode = mode
	return c.rerender(ctx)
}

// Refresh re-renders the displayed document at once, for example after the
// page templates changed. Returns ErrSessionDisposed when nothing is open.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil || c.session.State != SessionActive {
		return ErrSessionDisposed
	}
	return c.rerender(ctx)
}

// rerender renders the latest text immediately, superseding a pending change.
func (c *Controller) rerender(ctx context.Context) error {
	s := c.session
	if s == nil || s.State != SessionActive {
		return nil
	}
	s.stopTimer()
	c.generation++
	return c.renderFull(ctx, s)
}

// Dispose tears the session down. A pending debounced render becomes a
// no-op. The controller returns to Closed; a later Open creates a new
// surface.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		c.session.dispose()
		c.logger.Info("session disposed", "doc", c.session.DocID)
	}
	c.session = nil
	c.surface = nil
	c.generation++
}

// State returns StateOpen while a session is active.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil && c.session.State == SessionActive {
		return StateOpen
	}
	return StateClosed
}

// Session returns a copy of the active session.
func (c *Controller) Session() (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return Session{}, false
	}
	return c.session.snapshot(), true
}

// Page returns the last successfully rendered page, or "" before the first.
func (c *Controller) Page() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil || c.session.Result == nil {
		return ""
	}
	return c.session.Result.HTML
}

// Theme returns the current theme setting.
func (c *Controller) Theme() mdslides.Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.theme
}

// Mode returns the current display mode.
func (c *Controller) Mode() mdslides.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// renderFull renders s and replaces the displayed page.
// On failure the previous page stays and the error is reported once.
func (c *Controller) renderFull(ctx context.Context, s *Session) error {
	result, err := c.render(ctx, s)
	if err != nil {
		c.notifyFailure(err)
		return err
	}

	if err := c.surface.Show(result.HTML); err != nil {
		return fmt.Errorf("showing page: %w", err)
	}
	s.Result = result
	c.logger.Debug("page shown", "doc", s.DocID, "mode", result.Mode, "theme", result.Theme)
	return nil
}

func (c *Controller) render(ctx context.Context, s *Session) (*mdslides.Result, error) {
	input := mdslides.Input{
		Markdown: s.Text,
		Theme:    c.theme,
		Mode:     c.mode,
		LiveURL:  c.liveURL,
	}
	if c.assets != nil {
		input.Assets = c.assets(s.DocID)
	}

	result, err := c.renderer.Render(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", s.DocID, err)
	}
	return result, nil
}

// notifyFailure reports a render error once and keeps the display.
func (c *Controller) notifyFailure(err error) {
	c.notifier.Error(err)
}
