package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"naver-map-scraper/config"
	"naver-map-scraper/utils"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	staleMarker = "__stale_element__"

	textScript   = `function() { return (this.innerText || this.textContent || '').trim(); }`
	clickScript  = `function() { this.click(); return true; }`
	scrollScript = `function() {
		var el = (this.tagName === 'HTML' || this.tagName === 'BODY')
			? (this.ownerDocument.scrollingElement || this) : this;
		if (%d <= 0) { el.scrollTop = el.scrollHeight; } else { el.scrollBy(0, %d); }
		return el.scrollTop;
	}`
)

// Session is the chromedp-backed Driver. It owns one browser process and
// one tab for the lifetime of a run.
type Session struct {
	cfg    *config.Config
	logger *utils.Logger

	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc

	frame  *cdp.Node
	nodes  map[string]*cdp.Node
	closed bool
}

// NewSession launches the browser. The caller must Close the session on
// every exit path.
func NewSession(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*Session, error) {
	logger = logger.With("session")

	chromeBin := cfg.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	logger.Info("Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		// Keep the cross-origin result/detail frames in-process so their
		// DOM stays reachable through FromNode.
		chromedp.Flag("disable-site-isolation-trials", true),
		chromedp.Flag("disable-features", "IsolateOrigins,site-per-process"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(userAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return &Session{
		cfg:         cfg,
		logger:      logger,
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		nodes:       make(map[string]*cdp.Node),
	}, nil
}

// run executes actions on the tab, bounded by timeout and by the caller's ctx.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if s.closed {
		return fmt.Errorf("session closed")
	}
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	s.frame = nil
	s.nodes = make(map[string]*cdp.Node)

	err := s.run(ctx, s.cfg.PageLoadTimeout,
		chromedp.Navigate(url),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return waitForDocumentReady(ctx, s.cfg.PollInterval)
		}),
	)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNavigation, url, err)
	}
	s.logger.Debug("Loaded %s", url)
	return nil
}

func (s *Session) Location(ctx context.Context) (string, error) {
	var url string
	if err := s.run(ctx, s.cfg.WaitTimeout, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return url, nil
}

func (s *Session) QueryAll(ctx context.Context, scope Handle, selector string) ([]Handle, error) {
	from := s.frame
	if !scope.IsZero() {
		node, ok := s.nodes[scope.ID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown handle %q", ErrStaleElement, scope.ID)
		}
		from = node
	}

	opts := []chromedp.QueryOption{chromedp.ByQueryAll, chromedp.AtLeast(0)}
	if from != nil {
		opts = append(opts, chromedp.FromNode(from))
	}

	var nodes []*cdp.Node
	if err := s.run(ctx, s.cfg.WaitTimeout, chromedp.Nodes(selector, &nodes, opts...)); err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}

	handles := make([]Handle, 0, len(nodes))
	for _, n := range nodes {
		id := strconv.FormatInt(int64(n.BackendNodeID), 10)
		s.nodes[id] = n
		handles = append(handles, Handle{ID: id})
	}
	return handles, nil
}

func (s *Session) Text(ctx context.Context, h Handle) (string, error) {
	var text string
	if err := s.callOn(ctx, h, textScript, &text); err != nil {
		return "", err
	}
	return text, nil
}

func (s *Session) Click(ctx context.Context, h Handle) error {
	return s.callOn(ctx, h, clickScript, nil)
}

func (s *Session) Scroll(ctx context.Context, h Handle, dy int) error {
	if h.IsZero() {
		roots, err := s.QueryAll(ctx, Handle{}, "html")
		if err != nil {
			return err
		}
		if len(roots) == 0 {
			return fmt.Errorf("scroll: current document has no root element")
		}
		h = roots[0]
	}
	return s.callOn(ctx, h, fmt.Sprintf(scrollScript, dy, dy), nil)
}

func (s *Session) EnterFrame(ctx context.Context, frame Handle) error {
	node, ok := s.nodes[frame.ID]
	if !ok {
		return fmt.Errorf("%w: unknown frame handle %q", ErrStaleElement, frame.ID)
	}
	if !strings.EqualFold(node.NodeName, "iframe") && !strings.EqualFold(node.NodeName, "frame") {
		return fmt.Errorf("enter frame: element is a %s, not a frame", node.NodeName)
	}
	s.frame = node
	return nil
}

// ReturnToRoot also checks that the tab still answers, since a dead tab
// leaves the run in an unknown state.
func (s *Session) ReturnToRoot(ctx context.Context) error {
	s.frame = nil
	var alive bool
	if err := s.run(ctx, s.cfg.WaitTimeout, chromedp.Evaluate(`true`, &alive)); err != nil {
		return fmt.Errorf("return to root: %w", err)
	}
	return nil
}

func (s *Session) HTML(ctx context.Context) (string, error) {
	opts := []chromedp.QueryOption{chromedp.ByQuery}
	if s.frame != nil {
		opts = append(opts, chromedp.FromNode(s.frame))
	}
	var html string
	if err := s.run(ctx, s.cfg.WaitTimeout, chromedp.OuterHTML("html", &html, opts...)); err != nil {
		return "", fmt.Errorf("read html: %w", err)
	}
	return html, nil
}

// Close shuts down the tab and the browser process. It is safe to call more
// than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.cancelTab()
	s.cancelAlloc()
	s.logger.Debug("Browser closed")
	return nil
}

// callOn runs fn with `this` bound to the element. Detached elements raise
// ErrStaleElement.
func (s *Session) callOn(ctx context.Context, h Handle, fn string, out any) error {
	node, ok := s.nodes[h.ID]
	if !ok {
		return fmt.Errorf("%w: unknown handle %q", ErrStaleElement, h.ID)
	}

	guarded := `function() {
		if (!this.isConnected) { throw new Error('` + staleMarker + `'); }
		return (` + fn + `).apply(this, arguments);
	}`

	return s.run(ctx, s.cfg.WaitTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithBackendNodeID(node.BackendNodeID).Do(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStaleElement, err)
		}
		defer func() { _ = runtime.ReleaseObject(obj.ObjectID).Do(ctx) }()

		res, exc, err := runtime.CallFunctionOn(guarded).
			WithObjectID(obj.ObjectID).
			WithReturnByValue(true).
			Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			msg := exc.Text
			if exc.Exception != nil {
				msg += " " + exc.Exception.Description
			}
			if strings.Contains(msg, staleMarker) {
				return ErrStaleElement
			}
			return fmt.Errorf("script exception: %s", strings.TrimSpace(msg))
		}
		if out == nil || res == nil || len(res.Value) == 0 {
			return nil
		}
		return json.Unmarshal([]byte(res.Value), out)
	}))
}

func waitForDocumentReady(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		var state string
		err := chromedp.Evaluate(`document.readyState`, &state).Do(ctx)
		if err == nil && state == "complete" {
			return nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			if lastErr != nil {
				return lastErr
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

var _ Driver = (*Session)(nil)
