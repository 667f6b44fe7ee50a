package naver

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	ErrNavigation         = errors.New("navigation failed")
	ErrTimeout            = errors.New("wait timed out")
	ErrStaleElement       = errors.New("element is no longer attached")
	ErrDetailUnavailable  = errors.New("detail pane unavailable")
	ErrContextRecovery    = errors.New("could not return to the results list")
	ErrIdentifierNotFound = errors.New("place identifier not found")
)

// Handle references an element inside the browser. The zero Handle means
// "the current document".
type Handle struct {
	ID string
}

func (h Handle) IsZero() bool { return h.ID == "" }

// Driver is a single browser tab. Implementations are not safe for
// concurrent use; the crawler issues every call from one goroutine.
type Driver interface {
	// Navigate loads url and waits for the document to be ready. The current
	// context is reset to the top-level document.
	Navigate(ctx context.Context, url string) error
	// Location returns the top-level URL.
	Location(ctx context.Context) (string, error)
	// QueryAll returns the elements matching a CSS selector in document
	// order, searched under scope or, for a zero scope, the current context.
	QueryAll(ctx context.Context, scope Handle, selector string) ([]Handle, error)
	// Text returns the element's trimmed inner text.
	Text(ctx context.Context, h Handle) (string, error)
	// Click activates the element programmatically.
	Click(ctx context.Context, h Handle) error
	// Scroll scrolls the element, or the current document for a zero handle,
	// by dy pixels. dy <= 0 scrolls to the end.
	Scroll(ctx context.Context, h Handle, dy int) error
	// EnterFrame makes the frame's document the current context.
	EnterFrame(ctx context.Context, frame Handle) error
	// ReturnToRoot makes the top-level document the current context.
	ReturnToRoot(ctx context.Context) error
	// HTML returns the outer HTML of the current context document.
	HTML(ctx context.Context) (string, error)
	Close() error
}

// Locator resolves an element role through a fallback chain of selectors.
// The first selector with at least one (text-filtered) match wins.
type Locator struct {
	Role         string
	Selectors    []string
	TextContains string
}

func (l Locator) String() string {
	if l.Role != "" {
		return l.Role
	}
	return strings.Join(l.Selectors, " | ")
}

// Find resolves loc in the current context.
func Find(ctx context.Context, d Driver, loc Locator) ([]Handle, error) {
	return FindWithin(ctx, d, Handle{}, loc)
}

// FindWithin resolves loc under scope. Selectors that fail to evaluate are
// skipped; the last failure is returned only when nothing matched.
func FindWithin(ctx context.Context, d Driver, scope Handle, loc Locator) ([]Handle, error) {
	var lastErr error
	for _, sel := range loc.Selectors {
		handles, err := d.QueryAll(ctx, scope, sel)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		if loc.TextContains != "" {
			handles = filterByText(ctx, d, handles, loc.TextContains)
		}
		if len(handles) > 0 {
			return handles, nil
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("locate %s: %w", loc, lastErr)
	}
	return nil, nil
}

func filterByText(ctx context.Context, d Driver, handles []Handle, needle string) []Handle {
	var out []Handle
	for _, h := range handles {
		text, err := d.Text(ctx, h)
		if err != nil {
			continue
		}
		if strings.Contains(text, needle) {
			out = append(out, h)
		}
	}
	return out
}

// WaitResult is the outcome of WaitFor.
type WaitResult int

const (
	// Found means the condition became true.
	Found WaitResult = iota
	// NotPresent means the condition was evaluated successfully but stayed
	// false until the deadline.
	NotPresent
	// TimedOut means the condition could not be evaluated before the deadline.
	TimedOut
)

func (r WaitResult) String() string {
	switch r {
	case Found:
		return "found"
	case NotPresent:
		return "not present"
	default:
		return "timed out"
	}
}

// Condition is a predicate over the current document.
type Condition func(ctx context.Context, d Driver) (bool, error)

// WaitFor polls cond every interval until it holds or timeout elapses.
// Found returns a nil error; NotPresent and TimedOut return an error wrapping
// ErrTimeout. Cancelling ctx ends the wait immediately with ctx's error.
func WaitFor(ctx context.Context, d Driver, cond Condition, timeout, interval time.Duration) (WaitResult, error) {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		ok, err := cond(ctx, d)
		if err == nil && ok {
			return Found, nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return TimedOut, ctx.Err()
		case <-deadline.C:
			if lastErr != nil {
				return TimedOut, fmt.Errorf("%w after %v: %v", ErrTimeout, timeout, lastErr)
			}
			return NotPresent, fmt.Errorf("%w after %v: condition not met", ErrTimeout, timeout)
		case <-ticker.C:
		}
	}
}

// ElementPresent holds when loc resolves to at least one element.
func ElementPresent(loc Locator) Condition {
	return func(ctx context.Context, d Driver) (bool, error) {
		handles, err := Find(ctx, d, loc)
		if err != nil {
			return false, err
		}
		return len(handles) > 0, nil
	}
}

// LocationMatches holds when the top-level URL matches re.
func LocationMatches(re *regexp.Regexp) Condition {
	return func(ctx context.Context, d Driver) (bool, error) {
		loc, err := d.Location(ctx)
		if err != nil {
			return false, err
		}
		return re.MatchString(loc), nil
	}
}

// WaitForElement waits for loc and returns its first match.
func WaitForElement(ctx context.Context, d Driver, loc Locator, timeout, interval time.Duration) (Handle, WaitResult, error) {
	var found Handle
	cond := func(ctx context.Context, d Driver) (bool, error) {
		handles, err := Find(ctx, d, loc)
		if err != nil {
			return false, err
		}
		if len(handles) == 0 {
			return false, nil
		}
		found = handles[0]
		return true, nil
	}
	res, err := WaitFor(ctx, d, cond, timeout, interval)
	if err != nil {
		return Handle{}, res, fmt.Errorf("wait for %s: %w", loc, err)
	}
	return found, res, nil
}

// SwitchContext waits for the frame identified by loc in the current
// context and enters it.
func SwitchContext(ctx context.Context, d Driver, loc Locator, timeout, interval time.Duration) error {
	frame, _, err := WaitForElement(ctx, d, loc, timeout, interval)
	if err != nil {
		return err
	}
	if err := d.EnterFrame(ctx, frame); err != nil {
		return fmt.Errorf("enter %s: %w", loc, err)
	}
	return nil
}

var placeIDPattern = regexp.MustCompile(`/place/(\d+)`)

// ParsePlaceID extracts the numeric place id from a map URL.
func ParsePlaceID(location string) (string, error) {
	m := placeIDPattern.FindStringSubmatch(location)
	if len(m) < 2 {
		return "", fmt.Errorf("%w in %q", ErrIdentifierNotFound, location)
	}
	return m[1], nil
}
