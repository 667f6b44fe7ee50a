package utils

import (
	"context"
	"time"
)

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Pacer spaces out consecutive actions by a fixed minimum interval.
// The first call never waits.
type Pacer struct {
	interval time.Duration
	last     time.Time
}

// NewPacer creates a Pacer with the given minimum interval.
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval}
}

// Wait blocks until at least interval has passed since the previous Wait.
func (p *Pacer) Wait(ctx context.Context) error {
	if !p.last.IsZero() {
		if elapsed := time.Since(p.last); elapsed < p.interval {
			if err := Sleep(ctx, p.interval-elapsed); err != nil {
				return err
			}
		}
	}
	p.last = time.Now()
	return nil
}

// NameSet tracks display names that have already been processed.
type NameSet struct {
	seen map[string]struct{}
}

// NewNameSet creates an empty NameSet.
func NewNameSet() *NameSet {
	return &NameSet{seen: make(map[string]struct{})}
}

// Add returns true if the name was newly added, false if already present.
func (s *NameSet) Add(name string) bool {
	if _, exists := s.seen[name]; exists {
		return false
	}
	s.seen[name] = struct{}{}
	return true
}

// Contains returns true if the name has already been processed.
func (s *NameSet) Contains(name string) bool {
	_, exists := s.seen[name]
	return exists
}

// Size returns the number of unique names tracked.
func (s *NameSet) Size() int {
	return len(s.seen)
}
