package naver

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"naver-map-scraper/config"
	"naver-map-scraper/utils"
)

// IdentifierCache remembers display name → place id lookups across runs.
type IdentifierCache interface {
	Get(ctx context.Context, name string) (string, bool, error)
	Put(ctx context.Context, name, id string) error
}

// SearchURL returns the map search URL for keyword.
func SearchURL(cfg *config.Config, keyword string) string {
	return fmt.Sprintf(cfg.SearchURLTemplate, url.PathEscape(keyword))
}

// ReviewURL returns the visitor review page for a place id.
func ReviewURL(cfg *config.Config, placeID string) string {
	return fmt.Sprintf(cfg.ReviewURLTemplate, url.PathEscape(placeID))
}

// Resolver maps a display name to the site's numeric place id by opening
// the first search result.
type Resolver struct {
	driver   Driver
	locators Locators
	cfg      *config.Config
	cache    IdentifierCache
	logger   *utils.Logger
}

// NewResolver creates a Resolver. cache may be nil.
func NewResolver(d Driver, locators Locators, cfg *config.Config, cache IdentifierCache, logger *utils.Logger) *Resolver {
	return &Resolver{driver: d, locators: locators, cfg: cfg, cache: cache, logger: logger.With("resolver")}
}

// Resolve returns the place id for name. It fails with ErrIdentifierNotFound
// when the search has no result or the resulting URL carries no id.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty place name", ErrIdentifierNotFound)
	}

	if r.cache != nil {
		id, ok, err := r.cache.Get(ctx, name)
		switch {
		case err != nil:
			r.logger.Warn("Identifier cache lookup for %q failed: %v", name, err)
		case ok:
			r.logger.Info("Place %q → ID %s (cached)", name, id)
			return id, nil
		}
	}

	if err := r.driver.Navigate(ctx, SearchURL(r.cfg, name)); err != nil {
		return "", err
	}
	if err := SwitchContext(ctx, r.driver, r.locators.SearchFrame, r.cfg.WaitTimeout, r.cfg.PollInterval); err != nil {
		return "", fmt.Errorf("enter search results for %q: %w", name, err)
	}

	first, _, err := WaitForElement(ctx, r.driver, r.locators.FirstResult, r.cfg.WaitTimeout, r.cfg.PollInterval)
	if err != nil {
		return "", fmt.Errorf("%w: no search result for %q: %w", ErrIdentifierNotFound, name, err)
	}
	if err := r.driver.Click(ctx, first); err != nil {
		return "", fmt.Errorf("%w: open first result for %q: %w", ErrIdentifierNotFound, name, err)
	}
	if err := r.driver.ReturnToRoot(ctx); err != nil {
		return "", err
	}

	if res, _ := WaitFor(ctx, r.driver, LocationMatches(placeIDPattern), r.cfg.WaitTimeout, r.cfg.PollInterval); res != Found {
		r.logger.Debug("Location never showed a place id for %q (%s)", name, res)
	}

	loc, err := r.driver.Location(ctx)
	if err != nil {
		return "", err
	}
	id, err := ParsePlaceID(loc)
	if err != nil {
		return "", err
	}

	r.logger.Info("Place %q → ID %s", name, id)
	if r.cache != nil {
		if err := r.cache.Put(ctx, name, id); err != nil {
			r.logger.Warn("Caching identifier for %q failed: %v", name, err)
		}
	}
	return id, nil
}
