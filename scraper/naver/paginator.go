package naver

import (
	"context"
	"strings"

	"naver-map-scraper/config"
	"naver-map-scraper/utils"
)

// ListItem is one entry of the search result list.
type ListItem struct {
	Handle Handle
	Name   string
}

// Paginator reveals result list entries by scrolling the list container.
type Paginator struct {
	driver   Driver
	locators Locators
	cfg      *config.Config
	logger   *utils.Logger
}

func NewPaginator(d Driver, locators Locators, cfg *config.Config, logger *utils.Logger) *Paginator {
	return &Paginator{driver: d, locators: locators, cfg: cfg, logger: logger.With("paginator")}
}

// Reveal scrolls the result list until at least minCount distinct entries
// are visible or the scroll budget is spent. It returns the visible entries
// in list order together with the number of scrolls issued. Too few entries
// is not an error.
func (p *Paginator) Reveal(ctx context.Context, minCount int) ([]ListItem, int, error) {
	scrolls := 0
	for {
		items, err := p.visible(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return items, scrolls, ctx.Err()
			}
			p.logger.Warn("Reading result list failed: %v", err)
		}

		if len(items) >= minCount || scrolls >= p.cfg.ListScrollAttempts {
			p.logger.Debug("%d entries visible after %d scrolls (wanted %d)", len(items), scrolls, minCount)
			return items, scrolls, nil
		}

		if err := p.scroll(ctx); err != nil {
			if ctx.Err() != nil {
				return items, scrolls, ctx.Err()
			}
			p.logger.Warn("Scrolling result list failed: %v", err)
		}
		scrolls++

		if err := utils.Sleep(ctx, p.cfg.SettleDelay); err != nil {
			return items, scrolls, err
		}
	}
}

// visible returns the named entries currently rendered, one per display name.
func (p *Paginator) visible(ctx context.Context) ([]ListItem, error) {
	handles, err := Find(ctx, p.driver, p.locators.ListItem)
	if err != nil {
		return nil, err
	}

	names := utils.NewNameSet()
	items := make([]ListItem, 0, len(handles))
	for _, h := range handles {
		text, err := p.driver.Text(ctx, h)
		if err != nil {
			continue
		}
		name := strings.TrimSpace(text)
		if name == "" || !names.Add(name) {
			continue
		}
		items = append(items, ListItem{Handle: h, Name: name})
	}
	return items, nil
}

func (p *Paginator) scroll(ctx context.Context) error {
	var container Handle
	if handles, err := Find(ctx, p.driver, p.locators.ListContainer); err == nil && len(handles) > 0 {
		container = handles[0]
	}
	return p.driver.Scroll(ctx, container, p.cfg.ListScrollStep)
}
