package naver

import (
	"context"
	"errors"
	"fmt"

	"naver-map-scraper/config"
	"naver-map-scraper/services"
	"naver-map-scraper/utils"
)

// Crawler orchestrates a keyword search: it walks the result list and
// extracts each place it has not seen yet.
type Crawler struct {
	driver    Driver
	cfg       *config.Config
	locators  Locators
	paginator *Paginator
	extractor *Extractor
	pacer     *utils.Pacer
	logger    *utils.Logger
}

// New creates a Crawler over d using the default Naver Map locators.
func New(d Driver, cfg *config.Config, ranker *services.KeywordRanker, logger *utils.Logger) *Crawler {
	return NewWithLocators(d, cfg, DefaultLocators(), ranker, logger)
}

func NewWithLocators(d Driver, cfg *config.Config, locators Locators, ranker *services.KeywordRanker, logger *utils.Logger) *Crawler {
	return &Crawler{
		driver:    d,
		cfg:       cfg,
		locators:  locators,
		paginator: NewPaginator(d, locators, cfg, logger),
		extractor: NewExtractor(d, locators, cfg, ranker, logger),
		pacer:     utils.NewPacer(cfg.RateLimit),
		logger:    logger.With("crawler"),
	}
}

// Crawl searches for keyword and extracts up to maxPlaces places. The
// returned set always holds everything gathered so far, also when an error
// aborted the run.
func (c *Crawler) Crawl(ctx context.Context, keyword string, maxPlaces int) (*services.ResultSet, error) {
	results := services.NewResultSet()
	if maxPlaces <= 0 {
		maxPlaces = c.cfg.MaxPlaces
	}

	c.logger.Info("Searching %q for up to %d places", keyword, maxPlaces)
	if err := c.driver.Navigate(ctx, SearchURL(c.cfg, keyword)); err != nil {
		return results, err
	}
	if err := SwitchContext(ctx, c.driver, c.locators.SearchFrame, c.cfg.WaitTimeout, c.cfg.PollInterval); err != nil {
		return results, fmt.Errorf("enter search results: %w", err)
	}

	seen := utils.NewNameSet()
	for results.Len() < maxPlaces {
		want := seen.Size() + (maxPlaces - results.Len())
		items, scrolls, err := c.paginator.Reveal(ctx, want)
		if err != nil {
			return results, err
		}
		c.logger.Debug("Round: %d entries visible, %d scrolls", len(items), scrolls)

		progressed := false
		for _, item := range items {
			if results.Len() >= maxPlaces {
				break
			}
			if !seen.Add(item.Name) {
				continue
			}
			progressed = true

			if err := c.pacer.Wait(ctx); err != nil {
				return results, err
			}

			place, err := c.extractor.Extract(ctx, item)
			if place != nil && !results.Add(place) {
				c.logger.Debug("Skipping duplicate place %q", place.Name)
			}
			if err != nil {
				if errors.Is(err, ErrContextRecovery) || ctx.Err() != nil {
					c.logger.Error("Aborting crawl: %v", err)
					return results, err
				}
				c.logger.Warn("Skipping %q: %v", item.Name, err)
				continue
			}

			c.logger.Info("[%d/%d] %s: %d info sections, %d reviews",
				results.Len(), maxPlaces, place.Name, len(place.BasicInfo), len(place.Reviews))
		}

		if !progressed {
			c.logger.Info("No unseen places left in the result list")
			break
		}
	}

	c.logger.Info("Crawl complete: %d places", results.Len())
	return results, nil
}
