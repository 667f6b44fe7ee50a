package naver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"naver-map-scraper/config"
	"naver-map-scraper/models"
	"naver-map-scraper/utils"
)

var (
	reviewRowSelectors = []string{"li.place_apply_pui.EjjAW", "li.place_apply_pui"}

	nicknameSelector = "div.pui__JiVbY3 > span.pui__uslU0d"
	contentSelector  = "div.pui__vn15t2 > a"
	dateSelector     = "div.pui__QKE5Pr > span.pui__gfuUIT > time"
	infoSelector     = "div.pui__QKE5Pr > span.pui__gfuUIT"
)

// ReviewCollector reads the visitor review list of a single place.
type ReviewCollector struct {
	driver   Driver
	locators Locators
	cfg      *config.Config
	logger   *utils.Logger
}

func NewReviewCollector(d Driver, locators Locators, cfg *config.Config, logger *utils.Logger) *ReviewCollector {
	return &ReviewCollector{driver: d, locators: locators, cfg: cfg, logger: logger.With("reviews")}
}

// Collect opens the review page of placeID, expands it with the "more"
// button and parses every rendered review row.
func (c *ReviewCollector) Collect(ctx context.Context, placeID string) ([]models.ReviewRow, error) {
	if err := c.driver.Navigate(ctx, ReviewURL(c.cfg, placeID)); err != nil {
		return nil, err
	}

	for i := 0; i < c.cfg.PageDownPresses; i++ {
		if err := c.driver.Scroll(ctx, Handle{}, c.cfg.ReviewScrollStep); err != nil {
			c.logger.Debug("Page down %d failed: %v", i+1, err)
			break
		}
	}

	clicks := c.expand(ctx)
	c.logger.Info("Clicked \"more\" %d times", clicks)

	if err := utils.Sleep(ctx, c.cfg.SettleDelay); err != nil {
		return nil, err
	}

	html, err := c.driver.HTML(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := ParseReviewRows(html)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Parsed %d review rows for place %s", len(rows), placeID)
	return rows, nil
}

// expand clicks the "more" button until it disappears or the click budget
// is spent, and returns the number of clicks.
func (c *ReviewCollector) expand(ctx context.Context) int {
	clicks := 0
	for clicks < c.cfg.MoreClicks {
		btn, res, err := WaitForElement(ctx, c.driver, c.locators.MoreButton, c.cfg.ProbeTimeout, c.cfg.PollInterval)
		switch res {
		case Found:
		case NotPresent:
			c.logger.Debug("No more button after %d clicks, list exhausted", clicks)
			return clicks
		default:
			c.logger.Warn("More button unavailable after %d clicks: %v", clicks, err)
			return clicks
		}

		if err := c.driver.Click(ctx, btn); err != nil {
			if errors.Is(err, ErrStaleElement) {
				c.logger.Debug("More button went away after %d clicks", clicks)
			} else {
				c.logger.Warn("Clicking more failed: %v", err)
			}
			return clicks
		}
		clicks++

		if err := utils.Sleep(ctx, c.cfg.MoreClickDelay); err != nil {
			return clicks
		}
	}
	return clicks
}

// ParseReviewRows extracts review rows from a rendered review page.
// Missing fields are left empty.
func ParseReviewRows(html string) ([]models.ReviewRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse review page: %w", err)
	}

	var items *goquery.Selection
	for _, sel := range reviewRowSelectors {
		items = doc.Find(sel)
		if items.Length() > 0 {
			break
		}
	}

	rows := make([]models.ReviewRow, 0, items.Length())
	items.Each(func(_ int, li *goquery.Selection) {
		row := models.ReviewRow{
			Nickname: strings.TrimSpace(li.Find(nicknameSelector).First().Text()),
			Content:  strings.TrimSpace(li.Find(contentSelector).First().Text()),
			Date:     strings.TrimSpace(li.Find(dateSelector).First().Text()),
		}
		if info := li.Find(infoSelector); info.Length() > 1 {
			row.Revisit = strings.TrimSpace(info.Eq(1).Text())
		}
		rows = append(rows, row)
	})
	return rows, nil
}
