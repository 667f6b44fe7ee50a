package naver

import (
	"context"
	"fmt"
	"strings"

	"naver-map-scraper/config"
	"naver-map-scraper/models"
	"naver-map-scraper/services"
	"naver-map-scraper/utils"
)

// Extractor pulls one place's detail pane: info sections, reviews and
// per-place keywords.
type Extractor struct {
	driver   Driver
	locators Locators
	cfg      *config.Config
	ranker   *services.KeywordRanker
	logger   *utils.Logger
}

func NewExtractor(d Driver, locators Locators, cfg *config.Config, ranker *services.KeywordRanker, logger *utils.Logger) *Extractor {
	return &Extractor{driver: d, locators: locators, cfg: cfg, ranker: ranker, logger: logger.With("extractor")}
}

// Extract opens item's detail pane and reads it. Whatever happens, the
// driver is put back into the result list frame before returning; if that
// fails the error wraps ErrContextRecovery and the place read so far (if
// any) is still returned. A pane that cannot be opened yields
// ErrDetailUnavailable and no place.
func (e *Extractor) Extract(ctx context.Context, item ListItem) (*models.Place, error) {
	place, err := e.extract(ctx, item)

	if rerr := e.restore(ctx); rerr != nil {
		return place, fmt.Errorf("%w: after %q: %v", ErrContextRecovery, item.Name, rerr)
	}
	return place, err
}

func (e *Extractor) extract(ctx context.Context, item ListItem) (*models.Place, error) {
	before, _ := e.driver.Location(ctx)

	if err := e.driver.Click(ctx, item.Handle); err != nil {
		return nil, fmt.Errorf("%w: click %q: %w", ErrDetailUnavailable, item.Name, err)
	}
	if err := e.driver.ReturnToRoot(ctx); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrDetailUnavailable, item.Name, err)
	}

	// The URL gains the place id once the detail pane starts loading.
	changed := func(ctx context.Context, d Driver) (bool, error) {
		loc, err := d.Location(ctx)
		if err != nil {
			return false, err
		}
		return loc != before && placeIDPattern.MatchString(loc), nil
	}
	if res, _ := WaitFor(ctx, e.driver, changed, e.cfg.ProbeTimeout, e.cfg.PollInterval); res != Found {
		e.logger.Debug("Location did not change after clicking %q (%s)", item.Name, res)
	}

	if err := SwitchContext(ctx, e.driver, e.locators.DetailFrame, e.cfg.WaitTimeout, e.cfg.PollInterval); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrDetailUnavailable, item.Name, err)
	}

	place := models.NewPlace(item.Name)
	if loc, err := e.driver.Location(ctx); err == nil {
		if id, err := ParsePlaceID(loc); err == nil {
			place.ID = id
		}
	}

	e.readSections(ctx, place)

	place.Reviews = e.collectReviews(ctx, item.Name)
	if len(place.Reviews) > 0 {
		place.Keywords = e.ranker.Rank(place.Reviews, e.cfg.TopKeywords)
	}
	return place, nil
}

// readSections fills BasicInfo. Sections without a readable heading or
// content are skipped.
func (e *Extractor) readSections(ctx context.Context, place *models.Place) {
	sections, err := Find(ctx, e.driver, e.locators.Section)
	if err != nil {
		e.logger.Debug("No info sections for %q: %v", place.Name, err)
		return
	}

	for _, sec := range sections {
		title, err := e.firstText(ctx, sec, e.locators.SectionHeading)
		if err != nil || title == "" {
			continue
		}
		content, err := e.firstText(ctx, sec, e.locators.SectionContent)
		if err != nil || content == "" {
			continue
		}
		place.BasicInfo[services.NormaliseText(title)] = content
	}
}

func (e *Extractor) firstText(ctx context.Context, scope Handle, loc Locator) (string, error) {
	handles, err := FindWithin(ctx, e.driver, scope, loc)
	if err != nil {
		return "", err
	}
	if len(handles) == 0 {
		return "", nil
	}
	text, err := e.driver.Text(ctx, handles[0])
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// collectReviews opens the reviews tab and scroll-collects review texts.
// A missing tab is not an error; it just means no reviews.
func (e *Extractor) collectReviews(ctx context.Context, name string) []string {
	tab, res, err := WaitForElement(ctx, e.driver, e.locators.ReviewTab, e.cfg.WaitTimeout, e.cfg.PollInterval)
	switch res {
	case Found:
	case NotPresent:
		e.logger.Info("%q has no reviews tab", name)
		return []string{}
	default:
		e.logger.Warn("Reviews tab for %q unavailable: %v", name, err)
		return []string{}
	}

	if err := e.driver.Click(ctx, tab); err != nil {
		e.logger.Warn("Opening reviews for %q failed: %v", name, err)
		return []string{}
	}
	if _, _, err := WaitForElement(ctx, e.driver, e.locators.ReviewText, e.cfg.WaitTimeout, e.cfg.PollInterval); err != nil {
		e.logger.Debug("No review text rendered yet for %q: %v", name, err)
	}

	set := services.NewReviewSet(e.cfg.MinReviewLength, e.cfg.ReviewCap)
	for round := 0; round < e.cfg.ReviewScrollRounds && !set.Full(); round++ {
		var container Handle
		if handles, err := Find(ctx, e.driver, e.locators.ReviewContainer); err == nil && len(handles) > 0 {
			container = handles[0]
		}
		if err := e.driver.Scroll(ctx, container, e.cfg.ReviewScrollStep); err != nil {
			e.logger.Debug("Scrolling reviews for %q failed: %v", name, err)
		}
		if err := utils.Sleep(ctx, e.cfg.SettleDelay); err != nil {
			break
		}

		handles, err := Find(ctx, e.driver, e.locators.ReviewText)
		if err != nil {
			e.logger.Debug("Reading reviews for %q failed: %v", name, err)
			continue
		}
		for _, h := range handles {
			text, err := e.driver.Text(ctx, h)
			if err != nil {
				continue
			}
			set.Add(text)
		}
	}

	e.logger.Debug("Collected %d reviews for %q", set.Len(), name)
	return set.Items()
}

// restore puts the driver back into the result list frame.
func (e *Extractor) restore(ctx context.Context) error {
	if err := e.driver.ReturnToRoot(ctx); err != nil {
		return err
	}
	return SwitchContext(ctx, e.driver, e.locators.SearchFrame, e.cfg.WaitTimeout, e.cfg.PollInterval)
}
