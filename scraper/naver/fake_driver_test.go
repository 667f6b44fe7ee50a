package naver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"naver-map-scraper/config"
	"naver-map-scraper/services"
	"naver-map-scraper/utils"
)

// fakeElement is a node of the in-memory page used by fakeDriver.
type fakeElement struct {
	id       string
	text     string
	textErr  error
	stale    bool
	children map[string][]*fakeElement
	frame    *fakeDoc
	onClick  func()
}

// fakeDoc is a document: a flat selector → elements table.
type fakeDoc struct {
	elements map[string][]*fakeElement
	html     string
	onScroll func()
}

func newDoc() *fakeDoc {
	return &fakeDoc{elements: make(map[string][]*fakeElement)}
}

type fakeDriver struct {
	pages    map[string]*fakeDoc
	root     *fakeDoc
	current  *fakeDoc
	location string

	navErr       error
	returnErr    error
	returnHook   func() error
	locationFunc func() string
	returns      int

	byID        map[string]*fakeElement
	nextID      int
	navigations []string
	clicks      []string
	scrolls     int
	closed      bool
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		pages: make(map[string]*fakeDoc),
		byID:  make(map[string]*fakeElement),
	}
}

func (f *fakeDriver) el(text string) *fakeElement {
	f.nextID++
	e := &fakeElement{
		id:       fmt.Sprintf("e%d", f.nextID),
		text:     text,
		children: make(map[string][]*fakeElement),
	}
	f.byID[e.id] = e
	return e
}

func (f *fakeDriver) frame(doc *fakeDoc) *fakeElement {
	e := f.el("")
	e.frame = doc
	return e
}

func (f *fakeDriver) lookup(h Handle) (*fakeElement, error) {
	e, ok := f.byID[h.ID]
	if !ok || e.stale {
		return nil, fmt.Errorf("%w: %s", ErrStaleElement, h.ID)
	}
	return e, nil
}

func handlesOf(els []*fakeElement) []Handle {
	out := make([]Handle, 0, len(els))
	for _, e := range els {
		if !e.stale {
			out = append(out, Handle{ID: e.id})
		}
	}
	return out
}

func (f *fakeDriver) Navigate(_ context.Context, url string) error {
	f.navigations = append(f.navigations, url)
	if f.navErr != nil {
		return fmt.Errorf("%w: %s: %v", ErrNavigation, url, f.navErr)
	}
	doc, ok := f.pages[url]
	if !ok {
		return fmt.Errorf("%w: %s: no such page", ErrNavigation, url)
	}
	f.root = doc
	f.current = doc
	f.location = url
	return nil
}

func (f *fakeDriver) Location(context.Context) (string, error) {
	if f.locationFunc != nil {
		return f.locationFunc(), nil
	}
	return f.location, nil
}

func (f *fakeDriver) QueryAll(_ context.Context, scope Handle, selector string) ([]Handle, error) {
	if scope.IsZero() {
		if f.current == nil {
			return nil, errors.New("no document loaded")
		}
		return handlesOf(f.current.elements[selector]), nil
	}
	e, err := f.lookup(scope)
	if err != nil {
		return nil, err
	}
	return handlesOf(e.children[selector]), nil
}

func (f *fakeDriver) Text(_ context.Context, h Handle) (string, error) {
	e, err := f.lookup(h)
	if err != nil {
		return "", err
	}
	if e.textErr != nil {
		return "", e.textErr
	}
	return e.text, nil
}

func (f *fakeDriver) Click(_ context.Context, h Handle) error {
	e, err := f.lookup(h)
	if err != nil {
		return err
	}
	f.clicks = append(f.clicks, e.text)
	if e.onClick != nil {
		e.onClick()
	}
	return nil
}

func (f *fakeDriver) Scroll(_ context.Context, h Handle, _ int) error {
	if !h.IsZero() {
		if _, err := f.lookup(h); err != nil {
			return err
		}
	}
	f.scrolls++
	if f.current != nil && f.current.onScroll != nil {
		f.current.onScroll()
	}
	return nil
}

func (f *fakeDriver) EnterFrame(_ context.Context, frame Handle) error {
	e, err := f.lookup(frame)
	if err != nil {
		return err
	}
	if e.frame == nil {
		return errors.New("not a frame")
	}
	f.current = e.frame
	return nil
}

func (f *fakeDriver) ReturnToRoot(context.Context) error {
	f.returns++
	if f.returnErr != nil {
		return f.returnErr
	}
	if f.returnHook != nil {
		if err := f.returnHook(); err != nil {
			return err
		}
	}
	f.current = f.root
	return nil
}

func (f *fakeDriver) HTML(context.Context) (string, error) {
	if f.current == nil {
		return "", errors.New("no document loaded")
	}
	return f.current.html, nil
}

func (f *fakeDriver) Close() error {
	f.closed = true
	return nil
}

var _ Driver = (*fakeDriver)(nil)

func testConfig() *config.Config {
	return &config.Config{
		SearchURLTemplate:  "https://map.test/search/%s",
		ReviewURLTemplate:  "https://m.place.test/restaurant/%s/review/visitor",
		MaxPlaces:          10,
		ListScrollAttempts: 3,
		ListScrollStep:     300,
		ReviewScrollRounds: 3,
		ReviewScrollStep:   500,
		ReviewCap:          100,
		MinReviewLength:    5,
		PageDownPresses:    2,
		MoreClicks:         30,
		TopKeywords:        15,
		SummaryKeywords:    20,
		ReviewFlowKeywords: 10,
		WaitTimeout:        60 * time.Millisecond,
		ProbeTimeout:       20 * time.Millisecond,
		PollInterval:       5 * time.Millisecond,
	}
}

func testRanker() *services.KeywordRanker {
	return services.NewKeywordRanker(services.KeywordConfig{})
}

func testLogger() *utils.Logger {
	return utils.Discard()
}

// fakePlace describes one place of the fake map site.
type fakePlace struct {
	name        string
	id          string
	sections    [][2]string
	reviews     []string
	noDetail    bool
	noReviewTab bool
}

// fakeSite is a search result page with an embedded result list frame and a
// detail frame that is swapped in when a list entry is clicked.
type fakeSite struct {
	d         *fakeDriver
	loc       Locators
	root      *fakeDoc
	search    *fakeDoc
	items     []*fakeElement
	container *fakeElement
	details   map[string]*fakeDoc
	extracted []string
}

// newFakeSite builds a site for keyword whose list initially shows
// `visible` entries and reveals `step` more per scroll.
func newFakeSite(keyword string, places []fakePlace, visible, step int) *fakeSite {
	d := newFakeDriver()
	s := &fakeSite{
		d:       d,
		loc:     DefaultLocators(),
		root:    newDoc(),
		search:  newDoc(),
		details: make(map[string]*fakeDoc),
	}

	url := SearchURL(testConfig(), keyword)
	d.pages[url] = s.root
	s.root.elements[s.loc.SearchFrame.Selectors[0]] = []*fakeElement{d.frame(s.search)}
	s.container = d.el("")
	s.search.elements[s.loc.ListContainer.Selectors[0]] = []*fakeElement{s.container}

	for _, p := range places {
		p := p
		item := d.el(p.name)
		item.onClick = func() { s.open(p) }
		s.items = append(s.items, item)
	}

	shown := visible
	s.showItems(shown)
	s.search.onScroll = func() {
		shown += step
		s.showItems(shown)
	}
	return s
}

func (s *fakeSite) showItems(n int) {
	if n > len(s.items) {
		n = len(s.items)
	}
	s.search.elements[s.loc.ListItem.Selectors[0]] = s.items[:n]
}

func (s *fakeSite) open(p fakePlace) {
	d := s.d
	s.extracted = append(s.extracted, p.name)
	d.location = "https://map.test/search/x/place/" + p.id + "?c=15"

	if p.noDetail {
		delete(s.root.elements, s.loc.DetailFrame.Selectors[0])
		return
	}

	detail := newDoc()
	s.details[p.name] = detail
	for _, sec := range p.sections {
		el := d.el("")
		if sec[0] != "" {
			el.children[s.loc.SectionHeading.Selectors[0]] = []*fakeElement{d.el(sec[0])}
		}
		if sec[1] != "" {
			el.children[s.loc.SectionContent.Selectors[0]] = []*fakeElement{d.el(sec[1])}
		}
		detail.elements[s.loc.Section.Selectors[0]] = append(detail.elements[s.loc.Section.Selectors[0]], el)
	}

	if !p.noReviewTab {
		home := d.el("홈")
		tab := d.el("리뷰 " + fmt.Sprint(len(p.reviews)))
		tab.onClick = func() {
			reviews := make([]*fakeElement, 0, len(p.reviews))
			for _, r := range p.reviews {
				reviews = append(reviews, d.el(r))
			}
			detail.elements[s.loc.ReviewText.Selectors[0]] = reviews
		}
		detail.elements[s.loc.ReviewTab.Selectors[0]] = []*fakeElement{home, tab}
	}

	s.root.elements[s.loc.DetailFrame.Selectors[0]] = []*fakeElement{d.frame(detail)}
}

// enterSearch loads the search page and enters the result list frame.
func (s *fakeSite) enterSearch(keyword string) error {
	ctx := context.Background()
	if err := s.d.Navigate(ctx, SearchURL(testConfig(), keyword)); err != nil {
		return err
	}
	cfg := testConfig()
	return SwitchContext(ctx, s.d, s.loc.SearchFrame, cfg.WaitTimeout, cfg.PollInterval)
}
