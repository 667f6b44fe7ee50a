package naver

// Locators groups every element role the crawler needs. Each role is a
// fallback chain, so a markup change on the site usually costs one selector
// rather than the whole run.
type Locators struct {
	SearchFrame     Locator
	DetailFrame     Locator
	ListContainer   Locator
	ListItem        Locator
	FirstResult     Locator
	Section         Locator
	SectionHeading  Locator
	SectionContent  Locator
	ReviewTab       Locator
	ReviewText      Locator
	ReviewContainer Locator
	MoreButton      Locator
}

// reviewMarker is the text of the reviews tab in the detail pane.
const reviewMarker = "리뷰"

// DefaultLocators returns the selectors for the current Naver Map markup.
func DefaultLocators() Locators {
	return Locators{
		SearchFrame: Locator{
			Role:      "search frame",
			Selectors: []string{`iframe#searchIframe`, `iframe[id*="search"]`},
		},
		DetailFrame: Locator{
			Role:      "detail frame",
			Selectors: []string{`iframe#entryIframe`, `iframe[id*="entry"]`},
		},
		ListContainer: Locator{
			Role:      "result list",
			Selectors: []string{`#_pcmap_list_scroll_container`, `div[class*="scroll_container"]`},
		},
		ListItem: Locator{
			Role: "result item",
			Selectors: []string{
				`div[class*="ouxiq"] > a[class*="tzwk0"]`,
				`#_pcmap_list_scroll_container li a.place_bluelink`,
				`#_pcmap_list_scroll_container li div > a span[class]:first-child`,
			},
		},
		FirstResult: Locator{
			Role: "first result",
			Selectors: []string{
				`#_pcmap_list_scroll_container > ul > li:first-child > div:first-child > div:first-child > a`,
				`#_pcmap_list_scroll_container li:first-child a.place_bluelink`,
				`#_pcmap_list_scroll_container li:first-child a`,
			},
		},
		Section: Locator{
			Role:      "info section",
			Selectors: []string{`div[class*="place_section_content"]`, `div.place_section`},
		},
		SectionHeading: Locator{
			Role:      "section heading",
			Selectors: []string{`h2`, `strong[class*="title"]`},
		},
		SectionContent: Locator{
			Role:      "section content",
			Selectors: []string{`div[class*="O8qbU"]`, `ul`, `div`},
		},
		ReviewTab: Locator{
			Role:         "reviews tab",
			Selectors:    []string{`a[role="tab"] span`, `a[href*="/review"] span`, `span`},
			TextContains: reviewMarker,
		},
		ReviewText: Locator{
			Role:      "review text",
			Selectors: []string{`div[class*="pui__vn15t2"] > a > span`, `div[class*="pui__vn15t2"] > a`},
		},
		ReviewContainer: Locator{
			Role:      "review list",
			Selectors: []string{`div[class*="place_section"] ul[class*="review"]`},
		},
		MoreButton: Locator{
			Role: "load more",
			Selectors: []string{
				`#app-root > div > div > div > div:nth-child(6) > div:nth-child(2) > div:nth-child(4) > div:nth-child(2) > div > a > span`,
				`a[class*="fvwqf"] span`,
				`a > span`,
			},
			TextContains: "더보기",
		},
	}
}
