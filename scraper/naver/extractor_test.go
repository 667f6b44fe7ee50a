package naver

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"naver-map-scraper/models"
)

func revealFirst(t *testing.T, site *fakeSite) ListItem {
	t.Helper()
	require.NoError(t, site.enterSearch("카페"))
	items, _, err := NewPaginator(site.d, site.loc, testConfig(), testLogger()).Reveal(context.Background(), 1)
	require.NoError(t, err)
	require.NotEmpty(t, items)
	return items[0]
}

func newTestExtractor(site *fakeSite) *Extractor {
	return NewExtractor(site.d, site.loc, testConfig(), testRanker(), testLogger())
}

func TestExtractPlace(t *testing.T) {
	site := newFakeSite("카페", []fakePlace{{
		name: "연남 커피",
		id:   "1234567",
		sections: [][2]string{
			{"영업시간", "매일 10:00 - 22:00"},
			{"", "제목 없는 섹션"},
			{"전화번호", ""},
			{"  편의시설 ", "주차, 무선 인터넷"},
		},
		reviews: []string{
			"분위기가 정말 좋아요",
			"분위기 최고예요",
			"짧음",
			"분위기가 정말 좋아요",
			"   ",
		},
	}}, 1, 0)
	item := revealFirst(t, site)

	place, err := newTestExtractor(site).Extract(context.Background(), item)
	require.NoError(t, err)
	require.NotNil(t, place)

	assert.Equal(t, "연남 커피", place.Name)
	assert.Equal(t, "1234567", place.ID)
	assert.Equal(t, map[string]string{
		"영업시간": "매일 10:00 - 22:00",
		"편의시설": "주차, 무선 인터넷",
	}, place.BasicInfo)
	assert.Equal(t, []string{"분위기가 정말 좋아요", "분위기 최고예요"}, place.Reviews)
	require.NotEmpty(t, place.Keywords)
	assert.Equal(t, models.Keyword{Term: "분위기", Count: 2}, place.Keywords[0])

	// back in the result list
	assert.Same(t, site.search, site.d.current)
}

func TestExtractCapsAndFiltersReviews(t *testing.T) {
	reviews := make([]string, 0, 150)
	for i := 0; i < 150; i++ {
		reviews = append(reviews, fmt.Sprintf("리뷰 번호 %03d 입니다", i))
	}
	reviews = append(reviews, "좋아요", "맛있다")

	site := newFakeSite("카페", []fakePlace{{name: "큰집", id: "9", reviews: reviews}}, 1, 0)
	item := revealFirst(t, site)

	place, err := newTestExtractor(site).Extract(context.Background(), item)
	require.NoError(t, err)
	assert.Len(t, place.Reviews, 100)
	assert.Equal(t, "리뷰 번호 000 입니다", place.Reviews[0])

	seen := map[string]bool{}
	for _, r := range place.Reviews {
		assert.Greater(t, utf8.RuneCountInString(r), 5)
		assert.False(t, seen[r], "duplicate review %q", r)
		seen[r] = true
	}
	assert.LessOrEqual(t, len(place.Keywords), testConfig().TopKeywords)
}

func TestExtractWithoutReviewTab(t *testing.T) {
	site := newFakeSite("카페", []fakePlace{{
		name:        "조용한 서점",
		id:          "42",
		sections:    [][2]string{{"주소", "서울 마포구"}},
		noReviewTab: true,
	}}, 1, 0)
	item := revealFirst(t, site)

	place, err := newTestExtractor(site).Extract(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"주소": "서울 마포구"}, place.BasicInfo)
	assert.NotNil(t, place.Reviews)
	assert.Empty(t, place.Reviews)
	assert.NotNil(t, place.Keywords)
	assert.Empty(t, place.Keywords)
}

func TestExtractDetailUnavailable(t *testing.T) {
	site := newFakeSite("카페", []fakePlace{{name: "닫힌 가게", id: "5", noDetail: true}}, 1, 0)
	item := revealFirst(t, site)

	place, err := newTestExtractor(site).Extract(context.Background(), item)
	assert.Nil(t, place)
	assert.ErrorIs(t, err, ErrDetailUnavailable)
	assert.False(t, errors.Is(err, ErrContextRecovery))
	assert.Same(t, site.search, site.d.current)
}

func TestExtractStaleItem(t *testing.T) {
	site := newFakeSite("카페", []fakePlace{{name: "사라진 가게", id: "5"}}, 1, 0)
	item := revealFirst(t, site)
	site.items[0].stale = true

	place, err := newTestExtractor(site).Extract(context.Background(), item)
	assert.Nil(t, place)
	assert.ErrorIs(t, err, ErrDetailUnavailable)
	assert.ErrorIs(t, err, ErrStaleElement)
}

func TestExtractContextRecoveryFailure(t *testing.T) {
	site := newFakeSite("카페", []fakePlace{{
		name:     "연남 커피",
		id:       "77",
		sections: [][2]string{{"영업시간", "매일"}},
	}}, 1, 0)
	item := revealFirst(t, site)

	// The return after the click succeeds, the one after extraction fails.
	base := site.d.returns
	site.d.returnHook = func() error {
		if site.d.returns-base >= 2 {
			return errors.New("tab crashed")
		}
		return nil
	}

	place, err := newTestExtractor(site).Extract(context.Background(), item)
	assert.ErrorIs(t, err, ErrContextRecovery)
	require.NotNil(t, place)
	assert.Equal(t, "77", place.ID)
	assert.Equal(t, "매일", place.BasicInfo["영업시간"])
}
