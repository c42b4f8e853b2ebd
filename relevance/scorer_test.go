package relevance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"FullWidthFolded", "ＡＢＣ１２３", "abc123"},
		{"StarVariantsUnified", "火影＊忍者·疾风•传", "火影*忍者*疾风*传"},
		{"ColonVariantsUnified", "标题：副标题", "标题:副标题"},
		{"ParensStripped", "名称（备注）(note)", "名称备注note"},
		{"PunctuationStripped", "一，二。三.四", "一二三四"},
		{"Lowercased", "GoLang Tutorial", "golang tutorial"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeText(tc.input))
		})
	}
}

func TestScoreWeb_Ordering(t *testing.T) {
	query := "机器学习"

	exact := ScoreWeb(query, "机器学习入门教程", "https://example.com/ml")
	partial := ScoreWeb(query, "学习编程的方法", "https://example.com/code")
	unrelated := ScoreWeb(query, "cooking recipes", "https://example.com/food")

	assert.Greater(t, exact, partial, "substring match must outrank character overlap")
	assert.Greater(t, partial, unrelated, "character overlap must outrank no overlap")
	assert.GreaterOrEqual(t, unrelated, int64(1), "every scored result keeps the base score")
}

func TestScoreWeb_OfficialMarker(t *testing.T) {
	query := "python"
	plain := ScoreWeb(query, "python tutorial", "https://example.com/py")
	official := ScoreWeb(query, "python tutorial official", "https://example.com/py")

	assert.Equal(t, int64(20), official-plain)
}

func TestScoreWeb_Deterministic(t *testing.T) {
	first := ScoreWeb("golang", "golang channels explained", "https://example.com")
	second := ScoreWeb("golang", "golang channels explained", "https://example.com")
	assert.Equal(t, first, second)
}

func TestAcceptResource(t *testing.T) {
	testCases := []struct {
		name     string
		query    string
		title    string
		expected bool
	}{
		{"ExactMatch", "ubuntu iso", "ubuntu iso 下载", true},
		{"LooseOverlap", "ubuntu", "buntu mirror", true},
		{"EmptyTitle", "ubuntu", "", false},
		{"BoilerplateLogin", "ubuntu", "login to download ubuntu", false},
		{"NoOverlap", "ubuntu", "苹果手机", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, AcceptResource(tc.query, tc.title))
		})
	}
}

func TestScoreResource(t *testing.T) {
	query := "三体"

	exact := ScoreResource(query, "三体全集下载", "")
	overlap := ScoreResource(query, "三国演义", "")
	none := ScoreResource(query, "unrelated", "")

	assert.GreaterOrEqual(t, exact, int64(1000), "substring match earns the exact bonus")
	assert.Greater(t, overlap, none)
	assert.GreaterOrEqual(t, none, int64(1))
}

func TestIsVideoLike(t *testing.T) {
	testCases := []struct {
		name     string
		url      string
		expected bool
	}{
		{"PlainVideoPage", "https://example.com/video/12345", true},
		{"VideoPageWithQuery", "https://example.com/video/12345?t=30", true},
		{"SearchFormInVideoSection", "https://example.com/video/search?q=x", false},
		{"BareSectionWithQuery", "https://example.com/video?q=x", false},
		{"WatchPage", "https://example.com/watch/abc", true},
		{"NoVideoPath", "https://example.com/article/12345", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsVideoLike(tc.url), tc.url)
		})
	}
}

func TestAcceptVideo(t *testing.T) {
	assert.True(t, AcceptVideo("some clip", "https://example.com/watch/abc"))
	assert.False(t, AcceptVideo("", "https://example.com/watch/abc"))
	assert.False(t, AcceptVideo("login required", "https://example.com/watch/abc"))
	assert.False(t, AcceptVideo("some clip", "https://example.com/videos/search?q=x"))
}

func TestAcceptImage(t *testing.T) {
	testCases := []struct {
		name     string
		query    string
		title    string
		url      string
		imageURL string
		expected bool
	}{
		{"KeywordAndSizeOk", "cat", "cat photo", "https://example.com/cat?w=800", "https://img.example.com/cat.jpg?w=600", true},
		{"NoKeywordOverlap", "cat", "dog photo", "https://example.com/dog", "", false},
		{"ThumbnailMarker", "cat", "cat photo", "https://example.com/cat_thumb", "", false},
		{"PageDimensionTooSmall", "cat", "cat photo", "https://example.com/cat?w=80", "", false},
		{"ImageDimensionTooSmall", "cat", "cat photo", "https://example.com/cat", "https://img.example.com/cat.jpg?w=40", false},
		{"NoExplicitDimensions", "cat", "cat photo", "https://example.com/cat", "https://img.example.com/cat.jpg", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, AcceptImage(tc.query, tc.title, tc.url, tc.imageURL))
		})
	}
}

func TestJaccardChars(t *testing.T) {
	assert.Equal(t, 1.0, JaccardChars("abc", "cba"))
	assert.Equal(t, 0.0, JaccardChars("abc", "xyz"))
	assert.InDelta(t, 0.5, JaccardChars("ab", "abcd"), 0.001)
}
