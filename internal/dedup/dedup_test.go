package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/steelwatch/newsbrief/internal/model"
)

func TestNormalizeURL_TrackingParamsStripped(t *testing.T) {
	variants := []string{
		"https://example.com/story?id=7&utm_source=mail&utm_medium=email",
		"https://www.example.com/story?id=7",
		"HTTPS://Example.com/story?id=7&gclid=abc123",
		"https://example.com/story?id=7#section-2",
		"https://example.com/story?utm_campaign=q1&id=7&fbclid=xyz",
	}

	want := NormalizeURL(variants[0])
	assert.Equal(t, "https://example.com/story?id=7", want)
	for _, v := range variants[1:] {
		assert.Equal(t, want, NormalizeURL(v), v)
	}
}

func TestNormalizeURL_PreservesQueryOrder(t *testing.T) {
	got := NormalizeURL("https://example.com/a?b=2&utm_term=x&a=1&c=3")
	assert.Equal(t, "https://example.com/a?b=2&a=1&c=3", got)
}

func TestNormalizeURL_Empty(t *testing.T) {
	assert.Equal(t, "", NormalizeURL(""))
	assert.Equal(t, "", NormalizeURL("   "))
}

func TestNormalizeURL_ExpandsGoogleRedirect(t *testing.T) {
	wrapped := "https://www.google.com/url?rct=j&url=https://steel.example.com/news/1&ct=ga"
	assert.Equal(t, "https://steel.example.com/news/1", NormalizeURL(wrapped))

	qParam := "https://www.google.com/url?q=https://steel.example.com/news/2"
	assert.Equal(t, "https://steel.example.com/news/2", NormalizeURL(qParam))

	plain := "https://steel.example.com/news/3"
	assert.Equal(t, plain, NormalizeURL(plain))
}

func TestArticleID_StableAndRejectsEmpty(t *testing.T) {
	a := ArticleID(NormalizeURL("https://www.example.com/story?id=7&utm_source=x"))
	b := ArticleID(NormalizeURL("https://example.com/story?id=7"))
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	assert.Equal(t, "", ArticleID(""))
	assert.Equal(t, "", ArticleID(NormalizeURL("")))
}

func TestBodyHash_TrimsBeforeHashing(t *testing.T) {
	assert.Equal(t, BodyHash("steel output rose"), BodyHash("  steel output rose \n"))
	assert.NotEqual(t, BodyHash("steel output rose"), BodyHash("steel output fell"))
}

func TestTitleFingerprint(t *testing.T) {
	a := TitleFingerprint("Nippon Steel: Q3 Profit Beats Estimates!")
	b := TitleFingerprint("nippon steel q3 profit beats estimates")
	assert.Equal(t, b, a)

	long := TitleFingerprint("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa-extended-tail")
	assert.Len(t, []rune(long), 50)

	// Japanese characters are word runes and survive.
	assert.Equal(t, "日本製鉄が増産", TitleFingerprint("日本製鉄が増産！"))
}

func TestFilterSecondary(t *testing.T) {
	primary := []*model.Article{
		{Title: "Nippon Steel Q3 profit beats estimates"},
		{Title: "Green steel pilot plant opens"},
	}
	secondary := []*model.Article{
		{Title: "NIPPON STEEL Q3 PROFIT BEATS ESTIMATES"}, // dup by fingerprint
		{Title: "Scrap prices climb in Tokyo"},
	}

	got := FilterSecondary(primary, secondary)
	assert.Len(t, got, 1)
	assert.Equal(t, "Scrap prices climb in Tokyo", got[0].Title)
}
