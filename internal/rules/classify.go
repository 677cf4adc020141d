package rules

import (
	"strings"

	"github.com/steelwatch/newsbrief/internal/model"
)

// classKeywords drive article-type classification. Checked in priority
// order: STOCK, BUSINESS, GREEN; first match wins, else OTHER.
var classKeywords = []struct {
	articleType model.ArticleType
	keywords    []string
}{
	{model.TypeStock, []string{"stock", "share", "株価", "target price", "52-week", "analyst"}},
	{model.TypeBusiness, []string{"investment", "plant", "capacity", "million ton", "工場", "設備", "増設"}},
	{model.TypeGreen, []string{"hydrogen", "decarbon", "green steel", "cbam", "低炭素", "脱炭素"}},
}

// Classify assigns an article type from title and body text.
func Classify(title, body string) model.ArticleType {
	text := strings.ToLower(title + body)
	for _, c := range classKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(text, kw) {
				return c.articleType
			}
		}
	}
	return model.TypeOther
}
