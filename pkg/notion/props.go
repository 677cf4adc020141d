package notion

import "github.com/jomei/notionapi"

// PlainText concatenates the plain text of a rich-text array.
func PlainText(rt []notionapi.RichText) string {
	var out string
	for _, t := range rt {
		out += t.PlainText
	}
	return out
}

// TextValue extracts text from a title, rich_text, or url property.
func TextValue(prop notionapi.Property) string {
	switch p := prop.(type) {
	case *notionapi.TitleProperty:
		return PlainText(p.Title)
	case *notionapi.RichTextProperty:
		return PlainText(p.RichText)
	case *notionapi.URLProperty:
		return p.URL
	default:
		return ""
	}
}

// SelectValue extracts the option name of a select property.
func SelectValue(prop notionapi.Property) string {
	if p, ok := prop.(*notionapi.SelectProperty); ok {
		return p.Select.Name
	}
	return ""
}

// NumberValue extracts a number property; ok is false for other types.
func NumberValue(prop notionapi.Property) (float64, bool) {
	if p, ok := prop.(*notionapi.NumberProperty); ok {
		return p.Number, true
	}
	return 0, false
}

// CheckboxValue extracts a checkbox property, false for other types.
func CheckboxValue(prop notionapi.Property) bool {
	if p, ok := prop.(*notionapi.CheckboxProperty); ok {
		return p.Checkbox
	}
	return false
}

// RichTextBlock builds the single-element rich-text array used when
// writing text content.
func RichTextBlock(content string) []notionapi.RichText {
	return []notionapi.RichText{
		{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: content}},
	}
}
