package services

import (
	"strings"

	"golang.org/x/net/html"
)

// maxExcerptWords bounds indexed excerpts
const maxExcerptWords = 30

// plainExcerpt reduces an HTML fragment to collapsed plain text of at most
// maxExcerptWords words. Script and style contents are dropped.
func plainExcerpt(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a malformed tail; keep what was read
			return trimWords(b.String(), maxExcerptWords)
		case html.StartTagToken:
			if isRawTextTag(z) {
				skip++
			}
		case html.EndTagToken:
			if isRawTextTag(z) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
				b.WriteByte(' ')
			}
		}
	}
}

func isRawTextTag(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}

func trimWords(s string, limit int) string {
	words := strings.Fields(s)
	if len(words) <= limit {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:limit], " ") + "…"
}
