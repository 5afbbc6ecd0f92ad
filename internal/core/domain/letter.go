package domain

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letter is the single-character bucket an item is filed under for
// alphabetical browsing: A-Z, "#" for everything else, or the "All" sentinel.
type Letter string

const (
	// LetterAll disables letter filtering
	LetterAll Letter = "All"

	// LetterOther buckets names that do not start with a Latin letter
	LetterOther Letter = "#"
)

// leadingArticle matches a single leading definite or indefinite article
var leadingArticle = regexp.MustCompile(`(?i)^(the|a|an)\s+`)

// baseLetterFold covers Latin letters that have no canonical decomposition
var baseLetterFold = map[rune]rune{
	'Æ': 'A', 'æ': 'a',
	'Œ': 'O', 'œ': 'o',
	'Ø': 'O', 'ø': 'o',
	'Ł': 'L', 'ł': 'l',
	'Đ': 'D', 'đ': 'd',
	'Ð': 'D', 'ð': 'd',
	'Þ': 'T', 'þ': 't',
	'ß': 's',
}

// ClassifyName maps a display name to its browsing bucket.
// Total over all strings: the empty string classifies as "#".
func ClassifyName(name string) Letter {
	name = strings.TrimSpace(name)
	name = leadingArticle.ReplaceAllString(name, "")
	if name == "" {
		return LetterOther
	}
	return classifyFirstRune(name)
}

// ClassifyToken classifies a bare letter request by its first character only.
// Unlike ClassifyName it never strips articles.
func ClassifyToken(raw string) Letter {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return LetterOther
	}
	r, _ := utf8.DecodeRuneInString(raw)
	return classifyFirstRune(string(r))
}

func classifyFirstRune(s string) Letter {
	s = StripDiacritics(s)
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return LetterOther
	}
	r = unicode.ToUpper(r)
	if r >= 'A' && r <= 'Z' {
		return Letter(string(r))
	}
	return LetterOther
}

// StripDiacritics folds accented Latin characters to their base form.
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Map(func(r rune) rune {
		if base, ok := baseLetterFold[r]; ok {
			return base
		}
		return r
	}, out)
}

// Alphabet returns every browsable bucket in navigation order (A-Z then "#").
func Alphabet() []Letter {
	letters := make([]Letter, 0, 27)
	for r := 'A'; r <= 'Z'; r++ {
		letters = append(letters, Letter(string(r)))
	}
	return append(letters, LetterOther)
}

// IsBucket reports whether l is a concrete bucket (A-Z or "#").
func (l Letter) IsBucket() bool {
	if l == LetterOther {
		return true
	}
	return len(l) == 1 && l[0] >= 'A' && l[0] <= 'Z'
}

// IsValid reports whether l is a bucket or the All sentinel.
func (l Letter) IsValid() bool {
	return l == LetterAll || l.IsBucket()
}

// ParseLetter parses a declared letter such as "all", "b" or "#".
func ParseLetter(raw string) (Letter, bool) {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.EqualFold(raw, string(LetterAll)):
		return LetterAll, true
	case raw == string(LetterOther):
		return LetterOther, true
	case utf8.RuneCountInString(raw) == 1:
		l := Letter(strings.ToUpper(raw))
		if l.IsBucket() {
			return l, true
		}
	}
	return "", false
}

// ParseLetterSet parses a comma separated letter set ("All,A,B,#").
// Invalid and duplicate entries are dropped; order is preserved.
func ParseLetterSet(csv string) []Letter {
	var letters []Letter
	seen := make(map[Letter]bool)
	for _, part := range strings.Split(csv, ",") {
		l, ok := ParseLetter(part)
		if !ok || seen[l] {
			continue
		}
		seen[l] = true
		letters = append(letters, l)
	}
	return letters
}

// ContainsLetter reports whether set contains l.
func ContainsLetter(set []Letter, l Letter) bool {
	for _, candidate := range set {
		if candidate == l {
			return true
		}
	}
	return false
}
