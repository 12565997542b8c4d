package searchindex

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/docpostbuild/internal/util/sets"
)

// Slug turns a page locator into a flat, filesystem and key-value safe name:
// "/docs/Überblick/api#auth" -> "docs-uberblick-api". The root page maps to "index".
func Slug(locator string) string {
	if i := strings.IndexAny(locator, "#?"); i >= 0 {
		locator = locator[:i]
	}
	if i := strings.Index(locator, "://"); i >= 0 {
		locator = locator[i+3:]
		if j := strings.IndexByte(locator, '/'); j >= 0 {
			locator = locator[j:]
		} else {
			locator = ""
		}
	}

	folded, _, err := transform.String(stripMarks(), locator)
	if err != nil {
		folded = locator
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimRight(b.String(), "-")
	if s == "" {
		return "index"
	}
	return s
}

// Slug is the record's stable name, derived from its URL (or ID when the URL is empty).
func (r Record) Slug() string {
	if r.URL != "" {
		return Slug(r.URL)
	}
	return Slug(r.ID)
}

// Slugs returns one unique slug per record, in record order. Records whose
// slugs collide get "-2", "-3", ... appended, so the assignment is stable as
// long as the record order is.
func (a *Artifact) Slugs() []string {
	if a == nil {
		return nil
	}
	used := sets.New[string]()
	out := make([]string, len(a.Records))
	for i, r := range a.Records {
		base := r.Slug()
		name := base
		for n := 2; used.Has(name); n++ {
			name = base + "-" + strconv.Itoa(n)
		}
		used.Add(name)
		out[i] = name
	}
	return out
}

// stripMarks builds a fresh transformer per call; chained transformers keep
// internal state and must not be shared between goroutines.
func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// ASCIIFold removes diacritics and replaces any remaining non-ASCII rune with
// replacement (dropped when replacement is 0).
func ASCIIFold(s string, replacement rune) string {
	folded, _, err := transform.String(stripMarks(), s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	for _, r := range folded {
		switch {
		case r < utf8.RuneSelf:
			b.WriteRune(r)
		case r == '…':
			b.WriteString("...")
		case replacement != 0:
			b.WriteRune(replacement)
		}
	}
	return b.String()
}
