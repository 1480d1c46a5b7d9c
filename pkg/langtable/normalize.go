package langtable

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Join keys must compare equal across editions that spell the same title
// slightly differently: page dumps store underscores where langlinks store
// spaces, some dumps carry HTML entities (&amp;, &#39;), and decomposed
// Unicode occasionally slips in. NormalizeKey folds all of that before a
// title is used as a map key, on every ingest path, so the two routes into
// a LanguageMap (dump extraction and pair files) agree.

// NormalizeKey canonicalizes a bridge title for use as a join key.
func NormalizeKey(s string) string {
	return norm.NFC.String(CleanTitle(s))
}

// CleanTitle tidies a raw article title without changing its identity:
// HTML entities are decoded, underscores become spaces, inner whitespace
// runs collapse to one space, and surrounding whitespace is trimmed.
func CleanTitle(s string) string {
	if s == "" {
		return ""
	}
	if strings.ContainsRune(s, '&') {
		s = html.UnescapeString(s)
	}
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.Join(strings.Fields(s), " ")
	return s
}
