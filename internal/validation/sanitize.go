package validation

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Sanitizer rewrites a single field value.
// Every sanitizer in this package is idempotent: f(f(s)) == f(s).
type Sanitizer func(string) string

// escapes maps each character Escape rewrites to its entity.
var escapes = map[rune]string{
	'&':  "&amp;",
	'<':  "&lt;",
	'>':  "&gt;",
	'"':  "&quot;",
	'\'': "&#x27;",
	'/':  "&#x2F;",
	'\\': "&#x5C;",
	'`':  "&#96;",
}

// entities is the set Escape emits; an ampersand already starting one of them
// is left alone so that escaping twice changes nothing.
var entities = []string{"&amp;", "&lt;", "&gt;", "&quot;", "&#x27;", "&#x2F;", "&#x5C;", "&#96;"}

var unescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#x27;", "'",
	"&#x2F;", "/",
	"&#x5C;", `\`,
	"&#96;", "`",
	"&amp;", "&",
)

// Trim removes leading and trailing white space.
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// Normalize puts s in Unicode NFC so visually equal names compare equal.
func Normalize(s string) string {
	return norm.NFC.String(s)
}

// Escape replaces HTML-significant characters with entities.
func Escape(s string) string {
	if !strings.ContainsAny(s, "&<>\"'/\\`") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 16)
	for i, r := range s {
		if r == '&' && startsWithEntity(s[i:]) {
			b.WriteRune(r)
			continue
		}
		if e, ok := escapes[r]; ok {
			b.WriteString(e)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Unescape decodes the entities Escape emits.
func Unescape(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return unescaper.Replace(s)
}

// ToDate rewrites an ISO-8601 value in canonical form: a plain date stays
// "2006-01-02", anything with a time of day becomes RFC 3339. Values that are
// not dates become empty.
func ToDate(s string) string {
	t, ok := ParseISO8601(s)
	if !ok {
		return ""
	}
	if _, offset := t.Zone(); offset == 0 {
		t = t.UTC()
	}
	if t.Location() == time.UTC && t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339Nano)
}

func startsWithEntity(s string) bool {
	for _, e := range entities {
		if strings.HasPrefix(s, e) {
			return true
		}
	}
	return false
}
