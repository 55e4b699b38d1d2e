// Package datecodec recognises ISO-8601-like date strings and renders
// timestamps in a single canonical layout.
//
// Accepted input (after trimming surrounding whitespace):
//
//	YYYY[-]MM[-]DD[T ]HH[:]MM[:]SS[.mmm][Z|±HH[:]MM]
//
// A missing or `Z` offset means UTC. Short offsets are widened to four
// digits: -6, -06 and -600 all mean -0600. Milliseconds are accepted but
// discarded. Output uses 2006-01-02T15:04:05-0700, with +0000 written as Z.
package datecodec

import (
	"regexp"
	"strings"
	"time"
)

// Layout is the canonical output layout.
const Layout = "2006-01-02T15:04:05-0700"

var pattern = regexp.MustCompile(`^(\d{4})-?(\d{2})-?(\d{2})[T ]?(\d{2}):?(\d{2}):?(\d{2})(\.\d{3})?(Z|[+-][\d:]{1,5})?$`)

// Codec converts between date strings and timestamps.
type Codec interface {
	Parse(s string) (time.Time, bool)
	Format(t time.Time, loc *time.Location) string
}

// ISO is the default Codec. The zero value is ready to use.
type ISO struct{}

var _ Codec = ISO{}

// Parse returns the timestamp represented by s, or false when s is not a
// recognised date.
func (ISO) Parse(s string) (time.Time, bool) {
	m := pattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, false
	}

	offset, ok := normalizeOffset(m[8])
	if !ok {
		return time.Time{}, false
	}

	var b strings.Builder
	b.Grow(len(Layout))
	b.WriteString(m[1])
	b.WriteByte('-')
	b.WriteString(m[2])
	b.WriteByte('-')
	b.WriteString(m[3])
	b.WriteByte('T')
	b.WriteString(m[4])
	b.WriteByte(':')
	b.WriteString(m[5])
	b.WriteByte(':')
	b.WriteString(m[6])
	b.WriteString(offset)

	t, err := time.Parse(Layout, b.String())
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Format renders t in loc using Layout. A nil loc means UTC.
func (ISO) Format(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	out := t.In(loc).Format(Layout)
	if trimmed, ok := strings.CutSuffix(out, "+0000"); ok {
		return trimmed + "Z"
	}
	return out
}

// normalizeOffset widens the matched zone designator to ±HHMM.
func normalizeOffset(zone string) (string, bool) {
	if zone == "" || zone == "Z" {
		return "+0000", true
	}

	zone = strings.ReplaceAll(zone, ":", "")
	zone = strings.ReplaceAll(zone, "Z", "")
	if len(zone) < 2 {
		return "", false
	}

	sign, digits := zone[:1], zone[1:]
	switch {
	case len(digits) == 3 && strings.HasSuffix(digits, "00"):
		digits = "0" + digits
	case len(digits) == 2 && strings.HasPrefix(digits, "0"):
		digits += "00"
	case len(digits) == 1:
		digits = "0" + digits + "00"
	}

	if len(digits) != 4 {
		return "", false
	}
	return sign + digits, true
}

// IsFormatted reports whether s is exactly a recognised date.
func IsFormatted(s string) bool {
	return pattern.MatchString(s)
}

var unanchored = regexp.MustCompile(strings.TrimSuffix(strings.TrimPrefix(pattern.String(), "^"), "$"))

// ContainsFormatted reports whether s contains a recognised date anywhere.
func ContainsFormatted(s string) bool {
	return unanchored.MatchString(s)
}
