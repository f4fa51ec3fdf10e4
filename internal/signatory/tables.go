package signatory

import "regexp"

var (
	// labelPattern finds a role label anywhere in free text.
	labelPattern = regexp.MustCompile(`(?i)\b(prepared\s*by|approved\s*by|reviewed\s*by|attested\s*by)\b`)
	// rejectPattern marks text that still carries role vocabulary.
	rejectPattern = regexp.MustCompile(`(?i)\b(prepared|approved|reviewed|attested|by)\b`)
	trailingPunct = regexp.MustCompile(`[,:;.\-_]+$`)
	pageNoise     = regexp.MustCompile(`(?i)^\s*page\s+\d+\s*$`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// positionMarkers is the vocabulary that identifies a job title. Markers
// match whole words only, so surnames like "Headley" stay names.
var positionMarkers = []string{
	"treasurer",
	"secretary",
	"punong barangay",
	"barangay",
	"cpdc",
	"head",
	"officer",
	"budget",
	"chief",
	"executive",
	"administrator",
	"engineer",
	"planning",
	"captain",
	"chairperson",
	"councilor",
	"clerk",
	"municipal",
	"municipality",
	"city",
}

var positionMarkerPattern = buildMarkerPattern(positionMarkers)

func buildMarkerPattern(markers []string) *regexp.Regexp {
	expr := `(?i)\b(?:`
	for i, m := range markers {
		if i > 0 {
			expr += "|"
		}
		expr += regexp.QuoteMeta(m)
	}
	return regexp.MustCompile(expr + `)\b`)
}

// officeRules infer the signing office from a position, first match wins.
var officeRules = []struct {
	contains string
	office   string
}{
	{"cpdc", "CPDC"},
	{"barangay", "Barangay Government"},
	{"city", "City Government"},
	{"municipal", "Municipal Government"},
	{"local chief executive", "Executive Office"},
}
