package jurisdiction

import (
	"regexp"

	"github.com/Open-AIP/OpenAIP/constants"
)

var (
	wordToken     = regexp.MustCompile(`[A-Za-z][A-Za-z'.-]*`)
	leadingPunct  = regexp.MustCompile(`^[\s:,\-()]+`)
	romanNumeral  = regexp.MustCompile(`^[IVXLCDM]+$`)
	regionPattern = regexp.MustCompile(`(?i)\bregion\s+([ivxlcdm0-9-]+)\b`)
	yearToken     = regexp.MustCompile(`\b(20\d{2}|2100)\b`)
	fyToken       = regexp.MustCompile(`(?i)\bfy\b`)
)

// marker describes a "<marker> <name>" mention such as "City of Naga".
type marker struct {
	lguType   constants.LGUType
	pattern   *regexp.Regexp
	prefix    string
	maxTokens int
	stopwords map[string]struct{}
}

var barangayStopwords = toSet(
	"and", "for", "of", "use", "annual", "investment", "program", "fy",
	"general", "fund", "hall", "assembly", "day", "treasurer", "secretary",
	"punong", "chairperson", "captain", "staff", "officials", "members",
	"office", "offices", "building", "buildings", "vehicles", "vehicle",
	"constituents", "sangguniang", "tanod", "pambarangay", "katarungang",
	"received", "paid", "distributed", "construction",
)

var localityStopwords = toSet(
	"annual", "investment", "program", "fy", "barangay", "province", "region",
)

// barangayNoise marks lines where "barangay" is more likely a facility or
// office than the issuing jurisdiction.
var barangayNoise = []string{"constituents", "hall", "assembly", "treasurer"}

// markers are tried in this order on every line.
var markers = []marker{
	{constants.LGUBarangay, regexp.MustCompile(`(?i)\bbarangay\b`), "Barangay", 3, barangayStopwords},
	{constants.LGUMunicipality, regexp.MustCompile(`(?i)\bmunicipality of\b`), "Municipality of", 4, localityStopwords},
	{constants.LGUCity, regexp.MustCompile(`(?i)\bcity of\b`), "City of", 4, localityStopwords},
	{constants.LGUProvince, regexp.MustCompile(`(?i)\bprovince of\b`), "Province of", 4, localityStopwords},
}

func toSet(words ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}
