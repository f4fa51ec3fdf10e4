package constants

// LGUType is the jurisdiction level of a local government unit.
type LGUType string

const (
	LGUBarangay     LGUType = "barangay"
	LGUMunicipality LGUType = "municipality"
	LGUCity         LGUType = "city"
	LGUProvince     LGUType = "province"
	LGURegion       LGUType = "region"
	LGUUnknown      LGUType = "unknown"
)

// Specificity ranks jurisdiction types from most local (barangay) down.
func (t LGUType) Specificity() int {
	switch t {
	case LGUBarangay:
		return 4
	case LGUMunicipality, LGUCity:
		return 3
	case LGUProvince:
		return 2
	case LGURegion:
		return 1
	default:
		return 0
	}
}

// BaseScore is the per-occurrence starting score of a candidate of this type.
func (t LGUType) BaseScore() int {
	switch t {
	case LGUBarangay:
		return 110
	case LGUMunicipality, LGUCity:
		return 90
	case LGUProvince:
		return 45
	case LGURegion:
		return 30
	default:
		return 0
	}
}

// IsOutputType reports whether the type may appear in LguInfo.type as-is.
func (t LGUType) IsOutputType() bool {
	return t == LGUBarangay || t == LGUCity || t == LGUMunicipality
}

// Confidence is the calibrated certainty attached to a resolved value.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// UnknownLGUName is emitted when no jurisdiction evidence exists.
const UnknownLGUName = "Unknown LGU"
