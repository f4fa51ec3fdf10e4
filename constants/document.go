package constants

// DocumentType is the AIP template a document follows.
type DocumentType string

const (
	DocTypeAIP     DocumentType = "AIP"
	DocTypeBAIP    DocumentType = "BAIP"
	DocTypeUnknown DocumentType = "unknown"
)

// Scope is the pipeline scope a document is processed under.
type Scope string

const (
	ScopeBarangay Scope = "barangay"
	ScopeCity     Scope = "city"
	ScopeUnknown  Scope = "unknown"
)

// SourceKind is where on a page a SourceRef's evidence was found.
type SourceKind string

const (
	KindHeader    SourceKind = "header"
	KindFooter    SourceKind = "footer"
	KindTextBlock SourceKind = "text_block"
	KindTableRow  SourceKind = "table_row"
	KindUnknown   SourceKind = "unknown"
)

// IsValid reports whether k is one of the known source kinds.
func (k SourceKind) IsValid() bool {
	switch k {
	case KindHeader, KindFooter, KindTextBlock, KindTableRow, KindUnknown:
		return true
	}
	return false
}

const (
	TotalSourceLabel = "total_investment_program"
	CurrencyPHP      = "PHP"
	SchemaVersion    = "aip_artifact_v1.1.0"

	// UnknownPage is the SourceRef page sentinel when no page evidence exists.
	UnknownPage = -1
	// MaxEvidenceLen bounds SourceRef.EvidenceText.
	MaxEvidenceLen = 200

	MinFiscalYear = 2000
	MaxFiscalYear = 2100
)
