package constants

// WarningCode identifies a machine-readable extraction warning.
type WarningCode string

const (
	WarnSignatoryParseFailed     WarningCode = "SIGNATORY_PARSE_FAILED"
	WarnLGUAmbiguous             WarningCode = "LGU_AMBIGUOUS"
	WarnLGUNameMissing           WarningCode = "LGU_NAME_MISSING"
	WarnLGUTypeInferredFromScope WarningCode = "LGU_TYPE_INFERRED_FROM_SCOPE"
	WarnFiscalYearAmbiguous      WarningCode = "FISCAL_YEAR_AMBIGUOUS"
	WarnFiscalYearMissing        WarningCode = "FISCAL_YEAR_MISSING"
	WarnDocTypeAmbiguous         WarningCode = "DOC_TYPE_AMBIGUOUS"
	WarnTotalsNotFound           WarningCode = "TOTALS_NOT_FOUND"
	WarnPageDecodeFailed         WarningCode = "PAGE_DECODE_FAILED"
)

// Reasons carried in SIGNATORY_PARSE_FAILED details.
const (
	ReasonTextLayerMissing = "text_layer_missing"
	ReasonNameNotFound     = "name_not_found"
)
