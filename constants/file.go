package constants

import "strings"

const (
	PDF  = "PDF"
	TEXT = "TXT"
)

// FileTypes holds the accepted input formats.
var FileTypes = []string{PDF, TEXT}

// AllowedExtensions holds the default extensions picked up by directory scans.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"txt": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns the input format for an extension, or "" if unsupported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "txt":
		return TEXT
	default:
		return ""
	}
}
