package constants

import (
	"strings"
)

// SignatoryRole is the canonical role attached to a signature block.
type SignatoryRole string

const (
	RolePreparedBy SignatoryRole = "prepared_by"
	RoleAttestedBy SignatoryRole = "attested_by"
	RoleReviewedBy SignatoryRole = "reviewed_by"
	RoleApprovedBy SignatoryRole = "approved_by"
)

// roleTokens maps the printed verb (letters only, lowercase) to its role.
var roleTokens = map[string]SignatoryRole{
	"prepared": RolePreparedBy,
	"attested": RoleAttestedBy,
	"reviewed": RoleReviewedBy,
	"approved": RoleApprovedBy,
}

// roleLabels maps the concatenated label ("preparedby") to its role.
var roleLabels = map[string]SignatoryRole{
	"preparedby": RolePreparedBy,
	"attestedby": RoleAttestedBy,
	"reviewedby": RoleReviewedBy,
	"approvedby": RoleApprovedBy,
}

// RoleFromToken resolves a letters-only lowercase token such as "approved".
func RoleFromToken(token string) (SignatoryRole, bool) {
	r, ok := roleTokens[token]
	return r, ok
}

// RoleFromLabel resolves a letters-only lowercase label such as "approvedby".
func RoleFromLabel(label string) (SignatoryRole, bool) {
	r, ok := roleLabels[label]
	return r, ok
}

// Display renders the role the way it is printed on forms ("PREPARED BY").
func (r SignatoryRole) Display() string {
	return strings.ToUpper(strings.ReplaceAll(string(r), "_", " "))
}

// IsPrepApproveFamily reports whether the role takes part in the
// left=prepared / right=approved same-row convention.
func (r SignatoryRole) IsPrepApproveFamily() bool {
	return r == RolePreparedBy || r == RoleApprovedBy
}

// CanonicalizeRole accepts loose spellings ("Approved By:", "approved_by").
func CanonicalizeRole(input string) (SignatoryRole, bool) {
	if input == "" {
		return "", false
	}
	var b strings.Builder
	for _, r := range strings.ToLower(input) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	normalized := b.String()
	if r, ok := roleLabels[normalized]; ok {
		return r, true
	}
	if r, ok := roleTokens[normalized]; ok {
		return r, true
	}
	return "", false
}
