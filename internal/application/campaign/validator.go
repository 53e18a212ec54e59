package campaign

import (
	"fmt"
	"strings"

	"github.com/aescanero/alquimia/pkg/domain"
)

// ValidateScope validates and normalizes the three-part namespace
// under which all work is filed. It is pure: no side effects, no
// network calls, and it runs before any remote interaction so that a
// bad scope never produces partial remote state.
//
// Fields must be non-empty and drawn from [A-Za-z0-9_]. The scope
// separator in particular is rejected, since it would make the
// serialized form ambiguous.
func ValidateScope(org, campaign, project string) (domain.Scope, error) {
	fields := []struct {
		name  string
		value string
	}{
		{"org", org},
		{"campaign", campaign},
		{"project", project},
	}

	for _, f := range fields {
		value := strings.TrimSpace(f.value)
		if value == "" {
			return domain.Scope{}, domain.NewValidationError(f.name, "must not be empty")
		}
		if value != f.value {
			return domain.Scope{}, domain.NewValidationError(f.name, "must not contain leading or trailing whitespace")
		}
		for _, r := range f.value {
			if !allowedScopeRune(r) {
				reason := fmt.Sprintf("character %q not allowed (use letters, digits or underscore)", r)
				if string(r) == domain.ScopeSeparator {
					reason = fmt.Sprintf("character %q is the scope separator and not allowed in a field", r)
				}
				return domain.Scope{}, domain.NewValidationError(f.name, reason)
			}
		}
	}

	return domain.Scope{Org: org, Campaign: campaign, Project: project}, nil
}

func allowedScopeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_':
		return true
	}
	return false
}
