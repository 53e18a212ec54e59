package domain

import (
	"fmt"
	"strings"
)

// ScopeSeparator joins the three scope fields when a scope is
// serialized. The separator is therefore forbidden inside a field.
const ScopeSeparator = "-"

// Scope is the three-part namespace under which all campaign work is
// filed on the remote fabric: organization, campaign, project.
type Scope struct {
	Org      string `json:"org"`
	Campaign string `json:"campaign"`
	Project  string `json:"project"`
}

// String returns the serialized "org-campaign-project" form.
func (s Scope) String() string {
	return s.Org + ScopeSeparator + s.Campaign + ScopeSeparator + s.Project
}

// IsZero reports whether the scope has no fields set.
func (s Scope) IsZero() bool {
	return s.Org == "" && s.Campaign == "" && s.Project == ""
}

// ParseScope parses the serialized "org-campaign-project" form back
// into a Scope. Fields never contain the separator, so a well-formed
// input splits into exactly three parts.
func ParseScope(serialized string) (Scope, error) {
	parts := strings.Split(serialized, ScopeSeparator)
	if len(parts) != 3 {
		return Scope{}, fmt.Errorf("malformed scope %q: want org%scampaign%sproject", serialized, ScopeSeparator, ScopeSeparator)
	}
	return Scope{Org: parts[0], Campaign: parts[1], Project: parts[2]}, nil
}
