package oauth2client

import "strings"

// ScopeSet is an ordered, fixed bundle of scopes a token is requested with.
//
// Only the predefined sets Public and Internal are valid; the zero value is
// rejected by Issuer.IssueToken.
type ScopeSet struct {
	name   string
	scopes []string
}

var (
	// Public is the read-only scope set handed to external viewers.
	Public = ScopeSet{
		name:   "public",
		scopes: []string{"viewables:read"},
	}

	// Internal is the privileged read/write scope set used in-process only.
	Internal = ScopeSet{
		name: "internal",
		scopes: []string{
			"bucket:create",
			"bucket:read",
			"bucket:delete",
			"data:read",
			"data:write",
			"data:create",
			"code:all",
		},
	}
)

// Name returns the set's identifier ("public" or "internal").
func (s ScopeSet) Name() string {
	return s.name
}

// Scopes returns a copy of the scopes in request order.
func (s ScopeSet) Scopes() []string {
	out := make([]string, len(s.scopes))
	copy(out, s.scopes)
	return out
}

// String returns the scopes space-separated, as sent on the wire.
func (s ScopeSet) String() string {
	return strings.Join(s.scopes, " ")
}

// IsPredefined reports whether s is one of Public or Internal.
func (s ScopeSet) IsPredefined() bool {
	return s.Equal(Public) || s.Equal(Internal)
}

// Equal reports whether both sets carry the same name and scopes in the same order.
func (s ScopeSet) Equal(other ScopeSet) bool {
	if s.name != other.name || len(s.scopes) != len(other.scopes) {
		return false
	}
	for i := range s.scopes {
		if s.scopes[i] != other.scopes[i] {
			return false
		}
	}
	return true
}
