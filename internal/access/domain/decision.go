package domain

// Reason explains an access decision.
type Reason string

const (
	// ReasonUnauthenticated means no subject was present.
	ReasonUnauthenticated Reason = "unauthenticated"

	// ReasonAccountDisabled means the subject is inactive.
	ReasonAccountDisabled Reason = "account_disabled"

	// ReasonRoleNotPermitted means the subject's role is not in the allow-list.
	ReasonRoleNotPermitted Reason = "role_not_permitted"

	// ReasonRoleMatched means the subject's role is in the allow-list.
	ReasonRoleMatched Reason = "role_matched"
)

// AccessDecision is the ALLOW/DENY outcome of an authorization check.
// Denials are ordinary values, never errors.
type AccessDecision struct {
	Allow  bool   `json:"allow"`
	Reason Reason `json:"reason"`
}

// Allowed builds an ALLOW decision.
func Allowed(reason Reason) AccessDecision {
	return AccessDecision{Allow: true, Reason: reason}
}

// Denied builds a DENY decision.
func Denied(reason Reason) AccessDecision {
	return AccessDecision{Allow: false, Reason: reason}
}
