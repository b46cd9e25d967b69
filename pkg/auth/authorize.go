package auth

type Reason string

const (
	ReasonNone             Reason = ""
	ReasonUnauthenticated  Reason = "unauthenticated"
	ReasonInsufficientRole Reason = "insufficient_role"
)

type Decision struct {
	Allowed bool
	Reason  Reason
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason Reason) Decision {
	return Decision{Reason: reason}
}

// Authorize checks principal against the minimum role. A nil principal is
// always ReasonUnauthenticated, regardless of min.
func Authorize(principal *Principal, min Role) Decision {
	if principal == nil {
		return Deny(ReasonUnauthenticated)
	}
	if !principal.Role.AtLeast(min) {
		return Deny(ReasonInsufficientRole)
	}
	return Allow()
}

// CanActOn lets the owner of a resource through, and otherwise falls back to
// the moderator threshold.
func CanActOn(principal *Principal, ownerID string) Decision {
	if principal == nil {
		return Deny(ReasonUnauthenticated)
	}
	if ownerID != "" && principal.ID == ownerID && principal.Role.Valid() {
		return Allow()
	}
	return Authorize(principal, RoleModerator)
}
