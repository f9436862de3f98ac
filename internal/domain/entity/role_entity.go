package entity

// Role is the closed set of account roles. Roles are immutable after
// registration; there is no role-change flow.
type Role string

const (
	RoleFarmer      Role = "Farmer"
	RoleFieldExpert Role = "Field Expert"
	RoleAdmin       Role = "Admin"
)

// ParseRole maps a request value onto the closed role set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleFarmer, RoleFieldExpert, RoleAdmin:
		return Role(s), true
	default:
		return "", false
	}
}

// Status is the account lifecycle state.
//
// Farmer path:       UNVERIFIED -> ACTIVE
// Field Expert path: PENDING_APPROVAL -> APPROVED | REJECTED
//
// REJECTED is terminal; accounts are never deleted by this service.
type Status string

const (
	StatusUnverified      Status = "UNVERIFIED"
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusActive          Status = "ACTIVE"
	StatusApproved        Status = "APPROVED"
	StatusRejected        Status = "REJECTED"
)

// CanLogin reports whether the status permits issuing a session.
func (s Status) CanLogin() bool {
	return s == StatusActive || s == StatusApproved
}

// InitialStatus returns the status a fresh registration starts in.
func (r Role) InitialStatus() Status {
	if r == RoleFieldExpert {
		return StatusPendingApproval
	}
	return StatusUnverified
}

// VerifiedStatus returns the status a consumed token advances the account to.
func (r Role) VerifiedStatus() Status {
	if r == RoleFieldExpert {
		return StatusApproved
	}
	return StatusActive
}
