package auth

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

var roleRank = map[Role]int{
	RoleUser:      1,
	RoleModerator: 2,
	RoleAdmin:     3,
}

// Rank orders roles for minimum-role checks. Unknown roles rank 0.
func (r Role) Rank() int {
	return roleRank[r]
}

func (r Role) Valid() bool {
	return r.Rank() > 0
}

// AtLeast reports whether r meets the min threshold.
func (r Role) AtLeast(min Role) bool {
	return r.Rank() > 0 && r.Rank() >= min.Rank()
}

// Principal is the authenticated account behind a request.
type Principal struct {
	ID        string
	Username  string
	Role      Role
	Banned    bool
	BanReason string
}
