package domain

type Role string

const (
	RoleUser    Role = "user"
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
)

// Actor identifies who is performing a lifecycle operation. The identity
// provider upstream resolves it; a zero Actor means anonymous.
type Actor struct {
	ID   uint64 `json:"id"`
	Role Role   `json:"role"`
}

var Anonymous = Actor{}

func (a Actor) IsAnonymous() bool {
	return a.ID == 0
}

// IsStaff reports whether the actor may perform staff operations
// (responding to inquiries, updating statuses, resolving claims).
func (a Actor) IsStaff() bool {
	return a.Role == RoleAdmin || a.Role == RoleManager
}

// IsAdmin gates destructive operations such as hard-deleting inquiries.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
