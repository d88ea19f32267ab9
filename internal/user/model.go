package user

import "fmt"

// Role is what a user may claim at login.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// ParseRole accepts the two known roles.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// User is a registered account. Password is stored and compared verbatim.
type User struct {
	ID             int64  `db:"id" json:"id"`
	Username       string `db:"username" json:"username"`
	Password       string `db:"password" json:"-"`
	Role           Role   `db:"role" json:"role"`
	FaceRegistered bool   `db:"face_registered" json:"face_registered"`
}

// StudentSummary is the projection shown on the login page and admin sidebar.
type StudentSummary struct {
	Username       string `db:"username" json:"username"`
	FaceRegistered bool   `db:"face_registered" json:"face_registered"`
}

// InsertResult tells an insert-or-ignore caller what happened.
type InsertResult int

const (
	Inserted InsertResult = iota + 1
	AlreadyExists
)

func (r InsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case AlreadyExists:
		return "already_exists"
	}
	return "unknown"
}
