package user

import "fmt"

// User is the record managed by the node backend. Binding tags mirror the
// html form: every field but the middle name is required.
type User struct {
	FirstName   string `json:"firstName" form:"firstName" binding:"required"`
	MiddleName  string `json:"middleName,omitempty" form:"middleName"`
	LastName    string `json:"lastName" form:"lastName" binding:"required"`
	DateOfBirth string `json:"dateOfBirth" form:"dateOfBirth" binding:"required"`
}

func (u *User) String() string {
	return fmt.Sprintf(
		"User(firstName=%s, middleName=%s, lastName=%s, dateOfBirth=%s)",
		u.FirstName,
		u.MiddleName,
		u.LastName,
		u.DateOfBirth,
	)
}

func (u *User) FullName() string {
	if u.MiddleName == "" {
		return fmt.Sprintf("%s %s", u.FirstName, u.LastName)
	}
	return fmt.Sprintf("%s %s %s", u.FirstName, u.MiddleName, u.LastName)
}

// List is the envelope returned by GET /users/.
type List struct {
	Users []User `json:"users"`
}
