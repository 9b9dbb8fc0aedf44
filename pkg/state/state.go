package state

import "fmt"

// State is the record managed by the python backend.
type State struct {
	Id          int     `json:"id" form:"id"`
	Name        string  `json:"name" form:"name" binding:"required"`
	Description string  `json:"description" form:"description"`
	IsActive    bool    `json:"is_active" form:"is_active"`
	SortOrder   int     `json:"sort_order" form:"sort_order"`
	CreatedAt   string  `json:"created_at" form:"created_at" binding:"required"`
	UpdatedAt   *string `json:"updated_at" form:"-"`
}

// New returns a state with the defaults of an empty form.
func New() *State {
	return &State{
		IsActive: true,
	}
}

func (s *State) String() string {
	return fmt.Sprintf(
		"State(id=%d, name=%s, active=%t, sortOrder=%d, createdAt=%s)",
		s.Id,
		s.Name,
		s.IsActive,
		s.SortOrder,
		s.CreatedAt,
	)
}
