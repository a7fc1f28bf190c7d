package domain

// Role is a named role that hosts can carry. Names are unique per backend.
type Role struct {
	Role string `json:"role"`
}
