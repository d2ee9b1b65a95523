package entity

import "github.com/google/uuid"

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID uuid.UUID
	Role   UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
