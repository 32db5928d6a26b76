package domain

import "github.com/google/uuid"

// Identity is the caller on whose behalf sources are read. It is passed
// explicitly to every reader; nothing looks it up from ambient state.
type Identity struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Role     string
}

// Valid reports whether the identity is scoped to a tenant.
func (i Identity) Valid() bool {
	return i.TenantID != uuid.Nil
}
