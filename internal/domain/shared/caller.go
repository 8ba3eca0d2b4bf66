package shared

import "github.com/google/uuid"

// Role is the authorization role carried by an authenticated user
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleSupervisor
}

// Caller identifies who invokes an application operation
type Caller struct {
	UserID   uuid.UUID
	Username string
	Role     Role
}

// IsAdmin reports whether the caller holds the admin role
func (c Caller) IsAdmin() bool {
	return c.UserID != uuid.Nil && c.Role == RoleAdmin
}

// RequireAdmin fails with UNAUTHORIZED for an anonymous caller and FORBIDDEN
// for any authenticated non-admin.
func (c Caller) RequireAdmin() error {
	if c.UserID == uuid.Nil {
		return ErrUnauthorized
	}
	if c.Role != RoleAdmin {
		return ErrForbidden.WithMessage("This operation requires the admin role")
	}
	return nil
}

// RequireAuthenticated fails with UNAUTHORIZED when the caller has no identity or role
func (c Caller) RequireAuthenticated() error {
	if c.UserID == uuid.Nil || !c.Role.IsValid() {
		return ErrUnauthorized
	}
	return nil
}
