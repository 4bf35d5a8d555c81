package services

import "marketplace-server/models"

// Principal is the authenticated caller, as read from the bearer token.
type Principal struct {
	ID    uint
	Email string
	Role  models.UserRole
}

func (p Principal) IsProfessional() bool {
	return p.Role == models.RoleProfessional
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// IsCustomer is true for customer and admin accounts, both of which live in
// the users table.
func (p Principal) IsCustomer() bool {
	return p.Role == models.RoleCustomer || p.Role == models.RoleAdmin
}
