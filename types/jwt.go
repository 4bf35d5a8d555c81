package types

import "github.com/golang-jwt/jwt/v5"

// Claims represents the JWT claims. UserID is the employee id when Role is
// "professional" and the user id otherwise.
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
