package models

import "github.com/golang-jwt/jwt/v5"

// UserClaims is the JWT payload attached to every authenticated request.
// The acting principal is always resolved from these claims, never from
// request-supplied fields.
type UserClaims struct {
	jwt.RegisteredClaims
	UserID uint   `json:"user_id"`
	Handle string `json:"handle"`
	Role   string `json:"role"`
}
