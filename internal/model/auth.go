package model

import "github.com/golang-jwt/jwt/v5"

// Roles carried in bearer tokens
const (
	RoleAdmin       = "admin"
	RoleParticipant = "participant"
)

// UserClaims are JWT claims for admins and survey participants
type UserClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for admin login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login or token minting
type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Role   string `json:"role"`
}
