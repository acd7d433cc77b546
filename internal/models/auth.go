package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole distinguishes the two authenticated principals.
type UserRole string

const (
	RoleStudent UserRole = "STUDENT"
	RoleAdmin   UserRole = "ADMIN"
)

// SignupRequest registers a new student.
type SignupRequest struct {
	USN      string  `json:"usn" validate:"required"`
	Password string  `json:"password" validate:"required,min=6"`
	Name     string  `json:"name" validate:"required"`
	College  College `json:"college" validate:"required,oneof='BMSIT&M' 'NITTE' 'BMSCE'"`
}

// LoginRequest holds student credentials.
type LoginRequest struct {
	USN      string `json:"usn" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AdminLoginRequest holds admin credentials.
type AdminLoginRequest struct {
	AdminID string `json:"admin_id" validate:"required"`
	Passkey string `json:"passkey" validate:"required"`
}

// CreateAdminRequest provisions a new admin account.
type CreateAdminRequest struct {
	Name    string `json:"name" validate:"required"`
	AdminID string `json:"admin_id" validate:"required"`
	Passkey string `json:"passkey" validate:"required,min=6"`
}

// LoginResponse returns the issued token and principal info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Role        UserRole  `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens. UserID carries the
// student USN or the admin identifier depending on role.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Name   string   `json:"name"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}
