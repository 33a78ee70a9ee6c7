package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================
// Auth DTOs
// ============================================

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ============================================
// User DTOs
// ============================================

type UserResponse struct {
	ID             string           `json:"id"`
	Email          string           `json:"email"`
	Name           string           `json:"name"`
	Roles          []string         `json:"roles"`
	Rate           *decimal.Decimal `json:"rate,omitempty"`
	Specialization *string          `json:"specialization,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
}

type UpdateUserRequest struct {
	Name           *string          `json:"name,omitempty"`
	Rate           *decimal.Decimal `json:"rate,omitempty"`
	Specialization *string          `json:"specialization,omitempty"`
}

type UpdateRolesRequest struct {
	Roles []string `json:"roles" binding:"required"`
}
