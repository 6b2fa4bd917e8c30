package model

import "time"

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	TokenTypeBearer  = "bearer"
)

type Session struct {
	ID           int64     `json:"id"`
	DoctorID     string    `json:"doctor_id"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// ClientInfo is the request metadata recorded with every auth event.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	Role         string `json:"role"`
}

type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

type SessionInfo struct {
	Valid     bool      `json:"valid"`
	DoctorID  string    `json:"doctor_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type LogoutResponse struct {
	LoggedOut bool `json:"logged_out"`
}
