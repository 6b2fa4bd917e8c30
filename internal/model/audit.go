package model

import "time"

const (
	AuditActionLoginAttempt   = "login_attempt"
	AuditActionLoginSuccess   = "login_success"
	AuditActionRefreshFailure = "refresh_failure"
	AuditActionRefreshSuccess = "refresh_success"
	AuditActionLogout         = "logout"
)

const (
	AuditReasonDoctorNotFound   = "doctor_not_found"
	AuditReasonNoPasswordSet    = "no_password_set"
	AuditReasonWrongPassword    = "wrong_password"
	AuditReasonBcryptError      = "bcrypt_error"
	AuditReasonSessionNotFound  = "session_not_found"
	AuditReasonExpired          = "expired"
	AuditReasonInvalidOrExpired = "invalid_or_expired"
)

type AuditRecord struct {
	ID        int64     `json:"id"`
	DoctorID  *string   `json:"doctor_id"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	Action    string    `json:"action"`
	Success   bool      `json:"success"`
	Reason    *string   `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditQuery struct {
	DoctorID string
	Action   string
	Success  *bool
	From     string
	To       string
	Page     int
	Limit    int
}

type AuditListData struct {
	Items []AuditRecord `json:"items"`
	Meta  Meta          `json:"meta"`
}
