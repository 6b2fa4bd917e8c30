package model

import (
	"strings"
	"time"
)

const (
	RoleAdmin  = "Admin"
	RoleDoctor = "Doctor"

	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

type Doctor struct {
	ID           int64     `json:"-"`
	DoctorID     string    `json:"id"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Region       string    `json:"region"`
	Hospital     string    `json:"hospital"`
	Status       string    `json:"status"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// DoctorPatch carries the subset of fields an admin update touches.
// Nil fields are left unchanged.
type DoctorPatch struct {
	Name         *string
	Role         *string
	Region       *string
	Hospital     *string
	Status       *string
	PasswordHash *string
}

func (p DoctorPatch) Empty() bool {
	return p.Name == nil && p.Role == nil && p.Region == nil &&
		p.Hospital == nil && p.Status == nil && p.PasswordHash == nil
}

// NormalizeRole maps any casing of a known role onto its canonical form.
func NormalizeRole(role string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "admin":
		return RoleAdmin, true
	case "doctor":
		return RoleDoctor, true
	default:
		return "", false
	}
}

func NormalizeStatus(status string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "active":
		return StatusActive, true
	case "inactive":
		return StatusInactive, true
	default:
		return "", false
	}
}

// ValidDoctorID reports whether id is exactly six ASCII digits.
func ValidDoctorID(id string) bool {
	if len(id) != 6 {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return false
		}
	}
	return true
}
