package model

import "errors"

var (
	// Doctor related errors
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrDoctorAlreadyExists = errors.New("doctor already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")

	// Session related errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionStale    = errors.New("session already rotated")

	// Hospital related errors
	ErrHospitalNotFound = errors.New("hospital not found")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Generic errors
	ErrInvalidInput    = errors.New("invalid input")
	ErrNoFieldsToPatch = errors.New("no fields to update")
)
