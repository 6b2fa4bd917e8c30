package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"medportal/internal/model"
	"medportal/internal/repository"
	"medportal/internal/security"
	"medportal/pkg/apierror"
)

const generatedIDAttempts = 5

type DoctorService struct {
	doctors  *repository.DoctorRepository
	sessions *repository.SessionRepository
	hasher   *security.PasswordHasher
}

func NewDoctorService(doctors *repository.DoctorRepository, sessions *repository.SessionRepository, hasher *security.PasswordHasher) *DoctorService {
	return &DoctorService{doctors: doctors, sessions: sessions, hasher: hasher}
}

func (s *DoctorService) List(ctx context.Context) ([]model.Doctor, error) {
	return s.doctors.List(ctx)
}

// Create stores a new account. A blank doctor id is replaced by a random
// unused six digit id.
func (s *DoctorService) Create(ctx context.Context, req model.CreateDoctorRequest) (model.Doctor, error) {
	doctor, err := s.newDoctor(req)
	if err != nil {
		return model.Doctor{}, err
	}

	if strings.TrimSpace(req.DoctorID) != "" {
		return s.doctors.Create(ctx, doctor)
	}

	for attempt := 0; attempt < generatedIDAttempts; attempt++ {
		id, err := GenerateDoctorID()
		if err != nil {
			return model.Doctor{}, err
		}
		doctor.DoctorID = id

		created, err := s.doctors.Create(ctx, doctor)
		if errors.Is(err, model.ErrDoctorAlreadyExists) {
			continue
		}
		return created, err
	}

	return model.Doctor{}, fmt.Errorf("no free doctor id after %d attempts", generatedIDAttempts)
}

// SaveAdmin creates or overwrites an Admin account.
func (s *DoctorService) SaveAdmin(ctx context.Context, doctorID string, name string, password string) (model.Doctor, error) {
	doctor, err := s.newDoctor(model.CreateDoctorRequest{
		DoctorID: doctorID,
		Name:     name,
		Role:     model.RoleAdmin,
		Password: password,
	})
	if err != nil {
		return model.Doctor{}, err
	}
	return s.doctors.Upsert(ctx, doctor)
}

func (s *DoctorService) Update(ctx context.Context, doctorID string, req model.UpdateDoctorRequest) (model.Doctor, error) {
	if !model.ValidDoctorID(doctorID) {
		return model.Doctor{}, apierror.BadRequest("doctor_id must be exactly 6 digits", doctorID)
	}

	patch := model.DoctorPatch{
		Name:     trimmed(req.Name),
		Region:   trimmed(req.Region),
		Hospital: trimmed(req.Hospital),
	}
	if patch.Name != nil && *patch.Name == "" {
		return model.Doctor{}, apierror.BadRequest("name cannot be empty", "name")
	}

	if req.Role != nil {
		role, ok := model.NormalizeRole(*req.Role)
		if !ok {
			return model.Doctor{}, apierror.BadRequest("role must be Admin or Doctor", *req.Role)
		}
		patch.Role = &role
	}
	if req.Status != nil {
		status, ok := model.NormalizeStatus(*req.Status)
		if !ok {
			return model.Doctor{}, apierror.BadRequest("status must be Active or Inactive", *req.Status)
		}
		patch.Status = &status
	}
	if req.Password != nil {
		if *req.Password == "" {
			return model.Doctor{}, apierror.BadRequest("password cannot be empty", "password")
		}
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return model.Doctor{}, err
		}
		patch.PasswordHash = &hash
	}

	updated, err := s.doctors.Update(ctx, doctorID, patch)
	if err != nil {
		return model.Doctor{}, err
	}

	if patch.PasswordHash != nil {
		if removed, err := s.sessions.DeleteAllForDoctor(ctx, doctorID); err != nil {
			slog.Warn("sessions not revoked after password change", "doctor_id", doctorID, "error", err)
		} else if removed > 0 {
			slog.Info("sessions revoked after password change", "doctor_id", doctorID, "count", removed)
		}
	}

	return updated, nil
}

func (s *DoctorService) Delete(ctx context.Context, doctorID string) error {
	if !model.ValidDoctorID(doctorID) {
		return apierror.BadRequest("doctor_id must be exactly 6 digits", doctorID)
	}
	return s.doctors.Delete(ctx, doctorID)
}

func (s *DoctorService) newDoctor(req model.CreateDoctorRequest) (model.Doctor, error) {
	doctorID := strings.TrimSpace(req.DoctorID)
	if doctorID != "" && !model.ValidDoctorID(doctorID) {
		return model.Doctor{}, apierror.BadRequest("doctor_id must be exactly 6 digits", doctorID)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Doctor{}, apierror.BadRequest("name is required", "name")
	}

	role := model.RoleDoctor
	if strings.TrimSpace(req.Role) != "" {
		normalized, ok := model.NormalizeRole(req.Role)
		if !ok {
			return model.Doctor{}, apierror.BadRequest("role must be Admin or Doctor", req.Role)
		}
		role = normalized
	}

	status := model.StatusActive
	if strings.TrimSpace(req.Status) != "" {
		normalized, ok := model.NormalizeStatus(req.Status)
		if !ok {
			return model.Doctor{}, apierror.BadRequest("status must be Active or Inactive", req.Status)
		}
		status = normalized
	}

	if req.Password == "" {
		return model.Doctor{}, apierror.BadRequest("password is required", "password")
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.Doctor{}, err
	}

	return model.Doctor{
		DoctorID:     doctorID,
		Name:         name,
		Role:         role,
		Region:       strings.TrimSpace(req.Region),
		Hospital:     strings.TrimSpace(req.Hospital),
		Status:       status,
		PasswordHash: hash,
	}, nil
}

// GenerateDoctorID returns a random id in 100000..999999.
func GenerateDoctorID() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate doctor id: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	return &v
}
