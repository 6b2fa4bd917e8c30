package service

import (
	"context"
	"strings"

	"medportal/internal/model"
	"medportal/internal/repository"
	"medportal/pkg/apierror"
)

type HospitalService struct {
	hospitals *repository.HospitalRepository
}

func NewHospitalService(hospitals *repository.HospitalRepository) *HospitalService {
	return &HospitalService{hospitals: hospitals}
}

func (s *HospitalService) List(ctx context.Context) ([]model.Hospital, error) {
	return s.hospitals.List(ctx)
}

func (s *HospitalService) Create(ctx context.Context, req model.CreateHospitalRequest) (model.Hospital, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Hospital{}, apierror.BadRequest("name is required", "name")
	}

	status := model.StatusActive
	if strings.TrimSpace(req.Status) != "" {
		normalized, ok := model.NormalizeStatus(req.Status)
		if !ok {
			return model.Hospital{}, apierror.BadRequest("status must be Active or Inactive", req.Status)
		}
		status = normalized
	}

	return s.hospitals.Create(ctx, model.Hospital{
		Name:   name,
		Region: strings.TrimSpace(req.Region),
		Status: status,
	})
}

func (s *HospitalService) Update(ctx context.Context, id int64, req model.UpdateHospitalRequest) (model.Hospital, error) {
	patch := model.HospitalPatch{
		Name:   trimmed(req.Name),
		Region: trimmed(req.Region),
	}
	if patch.Name != nil && *patch.Name == "" {
		return model.Hospital{}, apierror.BadRequest("name cannot be empty", "name")
	}
	if req.Status != nil {
		status, ok := model.NormalizeStatus(*req.Status)
		if !ok {
			return model.Hospital{}, apierror.BadRequest("status must be Active or Inactive", *req.Status)
		}
		patch.Status = &status
	}

	return s.hospitals.Update(ctx, id, patch)
}

func (s *HospitalService) Delete(ctx context.Context, id int64) error {
	return s.hospitals.Delete(ctx, id)
}
