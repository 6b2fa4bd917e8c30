package model

type LoginRequest struct {
	DoctorID string `json:"doctor_id"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type CreateHospitalRequest struct {
	Name   string `json:"name"`
	Region string `json:"region"`
	Status string `json:"status"`
}

type UpdateHospitalRequest struct {
	Name   *string `json:"name"`
	Region *string `json:"region"`
	Status *string `json:"status"`
}

type CreateDoctorRequest struct {
	DoctorID string `json:"doctor_id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Region   string `json:"region"`
	Hospital string `json:"hospital"`
	Status   string `json:"status"`
	Password string `json:"password"`
}

type UpdateDoctorRequest struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	Region   *string `json:"region"`
	Hospital *string `json:"hospital"`
	Status   *string `json:"status"`
	Password *string `json:"password"`
}

type DetailResponse struct {
	Detail string `json:"detail"`
}
