package model

type Hospital struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Region string `json:"region"`
	Status string `json:"status"`
}

type HospitalPatch struct {
	Name   *string
	Region *string
	Status *string
}

func (p HospitalPatch) Empty() bool {
	return p.Name == nil && p.Region == nil && p.Status == nil
}
