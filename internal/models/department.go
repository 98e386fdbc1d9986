package models

// Pillar is a strategic area of a department that KPIs are assigned under.
type Pillar struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	AssignedKPICount int    `json:"assignedKpiCount"`
}

type Department struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name"`
	HODID        string   `json:"hodId,omitempty"`
	HODName      string   `json:"hodName,omitempty"`
	MembersCount int      `json:"membersCount"`
	Pillars      []Pillar `json:"pillars"`
	CreatedAt    string   `json:"createdAt"`
}

// Pillar returns the pillar with the given id.
func (d *Department) Pillar(id string) (*Pillar, bool) {
	for i := range d.Pillars {
		if d.Pillars[i].ID == id {
			return &d.Pillars[i], true
		}
	}
	return nil, false
}
