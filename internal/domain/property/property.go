package property

import (
	"errors"
	"time"
)

type Property struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	URL     string   `json:"url"`
	Address string   `json:"address"`
	City    string   `json:"city"`
	ZipCode string   `json:"zipCode"`
	Country string   `json:"country"`
	Image   string   `json:"image"`
	Area    *float64 `json:"area"`
	// ids of the users allowed to read/modify this property
	Users     []string  `json:"users"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("property not found")

type CreatePropertyRequest struct {
	Name    *string  `json:"name" binding:"omitempty,max=120"`
	URL     *string  `json:"url" binding:"omitempty,max=255"`
	Address *string  `json:"address" binding:"omitempty,max=255"`
	City    *string  `json:"city" binding:"omitempty,max=80"`
	ZipCode *string  `json:"zipCode" binding:"omitempty,max=20"`
	Country *string  `json:"country" binding:"omitempty,max=80"`
	Image   *string  `json:"image" binding:"omitempty,max=255"`
	Area    *float64 `json:"area" binding:"omitempty,gte=0"`
}

// FromCreateRequest fills in the historical defaults for absent fields.
func FromCreateRequest(req CreatePropertyRequest) Property {
	p := Property{
		Name:    "Default",
		URL:     "default-url",
		Address: "Unknown",
		City:    "Unknown",
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.URL != nil {
		p.URL = *req.URL
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.City != nil {
		p.City = *req.City
	}
	if req.ZipCode != nil {
		p.ZipCode = *req.ZipCode
	}
	if req.Country != nil {
		p.Country = *req.Country
	}
	if req.Image != nil {
		p.Image = *req.Image
	}
	p.Area = req.Area

	return p
}

// partial merge payload: only present fields overwrite stored values.
type UpdatePropertyRequest struct {
	Name    *string  `json:"name" binding:"omitempty,max=120"`
	URL     *string  `json:"url" binding:"omitempty,max=255"`
	Address *string  `json:"address" binding:"omitempty,max=255"`
	City    *string  `json:"city" binding:"omitempty,max=80"`
	ZipCode *string  `json:"zipCode" binding:"omitempty,max=20"`
	Country *string  `json:"country" binding:"omitempty,max=80"`
	Image   *string  `json:"image" binding:"omitempty,max=255"`
	Area    *float64 `json:"area" binding:"omitempty,gte=0"`
}

// ApplyUpdate merges req into p.
func (p *Property) ApplyUpdate(req UpdatePropertyRequest) {
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.URL != nil {
		p.URL = *req.URL
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.City != nil {
		p.City = *req.City
	}
	if req.ZipCode != nil {
		p.ZipCode = *req.ZipCode
	}
	if req.Country != nil {
		p.Country = *req.Country
	}
	if req.Image != nil {
		p.Image = *req.Image
	}
	if req.Area != nil {
		p.Area = req.Area
	}
}
