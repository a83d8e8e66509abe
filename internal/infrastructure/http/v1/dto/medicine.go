package dto

import (
	"dispensary/internal/core/types"
	"dispensary/internal/domain/catalogs/medicine"
)

// CreateMedicineRequest creates a catalog entry.
type CreateMedicineRequest struct {
	Code                 string  `json:"code"`
	Name                 string  `json:"name" binding:"required"`
	GenericName          *string `json:"genericName"`
	Manufacturer         *string `json:"manufacturer"`
	Schedule             string  `json:"schedule"`
	RequiresPrescription bool    `json:"requiresPrescription"`
	UnitPrice            string  `json:"unitPrice" binding:"required"`
	Description          *string `json:"description"`
}

// ToMedicine converts the request into a domain entity.
func (r *CreateMedicineRequest) ToMedicine() (*medicine.Medicine, error) {
	price, err := types.NewMoneyFromString(r.UnitPrice)
	if err != nil {
		return nil, err
	}

	m := medicine.New(r.Code, r.Name, price)
	m.GenericName = r.GenericName
	m.Manufacturer = r.Manufacturer
	m.RequiresPrescription = r.RequiresPrescription
	if r.Schedule != "" {
		m.Schedule = r.Schedule
	}
	m.Description = r.Description
	return m, nil
}

// UpdateMedicineRequest partially updates a catalog entry.
type UpdateMedicineRequest struct {
	Name                 *string `json:"name"`
	GenericName          *string `json:"genericName"`
	Manufacturer         *string `json:"manufacturer"`
	Schedule             *string `json:"schedule"`
	RequiresPrescription *bool   `json:"requiresPrescription"`
	UnitPrice            *string `json:"unitPrice"`
	Description          *string `json:"description"`
	Version              int     `json:"version" binding:"required"`
}

// MedicineResponse represents a medicine in API responses.
type MedicineResponse struct {
	ID                   string  `json:"id"`
	Code                 string  `json:"code"`
	Name                 string  `json:"name"`
	GenericName          *string `json:"genericName,omitempty"`
	Manufacturer         *string `json:"manufacturer,omitempty"`
	Schedule             string  `json:"schedule"`
	RequiresPrescription bool    `json:"requiresPrescription"`
	UnitPrice            string  `json:"unitPrice"`
	Description          *string `json:"description,omitempty"`
	Version              int     `json:"version"`
	DeletionMark         bool    `json:"deletionMark"`
}

// FromMedicine converts entity to response DTO.
func FromMedicine(m *medicine.Medicine) MedicineResponse {
	return MedicineResponse{
		ID:                   m.ID.String(),
		Code:                 m.Code,
		Name:                 m.Name,
		GenericName:          m.GenericName,
		Manufacturer:         m.Manufacturer,
		Schedule:             m.Schedule,
		RequiresPrescription: m.RequiresPrescription,
		UnitPrice:            m.UnitPrice.StringFixed(2),
		Description:          m.Description,
		Version:              m.Version,
		DeletionMark:         m.DeletionMark,
	}
}
