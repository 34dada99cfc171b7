package dto

import (
	"puntoventa/internal/domain/catalogs/client"
)

// CreateClientRequest registers a customer.
type CreateClientRequest struct {
	Cedula  string `json:"cedula" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// ToInput converts the request to a service input.
func (r *CreateClientRequest) ToInput() client.CreateInput {
	return client.CreateInput{
		Cedula:  r.Cedula,
		Name:    r.Name,
		Phone:   r.Phone,
		Email:   r.Email,
		Address: r.Address,
	}
}

// UpdateClientRequest edits a customer.
type UpdateClientRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Active  bool   `json:"active"`
	Version int    `json:"version" binding:"required"`
}

// ToInput converts the request to a service input.
func (r *UpdateClientRequest) ToInput() client.UpdateInput {
	return client.UpdateInput{
		Name:    r.Name,
		Phone:   r.Phone,
		Email:   r.Email,
		Address: r.Address,
		Active:  r.Active,
		Version: r.Version,
	}
}
