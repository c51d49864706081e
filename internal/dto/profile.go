package dto

import "github.com/noah-isme/lifeflow-api/internal/models"

// ProfileRequest is the donor registration and profile edit payload.
type ProfileRequest struct {
	Name             string            `json:"name" validate:"required,max=120"`
	Mobile           string            `json:"mobile" validate:"required,min=7,max=20"`
	AltMobile        *string           `json:"alt_mobile" validate:"omitempty,min=7,max=20"`
	Age              int               `json:"age" validate:"required,gte=18,lte=65"`
	Weight           float64           `json:"weight" validate:"required,gte=45,lte=300"`
	BloodGroup       models.BloodGroup `json:"blood_group" validate:"required,bloodgroup"`
	LastDonationDate *string           `json:"last_donation_date" validate:"omitempty,datetime=2006-01-02"`
	Village          string            `json:"village" validate:"required"`
	Block            string            `json:"block" validate:"required"`
	Pin              string            `json:"pin" validate:"required,numeric,min=4,max=10"`
	District         string            `json:"district" validate:"required"`
	State            string            `json:"state" validate:"required"`
}
