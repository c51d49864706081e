package dto

import "github.com/noah-isme/lifeflow-api/internal/models"

// ScheduleDonationRequest books a donation appointment.
type ScheduleDonationRequest struct {
	DonationDate string  `json:"donation_date" validate:"required,datetime=2006-01-02"`
	RequestID    *string `json:"request_id" validate:"omitempty,uuid"`
}

// UpdateDonationStatus completes or cancels a scheduled donation.
type UpdateDonationStatus struct {
	Status models.DonationStatus `json:"status" validate:"required,donationstatus"`
}
