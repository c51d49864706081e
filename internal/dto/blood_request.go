package dto

import "github.com/noah-isme/lifeflow-api/internal/models"

// CreateBloodRequest is the payload for submitting a blood request.
type CreateBloodRequest struct {
	PatientName      string              `json:"patient_name" validate:"required,max=120"`
	GuardianName     *string             `json:"guardian_name" validate:"omitempty,max=120"`
	Mobile           string              `json:"mobile" validate:"required,min=7,max=20"`
	AltMobile        *string             `json:"alt_mobile" validate:"omitempty,min=7,max=20"`
	Age              int                 `json:"age" validate:"gte=0,lte=120"`
	UnitsNeeded      int                 `json:"units_needed" validate:"required,min=1,max=10"`
	BloodGroup       models.BloodGroup   `json:"blood_group" validate:"required,bloodgroup"`
	UrgencyLevel     models.UrgencyLevel `json:"urgency_level" validate:"required,urgency"`
	Village          string              `json:"village" validate:"required"`
	Block            string              `json:"block" validate:"required"`
	Pin              string              `json:"pin" validate:"required,numeric,min=4,max=10"`
	District         string              `json:"district" validate:"required"`
	State            string              `json:"state" validate:"required"`
	ReceivingAddress string              `json:"receiving_address" validate:"required,max=500"`
}

// UpdateRequestStatus moves a request along the lifecycle table.
type UpdateRequestStatus struct {
	Status models.RequestStatus `json:"status" validate:"required,requeststatus"`
}

// RequestTransition is one row of the published lifecycle table.
type RequestTransition struct {
	From models.RequestStatus   `json:"from"`
	To   []models.RequestStatus `json:"to"`
}
