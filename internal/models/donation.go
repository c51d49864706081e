package models

import "time"

// DonationStatus is the state of a scheduled donation.
type DonationStatus string

const (
	DonationStatusScheduled DonationStatus = "scheduled"
	DonationStatusCompleted DonationStatus = "completed"
	DonationStatusCancelled DonationStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s DonationStatus) Valid() bool {
	switch s {
	case DonationStatusScheduled, DonationStatusCompleted, DonationStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo allows scheduled -> completed | cancelled only.
func (s DonationStatus) CanTransitionTo(next DonationStatus) bool {
	return s == DonationStatusScheduled && (next == DonationStatusCompleted || next == DonationStatusCancelled)
}

// Donation links a donor to a date and, optionally, to a request.
type Donation struct {
	ID           string         `db:"id" json:"id"`
	DonorID      string         `db:"donor_id" json:"donor_id"`
	RequestID    *string        `db:"request_id" json:"request_id,omitempty"`
	DonationDate time.Time      `db:"donation_date" json:"donation_date"`
	Status       DonationStatus `db:"status" json:"status"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// DonationWithDonor carries the donor's contact details for a request's donation.
type DonationWithDonor struct {
	Donation
	DonorName       *string     `db:"donor_name" json:"donor_name,omitempty"`
	DonorMobile     *string     `db:"donor_mobile" json:"donor_mobile,omitempty"`
	DonorBloodGroup *BloodGroup `db:"donor_blood_group" json:"donor_blood_group,omitempty"`
}

// UpcomingDonation is a scheduled donation with a summary of the linked request.
type UpcomingDonation struct {
	Donation
	PatientName      *string     `db:"patient_name" json:"patient_name,omitempty"`
	RequestGroup     *BloodGroup `db:"request_blood_group" json:"request_blood_group,omitempty"`
	ReceivingAddress *string     `db:"receiving_address" json:"receiving_address,omitempty"`
}
