package models

import "time"

// RequestStatus is the lifecycle state of a blood request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusMatched   RequestStatus = "matched"
	RequestStatusCompleted RequestStatus = "completed"
	RequestStatusCancelled RequestStatus = "cancelled"
)

// requestTransitions is the complete set of allowed status edges.
// completed and cancelled only lead back to pending (administrative reversal).
var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusPending:   {RequestStatusMatched, RequestStatusCompleted, RequestStatusCancelled},
	RequestStatusMatched:   {RequestStatusPending, RequestStatusCompleted, RequestStatusCancelled},
	RequestStatusCompleted: {RequestStatusPending},
	RequestStatusCancelled: {RequestStatusPending},
}

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	_, ok := requestTransitions[s]
	return ok
}

// CanTransitionTo reports whether next is an allowed edge from s.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range requestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// RequestTransitions returns a copy of the transition table.
func RequestTransitions() map[RequestStatus][]RequestStatus {
	out := make(map[RequestStatus][]RequestStatus, len(requestTransitions))
	for from, to := range requestTransitions {
		out[from] = append([]RequestStatus(nil), to...)
	}
	return out
}

// UrgencyLevel is a priority label on a request, not a computed SLA.
type UrgencyLevel string

const (
	UrgencyUrgent    UrgencyLevel = "Urgent"
	UrgencyWithin24h UrgencyLevel = "Within 24h"
	UrgencyWithin48h UrgencyLevel = "Within 48h"
	UrgencyWithin72h UrgencyLevel = "Within 72h"
	UrgencyScheduled UrgencyLevel = "Scheduled"
)

// Valid reports whether u is a known urgency tier.
func (u UrgencyLevel) Valid() bool {
	switch u {
	case UrgencyUrgent, UrgencyWithin24h, UrgencyWithin48h, UrgencyWithin72h, UrgencyScheduled:
		return true
	}
	return false
}

// BloodRequest is a solicitation for blood units on behalf of a patient.
type BloodRequest struct {
	ID               string        `db:"id" json:"id"`
	PatientName      string        `db:"patient_name" json:"patient_name"`
	GuardianName     *string       `db:"guardian_name" json:"guardian_name,omitempty"`
	Mobile           string        `db:"mobile" json:"mobile"`
	AltMobile        *string       `db:"alt_mobile" json:"alt_mobile,omitempty"`
	Age              int           `db:"age" json:"age"`
	UnitsNeeded      int           `db:"units_needed" json:"units_needed"`
	BloodGroup       BloodGroup    `db:"blood_group" json:"blood_group"`
	UrgencyLevel     UrgencyLevel  `db:"urgency_level" json:"urgency_level"`
	Village          string        `db:"village" json:"village"`
	Block            string        `db:"block" json:"block"`
	Pin              string        `db:"pin" json:"pin"`
	District         string        `db:"district" json:"district"`
	State            string        `db:"state" json:"state"`
	ReceivingAddress string        `db:"receiving_address" json:"receiving_address"`
	Status           RequestStatus `db:"status" json:"status"`
	RequesterID      string        `db:"requester_id" json:"requester_id"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
}

// BloodRequestFilter narrows request listings. Zero values mean no constraint.
type BloodRequestFilter struct {
	Status      *RequestStatus
	RequesterID string
	Limit       int
}

// BloodRequestDetail is a request with its donations and donor contacts, for moderation.
type BloodRequestDetail struct {
	BloodRequest
	Donations []DonationWithDonor `json:"donations"`
}
