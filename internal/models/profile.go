package models

import "time"

// BloodGroup is an ABO/Rh blood group label.
type BloodGroup string

const (
	BloodGroupAPos  BloodGroup = "A+"
	BloodGroupANeg  BloodGroup = "A-"
	BloodGroupBPos  BloodGroup = "B+"
	BloodGroupBNeg  BloodGroup = "B-"
	BloodGroupABPos BloodGroup = "AB+"
	BloodGroupABNeg BloodGroup = "AB-"
	BloodGroupOPos  BloodGroup = "O+"
	BloodGroupONeg  BloodGroup = "O-"
)

// BloodGroups lists every accepted blood group.
var BloodGroups = []BloodGroup{
	BloodGroupAPos, BloodGroupANeg,
	BloodGroupBPos, BloodGroupBNeg,
	BloodGroupABPos, BloodGroupABNeg,
	BloodGroupOPos, BloodGroupONeg,
}

// Valid reports whether g is one of BloodGroups.
func (g BloodGroup) Valid() bool {
	for _, known := range BloodGroups {
		if g == known {
			return true
		}
	}
	return false
}

// Profile is a registered donor. ID equals the owning user's ID.
type Profile struct {
	ID               string     `db:"id" json:"id"`
	Name             string     `db:"name" json:"name"`
	Email            string     `db:"email" json:"email"`
	Mobile           string     `db:"mobile" json:"mobile"`
	AltMobile        *string    `db:"alt_mobile" json:"alt_mobile,omitempty"`
	Age              int        `db:"age" json:"age"`
	Weight           float64    `db:"weight" json:"weight"`
	BloodGroup       BloodGroup `db:"blood_group" json:"blood_group"`
	LastDonationDate *time.Time `db:"last_donation_date" json:"last_donation_date,omitempty"`
	Village          string     `db:"village" json:"village"`
	Block            string     `db:"block" json:"block"`
	Pin              string     `db:"pin" json:"pin"`
	District         string     `db:"district" json:"district"`
	State            string     `db:"state" json:"state"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// BloodGroupChange is the single allowed change-log entry for a profile's blood group.
type BloodGroupChange struct {
	ID            string     `db:"id" json:"id"`
	UserID        string     `db:"user_id" json:"user_id"`
	OldBloodGroup BloodGroup `db:"old_blood_group" json:"old_blood_group"`
	NewBloodGroup BloodGroup `db:"new_blood_group" json:"new_blood_group"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// BloodGroupLock reports whether the blood group can still be edited.
type BloodGroupLock struct {
	Locked bool              `json:"locked"`
	Change *BloodGroupChange `json:"change,omitempty"`
}

// ProfileFilter pages the admin donor listing.
type ProfileFilter struct {
	Page     int
	PageSize int
}
