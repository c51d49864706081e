package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestTransitions(t *testing.T) {
	tests := []struct {
		from, to RequestStatus
		allowed  bool
	}{
		{RequestStatusPending, RequestStatusMatched, true},
		{RequestStatusPending, RequestStatusCompleted, true},
		{RequestStatusPending, RequestStatusCancelled, true},
		{RequestStatusPending, RequestStatusPending, false},
		{RequestStatusMatched, RequestStatusCompleted, true},
		{RequestStatusMatched, RequestStatusCancelled, true},
		{RequestStatusMatched, RequestStatusPending, true},
		{RequestStatusCompleted, RequestStatusPending, true},
		{RequestStatusCompleted, RequestStatusCancelled, false},
		{RequestStatusCompleted, RequestStatusMatched, false},
		{RequestStatusCancelled, RequestStatusPending, true},
		{RequestStatusCancelled, RequestStatusCompleted, false},
		{RequestStatus("archived"), RequestStatusPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestRequestTransitionsCopy(t *testing.T) {
	table := RequestTransitions()
	table[RequestStatusCompleted] = append(table[RequestStatusCompleted], RequestStatusCancelled)
	assert.False(t, RequestStatusCompleted.CanTransitionTo(RequestStatusCancelled))
	assert.Len(t, RequestTransitions(), 4)
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, RequestStatusMatched.Valid())
	assert.False(t, RequestStatus("").Valid())
	assert.True(t, UrgencyWithin48h.Valid())
	assert.False(t, UrgencyLevel("Within 96h").Valid())
	assert.True(t, BloodGroupABNeg.Valid())
	assert.False(t, BloodGroup("C+").Valid())
	assert.True(t, PostKindNews.Valid())
	assert.False(t, PostKind("page").Valid())
}

func TestDonationTransitions(t *testing.T) {
	assert.True(t, DonationStatusScheduled.CanTransitionTo(DonationStatusCompleted))
	assert.True(t, DonationStatusScheduled.CanTransitionTo(DonationStatusCancelled))
	assert.False(t, DonationStatusCompleted.CanTransitionTo(DonationStatusCancelled))
	assert.False(t, DonationStatusCancelled.CanTransitionTo(DonationStatusScheduled))
	assert.False(t, DonationStatusScheduled.CanTransitionTo(DonationStatusScheduled))
}
