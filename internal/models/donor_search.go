package models

import (
	"net/url"
	"strings"
)

// DonorSearchCriteria is the sparse set of user-entered donor filters.
type DonorSearchCriteria struct {
	BloodGroup string `json:"blood_group,omitempty"`
	State      string `json:"state,omitempty"`
	District   string `json:"district,omitempty"`
	Block      string `json:"block,omitempty"`
}

// Predicate is an equality constraint on a profiles column.
type Predicate struct {
	Column string
	Value  string
}

// Normalize trims surrounding whitespace from every criterion.
func (c DonorSearchCriteria) Normalize() DonorSearchCriteria {
	return DonorSearchCriteria{
		BloodGroup: strings.TrimSpace(c.BloodGroup),
		State:      strings.TrimSpace(c.State),
		District:   strings.TrimSpace(c.District),
		Block:      strings.TrimSpace(c.Block),
	}
}

// Predicates returns one equality predicate per non-blank criterion, in a fixed
// column order. Blank criteria contribute nothing.
func (c DonorSearchCriteria) Predicates() []Predicate {
	n := c.Normalize()
	fields := []Predicate{
		{Column: "blood_group", Value: n.BloodGroup},
		{Column: "state", Value: n.State},
		{Column: "district", Value: n.District},
		{Column: "block", Value: n.Block},
	}
	predicates := make([]Predicate, 0, len(fields))
	for _, f := range fields {
		if f.Value != "" {
			predicates = append(predicates, f)
		}
	}
	return predicates
}

// CacheKey identifies the result set of these criteria.
func (c DonorSearchCriteria) CacheKey() string {
	values := url.Values{}
	for _, p := range c.Predicates() {
		values.Set(p.Column, p.Value)
	}
	return DonorSearchCachePrefix + values.Encode()
}

// DonorSearchCachePrefix namespaces cached donor search results.
const DonorSearchCachePrefix = "donors:search:"
