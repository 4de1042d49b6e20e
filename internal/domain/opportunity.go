package domain

import "time"

// OpportunityStatus is the persisted capacity state of an opportunity.
type OpportunityStatus string

const (
	OpportunityOpen   OpportunityStatus = "OPEN"
	OpportunityFull   OpportunityStatus = "FULL"
	OpportunityClosed OpportunityStatus = "CLOSED"
)

// Opportunity is a time-boxed, capacity-limited activity.
//
// FilledSlots is only ever changed by the sign-up engine. Status moves from
// OPEN to FULL in the same unit of work that consumes the last slot. Whether
// the opportunity lies in the past is derived from StartDate on read and is
// not part of Status.
type Opportunity struct {
	ID             string
	OrganizationID string
	Title          string
	Description    string
	Location       string
	StartDate      time.Time
	EndDate        time.Time
	TotalSlots     int
	FilledSlots    int
	Requirements   *string
	Status         OpportunityStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RemainingSlots returns the unreserved capacity.
func (o *Opportunity) RemainingSlots() int {
	if o.FilledSlots >= o.TotalSlots {
		return 0
	}
	return o.TotalSlots - o.FilledSlots
}

// HasCapacity reports whether another slot can be reserved.
func (o *Opportunity) HasCapacity() bool {
	return o.FilledSlots < o.TotalSlots
}

// IsPast reports whether the opportunity has started by now.
func (o *Opportunity) IsPast(now time.Time) bool {
	return !o.StartDate.After(now)
}

// ReserveSlot consumes one slot and flips the status to FULL on the last one.
// Callers must hold the opportunity's write lock.
func (o *Opportunity) ReserveSlot() {
	o.FilledSlots++
	if o.FilledSlots >= o.TotalSlots {
		o.Status = OpportunityFull
	}
}
