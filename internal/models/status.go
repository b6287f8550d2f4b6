package models

// ListingStatus は掲載のライフサイクル状態
type ListingStatus string

const (
	ListingStatusDraft    ListingStatus = "draft"
	ListingStatusPending  ListingStatus = "pending"
	ListingStatusActive   ListingStatus = "active"
	ListingStatusHold     ListingStatus = "hold"
	ListingStatusRejected ListingStatus = "rejected"
	ListingStatusSold     ListingStatus = "sold"
	ListingStatusArchived ListingStatus = "archived"
)

// transitions holds the allowed edges of the status machine.
// archived is terminal; every non-archived state may reach it.
var transitions = map[ListingStatus][]ListingStatus{
	ListingStatusDraft:    {ListingStatusPending},
	ListingStatusPending:  {ListingStatusActive, ListingStatusHold, ListingStatusRejected},
	ListingStatusActive:   {ListingStatusHold, ListingStatusSold},
	ListingStatusHold:     {ListingStatusActive},
	ListingStatusRejected: {},
	ListingStatusSold:     {},
	ListingStatusArchived: {},
}

// moderatorOnly lists target states only a moderator may set.
var moderatorOnly = map[ListingStatus]bool{
	ListingStatusActive:   true,
	ListingStatusRejected: true,
	ListingStatusSold:     true,
}

// IsValidStatus reports whether s is a known listing status.
func IsValidStatus(s ListingStatus) bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether the status machine allows from → to.
// Archival is a one-way edge available from any non-archived state.
func CanTransition(from, to ListingStatus) bool {
	if from == ListingStatusArchived {
		return false
	}
	if to == ListingStatusArchived {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// RequiresModerator reports whether setting the target status is reserved
// for moderator-role actors. Owners may only toggle hold ⇄ active on their
// own listing or request archival; the hold → active edge is the single
// moderator-only target an owner is also allowed to use.
func RequiresModerator(from, to ListingStatus) bool {
	if from == ListingStatusHold && to == ListingStatusActive {
		return false
	}
	return moderatorOnly[to]
}
