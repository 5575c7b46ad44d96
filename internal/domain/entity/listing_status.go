package entity

import (
	"fmt"

	"flipearn/pkg/errors"
)

type ListingStatus string

const (
	ListingStatusActive   ListingStatus = "active"
	ListingStatusInactive ListingStatus = "inactive"
	ListingStatusSold     ListingStatus = "sold"
	ListingStatusBanned   ListingStatus = "banned"
	ListingStatusDeleted  ListingStatus = "deleted"
)

type ListingAction string

const (
	ListingActionToggle ListingAction = "toggle"
	ListingActionBan    ListingAction = "ban"
	ListingActionSell   ListingAction = "sell"
	ListingActionDelete ListingAction = "delete"
)

var ListingStatuses = []ListingStatus{
	ListingStatusActive,
	ListingStatusInactive,
	ListingStatusSold,
	ListingStatusBanned,
	ListingStatusDeleted,
}

type rejection int

const (
	allowed rejection = iota
	rejectForbidden
	rejectInvalidState
	rejectNotFound
)

type transition struct {
	next   ListingStatus
	reject rejection
}

func to(next ListingStatus) transition { return transition{next: next} }
func deny(r rejection) transition      { return transition{reject: r} }

var listingTransitions = map[ListingStatus]map[ListingAction]transition{
	ListingStatusActive: {
		ListingActionToggle: to(ListingStatusInactive),
		ListingActionBan:    to(ListingStatusBanned),
		ListingActionSell:   to(ListingStatusSold),
		ListingActionDelete: to(ListingStatusDeleted),
	},
	ListingStatusInactive: {
		ListingActionToggle: to(ListingStatusActive),
		ListingActionBan:    to(ListingStatusBanned),
		ListingActionSell:   to(ListingStatusSold),
		ListingActionDelete: to(ListingStatusDeleted),
	},
	ListingStatusBanned: {
		ListingActionToggle: deny(rejectForbidden),
		ListingActionBan:    deny(rejectInvalidState),
		ListingActionSell:   deny(rejectInvalidState),
		ListingActionDelete: to(ListingStatusDeleted),
	},
	ListingStatusSold: {
		ListingActionToggle: deny(rejectInvalidState),
		ListingActionBan:    deny(rejectInvalidState),
		ListingActionSell:   deny(rejectInvalidState),
		ListingActionDelete: deny(rejectNotFound),
	},
	ListingStatusDeleted: {
		ListingActionToggle: deny(rejectNotFound),
		ListingActionBan:    deny(rejectNotFound),
		ListingActionSell:   deny(rejectNotFound),
		ListingActionDelete: deny(rejectNotFound),
	},
}

// NextStatus resolves the status a listing moves to when action is applied.
// Every (status, action) pair is covered by the table; unknown statuses or
// actions are rejected as an invalid state.
func NextStatus(from ListingStatus, action ListingAction) (ListingStatus, error) {
	t, ok := listingTransitions[from][action]
	if !ok {
		return from, errors.InvalidState(fmt.Sprintf("Cannot %s a listing in status %q", action, from))
	}

	switch t.reject {
	case rejectForbidden:
		return from, errors.Forbidden(fmt.Sprintf("Listing is %s", from), nil)
	case rejectInvalidState:
		return from, errors.InvalidState(fmt.Sprintf("Listing is %s", from))
	case rejectNotFound:
		return from, errors.NotFound("Listing", nil)
	}
	return t.next, nil
}

// StatusesAllowing lists, in ListingStatuses order, the statuses from which
// action succeeds.
func StatusesAllowing(action ListingAction) []ListingStatus {
	var out []ListingStatus
	for _, s := range ListingStatuses {
		if _, err := NextStatus(s, action); err == nil {
			out = append(out, s)
		}
	}
	return out
}

// IsVisible reports whether the listing still exists for its owner.
func (s ListingStatus) IsVisible() bool {
	return s != ListingStatusDeleted
}

func (s ListingStatus) Valid() bool {
	_, ok := listingTransitions[s]
	return ok
}
