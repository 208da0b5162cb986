package selection

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrNoEligibleRole       = errors.New("no eligible role")
	ErrAmbiguousMarket      = errors.New("person can shop more than one market")
	ErrNoMatchingAssignment = errors.New("no matching benefit group assignment")
	ErrInvalidEffectiveDate = errors.New("invalid effective date")
	ErrInvariantViolated    = errors.New("record invariant violated")
)
