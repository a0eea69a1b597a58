package domain

import "errors"

var (
	// Ad errors
	ErrAdNotFound        = errors.New("ad not found")
	ErrAdInactive        = errors.New("ad is not active")
	ErrMissingAdvertiser = errors.New("advertiser id is required")
	ErrMissingTitle      = errors.New("title is required")
	ErrMissingTargetLink = errors.New("target link is required")
	ErrInvalidBid        = errors.New("bid per view must be positive")
	ErrInvalidBudget     = errors.New("total budget must be positive")
	ErrBudgetBelowBid    = errors.New("total budget must cover at least one view")

	// Settlement errors
	ErrDuplicateView      = errors.New("device already viewed this ad")
	ErrInsufficientBudget = errors.New("remaining budget cannot cover the bid")
)
