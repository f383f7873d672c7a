package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrListingInactive    = errors.New("listing is not accepting inquiries")
	ErrAgentMissing       = errors.New("listing agent not found")
	ErrSelfDelete         = errors.New("cannot delete own account")
	ErrInvalidStatus      = errors.New("invalid listing status")
	ErrCustomerNotOwned   = errors.New("customer not found for agent")
)
