package domain

import "errors"

// Sentinel errors for the domain layer.
var (
	ErrNotFound          = errors.New("domain: not found")
	ErrForbidden         = errors.New("domain: forbidden")
	ErrContractViolation = errors.New("domain: fact contract violation")
	ErrSourceUnavailable = errors.New("domain: source unavailable")
)
