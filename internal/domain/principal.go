package domain

import "github.com/google/uuid"

// Principal is the authenticated caller of a request with its entitlement resolved.
type Principal struct {
	UserID    uuid.UUID
	IsPremium bool
}
