package auth

import "errors"

// Access token failures. The HTTP layer answers all of them with 401.
var (
	ErrInvalidToken     = errors.New("invalid authentication token")
	ErrExpiredToken     = errors.New("authentication token has expired")
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")
)

// Refresh token failures.
var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrExpiredRefreshToken = errors.New("refresh token has expired")
)

// ErrWrongTokenType is returned when an access token is presented where a
// refresh token is expected, or the other way round.
var ErrWrongTokenType = errors.New("wrong token type")

// ErrInvalidCredentials covers both an unknown email and a wrong password so
// login responses do not reveal which accounts exist.
var ErrInvalidCredentials = errors.New("invalid email or password")
