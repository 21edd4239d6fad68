// Package auth issues and validates JWT token pairs and implements the
// register, login and refresh flows on top of the user store.
package auth
