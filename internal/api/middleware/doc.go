// Package middleware contains the HTTP middleware for tracing, authentication
// and premium gating.
package middleware
