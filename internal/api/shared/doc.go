// Package shared holds the request and response helpers used by both the api
// handlers and the middleware package.
package shared
