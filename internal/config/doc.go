// Package config loads settings through viper from an optional config.yaml
// and HABITUTOR_* environment variables, applies defaults, and checks the
// result with validator struct tags plus a timezone lookup.
package config
