// Package config provides configuration loading and validation for the
// rate calendar service.
package config
