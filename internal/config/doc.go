// Package config loads the session-gateway configuration from a YAML file.
//
// Environment variables referenced as ${VAR_NAME} are expanded before
// parsing, so secrets and deployment-specific URLs stay out of the file
// itself. Load applies defaults and validates the result; the backend base
// URL and transport mode are externally supplied, never hard-coded.
package config
