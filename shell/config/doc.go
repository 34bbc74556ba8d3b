// Package config loads the deployment configuration of the librarian tools and turns it into
// database pools, a configured postgresengine.Library, and OpenTelemetry providers.
//
// Configuration is layered. Defaults come first, then the YAML file, then environment variables.
// An optional .env file only fills in variables the environment does not already define.
package config
