// Package version holds the build version string, overridable via
// -ldflags "-X github.com/NutekSecurity/dirnutek/pkg/version.Version=...".
package version

// Version is the current release version. "dev" for local/unreleased builds.
var Version = "dev"
