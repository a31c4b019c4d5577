// Package version carries build metadata injected at link time.
package version

// Version is the build version, overridden via
// -ldflags "-X github.com/codeready-toolchain/sqlbench/pkg/version.Version=...".
var Version = "dev"
