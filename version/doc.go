// Package version reports build information for composekit applications.
//
// Version, git commit, branch, and build time are set at compile time
// via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/composekit/version.Version=1.0.0"
//
// Values left unset fall back to the VCS stamps embedded by the Go toolchain.
package version
