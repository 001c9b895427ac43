// Package version holds build metadata, set at link time with
//
//	go build -ldflags "-X github.com/habitoapp/habito-server/internal/version.Version=v1.2.3"
package version

// Version is the release tag, or "dev" for local builds.
var Version = "dev"
