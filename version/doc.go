// Package version reports build information for the locallm binary and
// the User-Agent sent to inference servers.
//
//	go build -ldflags "-X github.com/kbukum/locallm/version.Version=1.0.0"
package version
