// Package version holds build identity. BuildDate is meant to be overridden
// at build time via -ldflags.
package version

var (
	AppName     = "woot"
	AppFullName = "woot Community Bot"
	BuildDate   = ""
)
