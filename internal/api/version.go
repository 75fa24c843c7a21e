package api

// Service version information - set at build time via ldflags.
var (
	ServiceVersion = "dev"
	GitCommit      = "unknown"
	BuildTime      = "unknown"
)
