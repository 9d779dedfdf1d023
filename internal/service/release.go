package service

import "os"

// Environment variables consulted for a release identifier when the
// configuration does not set one, in priority order. These cover the CI
// providers we see in practice.
var releaseEnvVars = []string{
	"TRACEFRONT_RELEASE",
	"GITHUB_SHA",
	"CI_COMMIT_SHA",
	"VERCEL_GIT_COMMIT_SHA",
	"CIRCLE_SHA1",
	"BUILD_SOURCEVERSION",
}

// DetectRelease returns the release identifier advertised by the CI
// environment, or the empty string outside of CI.
func DetectRelease() string {
	for _, name := range releaseEnvVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
