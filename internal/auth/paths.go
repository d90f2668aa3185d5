package auth

import "strings"

// Paths that carry no visitor tracking and no auth context: static
// assets, infra probes, and the logout route itself.
var (
	excludedPrefixes = []string{
		"/public/",
		"/assets/",
	}

	excludedPaths = map[string]struct{}{
		"/favicon.ico": {},
		"/robots.txt":  {},
		"/health":      {},
		"/api/health":  {},
		"/auth/logout": {},
	}
)

// IsExcludedPath reports whether the request path is exempt from session
// handling.
func IsExcludedPath(path string) bool {
	if _, ok := excludedPaths[path]; ok {
		return true
	}
	for _, prefix := range excludedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// isAuthPath reports whether the path belongs to the auth flow itself.
// Redirect targets pointing back into the flow collapse to "/".
func isAuthPath(path string) bool {
	return path == "/auth" || strings.HasPrefix(path, "/auth/")
}
