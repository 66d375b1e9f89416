// Package version reports the build of the site server.
//
//	version.Revision  // "a3f8c2d1" or "dev"
//	version.Full()    // "anlac/a3f8c2d1"
package version

import "runtime/debug"

// AppName prefixes version strings and the backend User-Agent.
const AppName = "anlac"

// revisionOverride is set with -ldflags "-X .../pkg/version.revisionOverride=..."
// for image builds without a .git directory.
var revisionOverride string

// Revision is the short VCS revision, or "dev" under go test and non-git builds.
var Revision = resolveRevision(revisionOverride, debug.ReadBuildInfo)

func resolveRevision(override string, read func() (*debug.BuildInfo, bool)) string {
	if override != "" {
		return short(override)
	}
	info, ok := read()
	if !ok {
		return "dev"
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return short(s.Value)
		}
	}
	return "dev"
}

func short(rev string) string {
	if len(rev) > 8 {
		return rev[:8]
	}
	return rev
}

// Full returns "anlac/<revision>".
func Full() string {
	return AppName + "/" + Revision
}
