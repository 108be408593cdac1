package cli

import "fmt"

// versionTemplate backs cobra's built-in --version flag with the extra
// commit/date/builder detail the teacher's version command prints.
func versionTemplate() string {
	return fmt.Sprintf("biql version %s\n  commit: %s\n  built:  %s\n  by:     %s\n",
		versionInfo.Version, versionInfo.Commit, versionInfo.Date, versionInfo.BuiltBy)
}
