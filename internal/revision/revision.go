package revision

import "runtime/debug"

// Revision is the VCS revision the binary was built from, shortened to 7
// characters, or "unknown" when build info carries none.
var Revision = "unknown"

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if len(s.Value) > 7 {
				Revision = s.Value[:7]
			} else if s.Value != "" {
				Revision = s.Value
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if dirty && Revision != "unknown" {
		Revision += "-dirty"
	}
}
