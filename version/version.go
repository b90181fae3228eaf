package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

// Set at build time using -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
	GitBranch = ""
	BuildTime = ""
)

// ModulePath is the import path of this library, used to find its version
// among the dependencies of the running binary.
const ModulePath = "github.com/kbukum/composekit"

// Info describes the running application build and the composekit release it
// was built against.
type Info struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit"`
	GitBranch string    `json:"git_branch"`
	GoVersion string    `json:"go_version"`
	BuildDate time.Time `json:"build_date"`
	IsRelease bool      `json:"is_release"`
	IsDirty   bool      `json:"is_dirty"`
	Framework string    `json:"framework"`
}

// Get collects version information from the ldflags variables, falling back
// to the embedded build info.
func Get() Info {
	bi, _ := debug.ReadBuildInfo()
	return fromBuild(bi)
}

func fromBuild(bi *debug.BuildInfo) Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		GitBranch: GitBranch,
		IsRelease: Version != "dev" && !strings.Contains(Version, "dirty"),
		Framework: "(devel)",
	}
	if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
		info.BuildDate = t
	}

	if bi != nil {
		info.GoVersion = bi.GoVersion
		if bi.Main.Path == ModulePath && bi.Main.Version != "" {
			info.Framework = bi.Main.Version
		}
		for _, dep := range bi.Deps {
			if dep.Path == ModulePath {
				info.Framework = dep.Version
			}
		}
		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = shortCommit(setting.Value)
				}
			case "vcs.modified":
				info.IsDirty = setting.Value == "true"
			case "vcs.time":
				if info.BuildDate.IsZero() {
					if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
						info.BuildDate = t
					}
				}
			}
		}
	}
	return info
}

func shortCommit(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// Short returns "<version>[-<commit>][-dirty]".
func (i Info) Short() string {
	if i.GitCommit == "" {
		return i.Version
	}
	if i.IsDirty {
		return fmt.Sprintf("%s-%s-dirty", i.Version, i.GitCommit)
	}
	return fmt.Sprintf("%s-%s", i.Version, i.GitCommit)
}

// Full returns the short form plus feature branch and build date.
func (i Info) Full() string {
	parts := []string{i.Version}
	if i.GitCommit != "" {
		parts = append(parts, i.GitCommit)
	}
	if i.GitBranch != "" && i.GitBranch != "main" && i.GitBranch != "master" {
		parts = append(parts, i.GitBranch)
	}
	if i.IsDirty {
		parts = append(parts, "dirty")
	}
	s := strings.Join(parts, "-")
	if !i.BuildDate.IsZero() {
		s += fmt.Sprintf(" (built %s)", i.BuildDate.UTC().Format("2006-01-02T15:04:05Z"))
	}
	return s
}

// Fields returns the build info as structured log fields.
func (i Info) Fields() map[string]interface{} {
	return map[string]interface{}{
		"version":   i.Short(),
		"framework": i.Framework,
		"go":        i.GoVersion,
	}
}
