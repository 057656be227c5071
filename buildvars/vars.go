// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package buildvars contains variables injected at build time and the
// logic that fills the gaps from the runtime build info.
package buildvars

import "runtime/debug"

// ModulePath is the module whose version is reported.
const ModulePath = "github.com/kaankacar/soroban-trader-skill-sub000"

// Set at link time, e.g.
// -ldflags "-X github.com/kaankacar/soroban-trader-skill-sub000/buildvars.Version=1.2.3".
// All three are empty for local builds.
var (
	Version string
	Commit  string
	Date    string
)

// Info is the resolved build identity of the running binary.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date,omitempty"`
}

// String renders "version (commit) built: date", omitting unknown parts.
func (i Info) String() string {
	out := i.Version
	if i.Commit != "" && i.Commit != "dev" {
		out += " (" + i.Commit + ")"
	}
	if i.Date != "" {
		out += " built: " + i.Date
	}
	return out
}

// Resolve prefers link-time values, then the module version and VCS
// settings from info. A nil info reads the runtime build info.
func Resolve(info *debug.BuildInfo) Info {
	out := Info{Version: orDefault(Version, "dev"), Commit: orDefault(Commit, "dev"), Date: Date}
	if info == nil {
		if local, ok := debug.ReadBuildInfo(); ok {
			info = local
		}
	}
	if info == nil {
		return out
	}

	if Version == "" {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			out.Version = v
		} else {
			for _, dep := range info.Deps {
				if dep.Path == ModulePath && dep.Version != "" {
					out.Version = dep.Version
					break
				}
			}
		}
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == "" && s.Value != "" {
				out.Commit = s.Value
			}
		case "vcs.time":
			if Date == "" && s.Value != "" {
				out.Date = s.Value
			}
		}
	}

	// Fall back to the commit so support can still identify the build.
	if out.Version == "dev" && out.Commit != "dev" {
		out.Version = out.Commit
	}
	return out
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
