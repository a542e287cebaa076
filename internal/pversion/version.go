// Copyright 2023 the Pinniped contributors. All Rights Reserved.
// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pversion reports what code an eksjob binary was built from.
package pversion

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/coreos/go-semver/semver"
	apimachineryversion "k8s.io/apimachinery/pkg/version"
	k8sstrings "k8s.io/utils/strings"
)

// readBuildInfo is meant to be overwritten by tests.
//
//nolint:gochecknoglobals // these are swapped during unit tests.
var readBuildInfo = debug.ReadBuildInfo

// gitVersion is set using a linker flag
// -ldflags "-X 'go.eksjob.dev/internal/pversion.gitVersion=v9.8.7'"
// (or set for unit tests).
//
//nolint:gochecknoglobals // these are swapped during unit tests.
var gitVersion string

// Get returns the overall codebase version, using the linker provided git version when it is
// valid semver and the VCS stamps embedded by the go toolchain otherwise.
func Get() apimachineryversion.Info {
	info := apimachineryversion.Info{
		Major:        "0",
		Minor:        "0",
		GitVersion:   "v0.0.0",
		GitTreeState: "dirty",
		GoVersion:    runtime.Version(),
		Compiler:     runtime.Compiler,
		Platform:     fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}

	if v, err := semver.NewVersion(strings.TrimPrefix(gitVersion, "v")); err == nil && v != nil {
		info.GitVersion = gitVersion
		info.Major = fmt.Sprintf("%d", v.Major)
		info.Minor = fmt.Sprintf("%d", v.Minor)
	}

	applyBuildSettings(&info)

	if info.GitVersion == "v0.0.0" && info.GitCommit != "" {
		info.GitVersion += fmt.Sprintf("-%s-%s",
			k8sstrings.ShortenString(info.GitCommit, 8),
			info.GitTreeState)
	}

	return info
}

func applyBuildSettings(info *apimachineryversion.Info) {
	buildInfo, ok := readBuildInfo()
	if !ok {
		return
	}
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.GitCommit = setting.Value
		case "vcs.time":
			info.BuildDate = setting.Value
		case "vcs.modified":
			if setting.Value == "false" {
				info.GitTreeState = "clean"
			}
		}
	}
}

// UserAgent is sent with every Kubernetes API request, e.g. "eksjob/v1.2.3 (linux/amd64)".
func UserAgent() string {
	info := Get()
	return fmt.Sprintf("eksjob/%s (%s)", info.GitVersion, info.Platform)
}
