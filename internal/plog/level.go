// Copyright 2020 the Pinniped contributors. All Rights Reserved.
// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package plog

import (
	"go.uber.org/zap/zapcore"
	"k8s.io/klog/v2"
)

// LogLevel is an enum that controls verbosity of logs.
// Valid values in order of increasing verbosity are leaving it unset, info, debug, trace and all.
type LogLevel string

var _ zapcore.LevelEnabler = LevelWarning

// Enabled lets a LogLevel gate zap features such as stack traces on the global plog level.
func (l LogLevel) Enabled(_ zapcore.Level) bool {
	return Enabled(l) // this basically says "log if the global plog level is l or greater"
}

const (
	// LevelWarning (i.e. leaving the log level unset) maps to klog log level 0.
	LevelWarning LogLevel = ""
	// LevelInfo maps to klog log level 2.
	LevelInfo LogLevel = "info"
	// LevelDebug maps to klog log level 4.
	LevelDebug LogLevel = "debug"
	// LevelTrace maps to klog log level 6.
	LevelTrace LogLevel = "trace"
	// LevelAll maps to klog log level 108 (conceptually it is log level 8).
	LevelAll LogLevel = "all"
)

const (
	KlogLevelWarning = iota * 2
	KlogLevelInfo
	KlogLevelDebug
	KlogLevelTrace
	KlogLevelAll
)

// AllLevels is the list of valid levels in order of increasing verbosity.
var AllLevels = []LogLevel{LevelWarning, LevelInfo, LevelDebug, LevelTrace, LevelAll} //nolint:gochecknoglobals

// Enabled returns whether the provided plog level is enabled, i.e., whether print statements at the
// provided level will show up.
func Enabled(level LogLevel) bool {
	l := klogLevelForPlogLevel(level)
	// check that both our global level and the klog global level agree that the plog level is enabled
	// klog levels are inverted when zap handles them
	return globalLevel.Enabled(zapLevel(l)) && klog.V(l).Enabled()
}

func klogLevelForPlogLevel(plogLevel LogLevel) klog.Level {
	switch plogLevel {
	case LevelWarning:
		return KlogLevelWarning // unset means minimal logs (Error and Warning)
	case LevelInfo:
		return KlogLevelInfo
	case LevelDebug:
		return KlogLevelDebug
	case LevelTrace:
		return KlogLevelTrace
	case LevelAll:
		return KlogLevelAll + 100 // make all really mean all
	default:
		return -1
	}
}
