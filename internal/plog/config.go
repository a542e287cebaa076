// Copyright 2020-2024 the Pinniped contributors. All Rights Reserved.
// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package plog

import (
	"encoding/json"
	"strconv"

	"k8s.io/component-base/logs"

	"go.eksjob.dev/internal/constable"
)

type LogFormat string

func (l *LogFormat) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `""`, `"cli"`:
		*l = FormatCLI
	case `"json"`:
		*l = FormatJSON
	case `"text"`:
		*l = FormatText
	default:
		return errInvalidLogFormat
	}
	return nil
}

const (
	FormatJSON LogFormat = "json"
	FormatText LogFormat = "text"
	// FormatCLI is the default for the eksjob binary: zap console encoding with human friendly times.
	FormatCLI LogFormat = "cli"

	errInvalidLogLevel  = constable.Error("invalid log level, valid choices are the empty string, info, debug, trace and all")
	errInvalidLogFormat = constable.Error("invalid log format, valid choices are the empty string, cli, json and text")
)

var _ json.Unmarshaler = func() *LogFormat {
	var f LogFormat
	return &f
}()

type LogSpec struct {
	Level  LogLevel  `json:"level,omitempty"`
	Format LogFormat `json:"format,omitempty"`
}

// ValidateAndSetLogLevelAndFormatGlobally reconfigures the global loggers used by eksjob
// and by the client-go code underneath it.  It is safe to call more than once.
func ValidateAndSetLogLevelAndFormatGlobally(spec LogSpec) error {
	klogLevel := klogLevelForPlogLevel(spec.Level)
	if klogLevel < 0 {
		return errInvalidLogLevel
	}

	// set the global log levels used by our code and the kube code underneath us
	if _, err := logs.GlogSetter(strconv.Itoa(int(klogLevel))); err != nil {
		panic(err) // programmer error
	}
	globalLevel.SetLevel(zapLevel(klogLevel))

	format := spec.Format
	switch format {
	case "":
		format = FormatCLI
	case FormatCLI, FormatJSON, FormatText:
	default:
		return errInvalidLogFormat
	}

	setGlobalLoggers(newLogr(stderrSink(format, klogLevel)))
	return nil
}
