// Copyright 2020-2024 the Pinniped contributors. All Rights Reserved.
// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package plog

import (
	"bytes"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// testTime is the timestamp of every line written by a test logger.
var testTime = time.Date(2099, time.August, 8, 13, 57, 36, 123456789, time.UTC) //nolint:gochecknoglobals

// TestLogger returns a Logger that writes JSON lines at every level to the returned buffer.
// Lines carry a fixed timestamp and callers end in "<line>" so tests can compare them.
func TestLogger(t *testing.T) (Logger, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	return testLogger(t, &buf, FormatJSON), &buf
}

// TestConsoleLogger is TestLogger with the encoding the CLI writes to a terminal.
func TestConsoleLogger(t *testing.T, w io.Writer) Logger {
	t.Helper()

	return testLogger(t, w, FormatCLI)
}

func testLogger(t *testing.T, w io.Writer, format LogFormat) Logger {
	t.Helper()

	log, _ := newLogr(sinkConfig{
		format:       format,
		out:          zapcore.Lock(zapcore.AddSync(w)),
		level:        zap.NewAtomicLevelAt(math.MinInt8),
		clock:        fixedClock(testTime),
		encodeCaller: testCallerEncoder(format),
		stacktrace:   zap.LevelEnablerFunc(func(zapcore.Level) bool { return false }),
	})

	return New().withLogrMod(func(l logr.Logger) logr.Logger {
		return l.WithSink(log.GetSink())
	})
}

func testCallerEncoder(format LogFormat) zapcore.CallerEncoder {
	return func(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		trimmed := caller.TrimmedPath()
		if idx := strings.LastIndexByte(trimmed, ':'); idx != -1 {
			trimmed = trimmed[:idx+1] + "<line>"
		}
		if format == FormatJSON {
			trimmed += funcEncoder(caller)
		}
		enc.AppendString(trimmed)
	}
}

var _ zapcore.Clock = fixedClock{}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

func (fixedClock) NewTicker(d time.Duration) *time.Ticker { return time.NewTicker(d) }
