// Copyright 2020-2022 the Pinniped contributors. All Rights Reserved.
// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package plog

import (
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/duration"
	"k8s.io/klog/v2"
	"k8s.io/klog/v2/textlogger"
)

// sinkConfig describes one destination for log lines.
type sinkConfig struct {
	format    LogFormat
	out       zapcore.WriteSyncer
	level     zapcore.LevelEnabler
	klogLevel klog.Level // only read by FormatText

	// optional, used by tests
	clock        zapcore.Clock
	encodeCaller zapcore.CallerEncoder
	stacktrace   zapcore.LevelEnabler
}

// newLogr builds the logr.Logger for c and the func that flushes it.
func newLogr(c sinkConfig) (logr.Logger, func()) {
	flush := func() { _ = c.out.Sync() }

	if c.format == FormatText {
		return textlogger.NewLogger(textlogger.NewConfig(textlogger.Verbosity(int(c.klogLevel)), textlogger.Output(c.out))), flush
	}

	stacktrace := c.stacktrace
	if stacktrace == nil {
		// error logs carry a stack only when tracing, which is checked against the global level on every write
		stacktrace = LevelTrace
	}
	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(stacktrace), zap.ErrorOutput(c.out)}
	if c.clock != nil {
		opts = append(opts, zap.WithClock(c.clock))
	}

	log := zap.New(zapcore.NewCore(newEncoder(c), c.out, c.level), opts...)
	return zapr.NewLogger(log), flush
}

func newEncoder(c sinkConfig) zapcore.Encoder {
	config := zapcore.EncoderConfig{
		MessageKey:    "message",
		LevelKey:      "level",
		TimeKey:       "timestamp",
		NameKey:       "logger",
		CallerKey:     "caller",
		FunctionKey:   zapcore.OmitKey, // included in caller
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   levelEncoder,
		// same microsecond precision as klog
		EncodeTime:       zapcore.TimeEncoderOfLayout(metav1.RFC3339Micro),
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeCaller:     callerEncoder,
		ConsoleSeparator: "  ",
	}

	if c.format == FormatJSON {
		if c.encodeCaller != nil {
			config.EncodeCaller = c.encodeCaller
		}
		return zapcore.NewJSONEncoder(config)
	}

	// FormatCLI: a person reads this on a terminal
	config.LevelKey = zapcore.OmitKey
	config.EncodeCaller = zapcore.ShortCallerEncoder
	config.EncodeTime = humanTimeEncoder
	config.EncodeDuration = humanDurationEncoder
	if c.encodeCaller != nil {
		config.EncodeCaller = c.encodeCaller
	}
	return zapcore.NewConsoleEncoder(config)
}

// zapLevel turns a klog verbosity into the matching (negative) zap level.
func zapLevel(klogLevel klog.Level) zapcore.Level {
	return zapcore.Level(-klogLevel) //nolint:gosec // klogLevel is within [0,108]
}

func levelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	plogLevel := zapLevelToPlogLevel(l)
	if len(plogLevel) == 0 {
		return // zap falls back to its own level name
	}
	enc.AppendString(string(plogLevel))
}

func zapLevelToPlogLevel(l zapcore.Level) LogLevel {
	if l > 0 {
		// only error is ever emitted through logr
		return LogLevel(l.String())
	}

	switch -l {
	case KlogLevelInfo, KlogLevelInfo + 1:
		return LevelInfo
	case KlogLevelDebug, KlogLevelDebug + 1:
		return LevelDebug
	case KlogLevelTrace, KlogLevelTrace + 1:
		return LevelTrace
	}
	if -l >= KlogLevelAll {
		return LevelAll
	}
	return "" // level 0 is shared by warnings and Always, which are told apart by the warning key
}

func callerEncoder(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(caller.String() + funcEncoder(caller))
}

func funcEncoder(caller zapcore.EntryCaller) string {
	funcName := caller.Function
	if idx := strings.LastIndexByte(funcName, '/'); idx != -1 {
		funcName = funcName[idx+1:]
	}
	return "$" + funcName
}

func humanDurationEncoder(d time.Duration, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(duration.HumanDuration(d))
}

func humanTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Local().Format(time.RFC1123))
}
