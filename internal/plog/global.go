// Copyright 2020-2022 the Pinniped contributors. All Rights Reserved.
// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package plog

import (
	"os"

	"github.com/go-logr/logr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"k8s.io/component-base/logs"
	"k8s.io/klog/v2"
)

//nolint:gochecknoglobals
var (
	// set once at init and again after the config is read, before any other goroutine logs
	globalLevel  = zap.NewAtomicLevelAt(0)
	globalLogger logr.Logger
	globalFlush  func()
)

//nolint:gochecknoinits
func init() {
	// only warnings and errors reach stderr until the config says otherwise
	setGlobalLoggers(newLogr(stderrSink(FormatCLI, KlogLevelWarning)))
}

func stderrSink(format LogFormat, klogLevel klog.Level) sinkConfig {
	return sinkConfig{
		format:    format,
		out:       zapcore.Lock(os.Stderr),
		level:     globalLevel,
		klogLevel: klogLevel,
	}
}

// Setup initializes klog and returns a func that flushes all buffered logs.  Call it once from main.
func Setup() func() {
	logs.InitLogs()
	return func() {
		logs.FlushLogs()
		globalFlush()
	}
}

// setGlobalLoggers points both plog and klog (and thus client-go) at log.
func setGlobalLoggers(log logr.Logger, flush func()) {
	klog.SetLoggerWithOptions(log, klog.ContextualLogger(true), klog.FlushLogger(flush))
	globalLogger = log
	globalFlush = flush
}
