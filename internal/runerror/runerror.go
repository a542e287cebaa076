// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package runerror defines the closed set of failures an eksjob run can end with.
// Each stage of a run wraps its failures in exactly one of these types so that
// callers can tell them apart with errors.As and map them to an exit status.
package runerror

import (
	"errors"
)

// Process exit statuses. Every failure kind has its own status so that scripts
// calling eksjob can detect which stage failed.
const (
	ExitOK         = 0
	ExitFailure    = 1 // usage, configuration and anything not attributable to a stage
	ExitCredential = 2
	ExitSubmission = 3
	ExitWatch      = 4
	ExitLogFetch   = 5
)

// CredentialError is returned when the cluster endpoint, CA bundle or bearer token cannot be obtained.
type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string { return "could not resolve cluster credentials: " + e.Err.Error() }
func (e *CredentialError) Unwrap() error { return e.Err }
func (e *CredentialError) ExitCode() int { return ExitCredential }

// SubmissionError is returned when the Job cannot be created.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string { return "could not submit job: " + e.Err.Error() }
func (e *SubmissionError) Unwrap() error { return e.Err }
func (e *SubmissionError) ExitCode() int { return ExitSubmission }

// WatchError is returned when waiting for the Job ends without the Job succeeding.
type WatchError struct {
	Err error
}

func (e *WatchError) Error() string { return "could not wait for job completion: " + e.Err.Error() }
func (e *WatchError) Unwrap() error { return e.Err }
func (e *WatchError) ExitCode() int { return ExitWatch }

// LogFetchError is returned when the pods of a completed Job cannot be listed or their log cannot be read.
type LogFetchError struct {
	Err error
}

func (e *LogFetchError) Error() string { return "could not fetch job logs: " + e.Err.Error() }
func (e *LogFetchError) Unwrap() error { return e.Err }
func (e *LogFetchError) ExitCode() int { return ExitLogFetch }

type exitCoder interface {
	ExitCode() int
}

var (
	_ exitCoder = (*CredentialError)(nil)
	_ exitCoder = (*SubmissionError)(nil)
	_ exitCoder = (*WatchError)(nil)
	_ exitCoder = (*LogFetchError)(nil)
)

// ExitCode maps err to the process exit status of the stage that produced it.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var coder exitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return ExitFailure
}

// Stage names the stage that produced err, for use as a log value.
func Stage(err error) string {
	switch ExitCode(err) {
	case ExitOK:
		return ""
	case ExitCredential:
		return "credentials"
	case ExitSubmission:
		return "submission"
	case ExitWatch:
		return "watch"
	case ExitLogFetch:
		return "logs"
	default:
		return "setup"
	}
}
