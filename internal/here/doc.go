// Copyright 2020 VMware, Inc.
// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package here formats multi-line string literals for CLI help text and test fixtures.
package here

import (
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
)

const (
	tab        = "\t"
	fourSpaces = "    "
)

// Doc strips the common indentation of s and turns the remaining tabs into four spaces.
func Doc(s string) string {
	return strings.ReplaceAll(heredoc.Doc(s), tab, fourSpaces)
}

// Docf is Doc followed by fmt.Sprintf.
func Docf(raw string, args ...interface{}) string {
	return strings.ReplaceAll(heredoc.Docf(raw, args...), tab, fourSpaces)
}
