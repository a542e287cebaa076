// Copyright 2020 the Pinniped contributors. All Rights Reserved.
// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package constable provides an error type that can be declared as a constant,
// which makes it suitable for sentinel errors compared with errors.Is.
package constable

var _ error = Error("")

// Error is a string that satisfies the error interface.
type Error string

func (e Error) Error() string {
	return string(e)
}

// Is reports whether target is the same constant error. It lets wrapped
// constants match through fmt.Errorf("...: %w", ...) chains.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	return ok && t == e
}
