// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package cabundle materializes a cluster CA bundle as a private temp file.
package cabundle

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	certutil "k8s.io/client-go/util/cert"

	"go.eksjob.dev/internal/constable"
)

const (
	ErrEmptyBundle = constable.Error("certificate authority data is empty")

	filePattern = "eksjob-ca-*.crt"
	filePerm    = fs.FileMode(0o600)
)

// File is a CA bundle on disk. The zero value is not usable, see Write.
type File struct {
	path string

	closeOnce sync.Once
	closeErr  error
}

type request struct {
	dir string
}

type Option func(*request)

// WithDir puts the file into dir instead of the system temp dir.
func WithDir(dir string) Option {
	return func(r *request) {
		r.dir = dir
	}
}

// Write decodes base64 caData, checks that it holds at least one PEM certificate
// and stores it in a uniquely named file readable only by the current user.
func Write(caData string, opts ...Option) (*File, error) {
	req := &request{}
	for _, opt := range opts {
		opt(req)
	}

	if caData == "" {
		return nil, ErrEmptyBundle
	}

	pemBytes, err := base64.StdEncoding.DecodeString(caData)
	if err != nil {
		return nil, fmt.Errorf("decode certificate authority data: %w", err)
	}

	if _, err := certutil.ParseCertsPEM(pemBytes); err != nil {
		return nil, fmt.Errorf("parse certificate authority data: %w", err)
	}

	f, err := os.CreateTemp(req.dir, filePattern)
	if err != nil {
		return nil, fmt.Errorf("create certificate authority file: %w", err)
	}
	file := &File{path: f.Name()}

	// CreateTemp already uses 0600 but be explicit about it
	if err := f.Chmod(filePerm); err != nil {
		_ = f.Close()
		_ = file.Close()
		return nil, fmt.Errorf("chmod certificate authority file: %w", err)
	}
	if _, err := f.Write(pemBytes); err != nil {
		_ = f.Close()
		_ = file.Close()
		return nil, fmt.Errorf("write certificate authority file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("close certificate authority file: %w", err)
	}

	return file, nil
}

func (f *File) Path() string {
	return f.path
}

// Close removes the file. It is safe to call more than once.
func (f *File) Close() error {
	f.closeOnce.Do(func() {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			f.closeErr = fmt.Errorf("remove certificate authority file: %w", err)
		}
	})
	return f.closeErr
}
