// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package awsconfig

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/require"
)

// isolate keeps the developer's own AWS configuration out of the test.
func isolate(t *testing.T) {
	t.Helper()

	empty := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))

	t.Setenv("AWS_CONFIG_FILE", empty)
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", empty)
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "")
}

func newFakeIMDS(t *testing.T, region string) (*httptest.Server, *int) {
	t.Helper()

	regionCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/latest/api/token":
			w.Header().Set("X-Aws-Ec2-Metadata-Token-Ttl-Seconds", "21600")
			_, _ = w.Write([]byte("fake-imds-token"))
		case r.Method == http.MethodGet && r.URL.Path == "/latest/meta-data/placement/region":
			regionCalls++
			_, _ = w.Write([]byte(region))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server, &regionCalls
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name            string
		region          string
		envRegion       string
		wantRegion      string
		wantIMDSQueried bool
	}{
		{
			name:       "explicit region wins",
			region:     "us-east-1",
			envRegion:  "eu-west-1",
			wantRegion: "us-east-1",
		},
		{
			name:       "region from the environment",
			envRegion:  "ap-southeast-2",
			wantRegion: "ap-southeast-2",
		},
		{
			name:            "falls back to instance metadata",
			wantRegion:      "ca-central-1",
			wantIMDSQueried: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			server, regionCalls := newFakeIMDS(t, "ca-central-1")
			t.Setenv("AWS_EC2_METADATA_SERVICE_ENDPOINT", server.URL)
			t.Setenv("AWS_REGION", tt.envRegion)

			cfg, err := Load(context.Background(), tt.region)
			require.NoError(t, err)
			require.Equal(t, tt.wantRegion, cfg.Region)
			require.Equal(t, tt.wantIMDSQueried, *regionCalls > 0)
			require.IsType(t, aws.NopRetryer{}, cfg.Retryer())
		})
	}
}

func TestLoadIMDSFailure(t *testing.T) {
	isolate(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	t.Cleanup(server.Close)
	t.Setenv("AWS_EC2_METADATA_SERVICE_ENDPOINT", server.URL)

	_, err := Load(context.Background(), "")
	require.ErrorContains(t, err, "error getting region using imds: ")
}
