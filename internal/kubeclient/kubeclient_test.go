// Copyright 2021 the Pinniped contributors. All Rights Reserved.
// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package kubeclient

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	restclient "k8s.io/client-go/rest"

	"go.eksjob.dev/internal/testutil/fakekubeapi"
)

type headerRecorder struct {
	mu      sync.Mutex
	headers []http.Header
	rt      http.RoundTripper
}

func (h *headerRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	h.mu.Lock()
	h.headers = append(h.headers, req.Header.Clone())
	h.mu.Unlock()
	return h.rt.RoundTrip(req)
}

func TestKubeclient(t *testing.T) {
	goodPod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "good-pod",
			Namespace: "good-namespace",
			Labels:    map[string]string{"job-name": "calculator-job-1"},
		},
	}

	server, restConfig := fakekubeapi.Start(t, map[string]metav1.Object{
		"/api/v1/namespaces/good-namespace/pods/good-pod": goodPod,
	})

	caFile := filepath.Join(t.TempDir(), "ca.crt")
	require.NoError(t, os.WriteFile(caFile, restConfig.CAData, 0o600))

	recorder := &headerRecorder{}
	client, err := New(
		WithCredentials(server.URL, "some-bearer-token", caFile),
		WithUserAgent("eksjob-test/1.2.3"),
		WithTransportWrapper(func(rt http.RoundTripper) http.RoundTripper {
			recorder.rt = rt
			return recorder
		}),
	)
	require.NoError(t, err)
	require.Equal(t, "application/json", client.JSONConfig.ContentType)
	require.Equal(t, "application/json", client.JSONConfig.AcceptContentTypes)

	ctx := context.Background()

	pod, err := client.Kubernetes.CoreV1().Pods("good-namespace").Get(ctx, "good-pod", metav1.GetOptions{})
	require.NoError(t, err)
	require.Equal(t, "good-pod", pod.Name)

	pods, err := client.Kubernetes.CoreV1().Pods("good-namespace").List(ctx, metav1.ListOptions{LabelSelector: "job-name=calculator-job-1"})
	require.NoError(t, err)
	require.Len(t, pods.Items, 1)

	_, err = client.Kubernetes.CoreV1().Pods("good-namespace").Get(ctx, "missing-pod", metav1.GetOptions{})
	require.True(t, apierrors.IsNotFound(err), "expected not found, got %v", err)

	require.Equal(t, []string{
		"GET /api/v1/namespaces/good-namespace/pods/good-pod",
		"GET /api/v1/namespaces/good-namespace/pods?labelSelector=job-name%3Dcalculator-job-1",
		"GET /api/v1/namespaces/good-namespace/pods/missing-pod",
	}, server.Requests())

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	require.Len(t, recorder.headers, 3)
	for _, h := range recorder.headers {
		require.Equal(t, "Bearer some-bearer-token", h.Get("Authorization"))
		require.Equal(t, "eksjob-test/1.2.3", h.Get("User-Agent"))
	}
}

func TestNewDefaultsUserAgent(t *testing.T) {
	_, restConfig := fakekubeapi.Start(t, nil)

	client, err := New(WithConfig(restConfig))
	require.NoError(t, err)
	require.Regexp(t, `^eksjob/\S+ \(\S+/\S+\)$`, client.JSONConfig.UserAgent)

	// the input config is never mutated
	require.Empty(t, restConfig.UserAgent)
	require.Empty(t, restConfig.ContentType)
}

func TestNewRejectsUnsafeConfig(t *testing.T) {
	_, restConfig := fakekubeapi.Start(t, nil)

	garbledCA := filepath.Join(t.TempDir(), "garbled.crt")
	require.NoError(t, os.WriteFile(garbledCA, []byte("not a certificate"), 0o600))

	tests := []struct {
		name      string
		opts      []Option
		wantErr   string
		wantErrIs error
	}{
		{
			name:      "no config",
			wantErr:   "no client config was provided",
			wantErrIs: ErrNoConfig,
		},
		{
			name:      "empty endpoint",
			opts:      []Option{WithCredentials("", "token", garbledCA)},
			wantErr:   "could not create secure client config: API server endpoint is empty",
			wantErrIs: ErrEmptyHost,
		},
		{
			name:      "plain http",
			opts:      []Option{WithCredentials("http://127.0.0.1:1234", "token", garbledCA)},
			wantErr:   "could not create secure client config: refusing to send credentials to an API server that is not served over https",
			wantErrIs: ErrNotHTTPS,
		},
		{
			name: "insecure",
			opts: []Option{WithConfig(&restclient.Config{
				Host:            restConfig.Host,
				TLSClientConfig: restclient.TLSClientConfig{Insecure: true},
			})},
			wantErr:   "could not create secure client config: refusing to talk to the API server without verifying its certificate",
			wantErrIs: ErrInsecure,
		},
		{
			name:      "no CA",
			opts:      []Option{WithConfig(&restclient.Config{Host: restConfig.Host, BearerToken: "token"})},
			wantErr:   "could not create secure client config: refusing to talk to the API server without a certificate authority",
			wantErrIs: ErrNoCA,
		},
		{
			name:    "missing CA file",
			opts:    []Option{WithCredentials(restConfig.Host, "token", filepath.Join(t.TempDir(), "missing.crt"))},
			wantErr: "could not create secure client config: invalid TLS config: ",
		},
		{
			name:    "garbled CA file",
			opts:    []Option{WithCredentials(restConfig.Host, "token", garbledCA)},
			wantErr: "could not create secure client config: invalid TLS config: ",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.opts...)
			require.ErrorContains(t, err, tt.wantErr)
			require.Nil(t, client)
			if tt.wantErrIs != nil {
				require.ErrorIs(t, err, tt.wantErrIs)
			}
		})
	}
}
