// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package workload

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	kubefake "k8s.io/client-go/kubernetes/fake"
	coretesting "k8s.io/client-go/testing"

	"go.eksjob.dev/internal/kubeclient"
	"go.eksjob.dev/internal/runerror"
	"go.eksjob.dev/internal/testutil/fakekubeapi"
)

func jobPod(name, jobName string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: "batch",
			Labels:    map[string]string{JobNameLabel: jobName},
		},
	}
}

func TestFetchNoPods(t *testing.T) {
	// a pod of some other job must not be picked up
	client := kubefake.NewSimpleClientset(jobPod("calculator-job-1-abcde", "calculator-job-1"))

	result, err := NewLogFetcher(client, "batch", "calculator-container").Fetch(context.Background(), testJobName)
	require.NoError(t, err)
	require.Equal(t, &LogResult{PodFound: false}, result)

	require.Len(t, client.Actions(), 1)
	listAction, ok := client.Actions()[0].(coretesting.ListActionImpl)
	require.True(t, ok)
	require.Equal(t, "job-name=calculator-job-1700000000", listAction.GetListRestrictions().Labels.String())
}

func TestFetchListError(t *testing.T) {
	client := kubefake.NewSimpleClientset()
	client.PrependReactor("list", "pods", func(action coretesting.Action) (bool, runtime.Object, error) {
		return true, nil, apierrors.NewUnauthorized("token expired")
	})

	result, err := NewLogFetcher(client, "batch", "calculator-container").Fetch(context.Background(), testJobName)
	require.EqualError(t, err, `could not fetch job logs: list pods with "job-name=calculator-job-1700000000": token expired`)
	require.Nil(t, result)
	require.True(t, apierrors.IsUnauthorized(err))
	require.Equal(t, runerror.ExitLogFetch, runerror.ExitCode(err))
}

func TestFetchFromAPIServer(t *testing.T) {
	tests := []struct {
		name       string
		resources  map[string]metav1.Object
		logs       map[string]string
		wantResult *LogResult
		wantErr    string
	}{
		{
			name: "log is returned byte for byte",
			resources: map[string]metav1.Object{
				"/api/v1/namespaces/batch/pods/calculator-job-1700000000-x7k2p": jobPod("calculator-job-1700000000-x7k2p", testJobName),
			},
			logs: map[string]string{
				"/api/v1/namespaces/batch/pods/calculator-job-1700000000-x7k2p/log": "17\n",
			},
			wantResult: &LogResult{PodName: "calculator-job-1700000000-x7k2p", Log: "17\n", PodFound: true},
		},
		{
			name: "first pod wins",
			resources: map[string]metav1.Object{
				"/api/v1/namespaces/batch/pods/calculator-job-1700000000-aaaaa": jobPod("calculator-job-1700000000-aaaaa", testJobName),
				"/api/v1/namespaces/batch/pods/calculator-job-1700000000-bbbbb": jobPod("calculator-job-1700000000-bbbbb", testJobName),
			},
			logs: map[string]string{
				"/api/v1/namespaces/batch/pods/calculator-job-1700000000-aaaaa/log": "first\n",
				"/api/v1/namespaces/batch/pods/calculator-job-1700000000-bbbbb/log": "second\n",
			},
			wantResult: &LogResult{PodName: "calculator-job-1700000000-aaaaa", Log: "first\n", PodFound: true},
		},
		{
			name:       "empty log",
			resources:  map[string]metav1.Object{"/api/v1/namespaces/batch/pods/p": jobPod("p", testJobName)},
			logs:       map[string]string{"/api/v1/namespaces/batch/pods/p/log": ""},
			wantResult: &LogResult{PodName: "p", Log: "", PodFound: true},
		},
		{
			name:      "pod already gone when reading its log",
			resources: map[string]metav1.Object{"/api/v1/namespaces/batch/pods/p": jobPod("p", testJobName)},
			wantErr:   `could not fetch job logs: get log of container "calculator-container" in pod "p": the server could not find the requested resource (get pods p)`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, restConfig := fakekubeapi.Start(t, tt.resources, fakekubeapi.WithPodLogs(tt.logs))
			client, err := kubeclient.New(kubeclient.WithConfig(restConfig))
			require.NoError(t, err)

			result, err := NewLogFetcher(client.Kubernetes, "batch", "calculator-container").Fetch(context.Background(), testJobName)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				require.True(t, apierrors.IsNotFound(err))
				var logErr *runerror.LogFetchError
				require.True(t, errors.As(err, &logErr))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantResult, result)

			requests := server.Requests()
			require.Equal(t, "GET /api/v1/namespaces/batch/pods?labelSelector=job-name%3Dcalculator-job-1700000000", requests[0])
			require.Equal(t, "GET /api/v1/namespaces/batch/pods/"+tt.wantResult.PodName+"/log?container=calculator-container", requests[1])
		})
	}
}
