// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package workload

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/client-go/kubernetes"

	"go.eksjob.dev/internal/plog"
	"go.eksjob.dev/internal/runerror"
)

// LogResult is the output of the Job's first pod. PodFound is false when the Job had no pods left.
type LogResult struct {
	PodName  string
	Log      string
	PodFound bool
}

// LogFetcher reads the log of one container of a Job's pod.
type LogFetcher struct {
	client        kubernetes.Interface
	namespace     string
	containerName string
	log           plog.Logger
}

// NewLogFetcher returns a LogFetcher that reads containerName from pods in namespace.
func NewLogFetcher(client kubernetes.Interface, namespace, containerName string) *LogFetcher {
	return &LogFetcher{
		client:        client,
		namespace:     namespace,
		containerName: containerName,
		log:           plog.New().WithName("logs"),
	}
}

// Fetch returns the container log of the first pod labeled job-name=jobName, byte for byte.
// Having no such pod is not an error. Every failure is a *runerror.LogFetchError.
func (f *LogFetcher) Fetch(ctx context.Context, jobName string) (*LogResult, error) {
	selector := labels.SelectorFromSet(labels.Set{JobNameLabel: jobName}).String()

	pods, err := f.client.CoreV1().Pods(f.namespace).List(ctx, metav1.ListOptions{LabelSelector: selector})
	if err != nil {
		return nil, &runerror.LogFetchError{Err: fmt.Errorf("list pods with %q: %w", selector, err)}
	}

	if len(pods.Items) == 0 {
		f.log.Warning("no pods found for job", "job", jobName, "namespace", f.namespace)
		return &LogResult{PodFound: false}, nil
	}

	pod := pods.Items[0].Name
	f.log.Debug("reading pod log", "job", jobName, "pod", pod, "container", f.containerName, "podCount", len(pods.Items))

	raw, err := f.client.CoreV1().Pods(f.namespace).GetLogs(pod, &corev1.PodLogOptions{Container: f.containerName}).Do(ctx).Raw()
	if err != nil {
		return nil, &runerror.LogFetchError{Err: fmt.Errorf("get log of container %q in pod %q: %w", f.containerName, pod, err)}
	}

	return &LogResult{PodName: pod, Log: string(raw), PodFound: true}, nil
}
