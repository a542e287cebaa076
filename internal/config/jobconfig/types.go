// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package jobconfig

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"go.eksjob.dev/internal/plog"
)

// Config contains every knob of a single eksjob run.
type Config struct {
	// Region is the AWS region of the EKS cluster. AutoRegion resolves it from the AWS
	// environment and then from EC2 instance metadata.
	Region string `json:"region"`
	// ClusterName is the name of the EKS cluster as shown by `aws eks list-clusters`.
	ClusterName string `json:"clusterName"`
	// Namespace is where the Job is created.
	Namespace string `json:"namespace"`

	Job  JobSpec      `json:"job"`
	Wait WaitSpec     `json:"wait"`
	Log  plog.LogSpec `json:"log"`
}

// JobSpec describes the single Job that is submitted.
type JobSpec struct {
	// NamePrefix is suffixed with the submission time in unix seconds to name the Job.
	NamePrefix    string   `json:"namePrefix"`
	Image         string   `json:"image"`
	Command       []string `json:"command"`
	ContainerName string   `json:"containerName"`
	PodName       string   `json:"podName"`
	// TTLSecondsAfterFinished is how long the cluster keeps the finished Job and its pod around.
	TTLSecondsAfterFinished *int32 `json:"ttlSecondsAfterFinished"`
}

// WaitSpec controls the completion watcher.
type WaitSpec struct {
	// EventDelay is slept after every observed Job event.
	EventDelay *metav1.Duration `json:"eventDelay"`
	// ReconnectDelay is slept before the watch is re-issued after the server closed it.
	ReconnectDelay *metav1.Duration `json:"reconnectDelay"`
	// Timeout bounds the whole wait. Zero means wait forever.
	Timeout *metav1.Duration `json:"timeout"`
}
