// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package workload submits the calculator Job, waits for it to finish and reads its output.
package workload

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"time"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/utils/ptr"

	"go.eksjob.dev/internal/plog"
	"go.eksjob.dev/internal/runerror"
)

const (
	// JobNameLabel is put on every pod of a Job by the Job controller.
	JobNameLabel = "job-name"

	ManagedByLabel = "app.kubernetes.io/managed-by"
	ManagedByValue = "eksjob"
	RunIDLabel     = "eksjob.dev/run-id"
)

// WorkloadSpec is the declarative description of the single Job of a run.
type WorkloadSpec struct {
	Name          string
	Namespace     string
	Image         string
	Command       []string
	ContainerName string
	PodName       string

	TTLSecondsAfterFinished int32
	BackoffLimit            int32

	// Labels are copied onto the Job and its pod template.
	Labels map[string]string
}

// NewJobName returns "<prefix>-<unix seconds of now>".
func NewJobName(prefix string, now time.Time) string {
	return prefix + "-" + strconv.FormatInt(now.Unix(), 10)
}

// BuildJob turns spec into a batch/v1 Job that runs one container once and never restarts it.
func BuildJob(spec WorkloadSpec) *batchv1.Job {
	labels := maps.Clone(spec.Labels)
	if labels == nil {
		labels = map[string]string{}
	}
	labels[ManagedByLabel] = ManagedByValue

	return &batchv1.Job{
		TypeMeta: metav1.TypeMeta{
			APIVersion: batchv1.SchemeGroupVersion.String(),
			Kind:       "Job",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      spec.Name,
			Namespace: spec.Namespace,
			Labels:    labels,
		},
		Spec: batchv1.JobSpec{
			TTLSecondsAfterFinished: ptr.To(spec.TTLSecondsAfterFinished),
			BackoffLimit:            ptr.To(spec.BackoffLimit),
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Name:   spec.PodName,
					Labels: maps.Clone(labels),
				},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{
						{
							Name:    spec.ContainerName,
							Image:   spec.Image,
							Command: append([]string(nil), spec.Command...),
						},
					},
					RestartPolicy: corev1.RestartPolicyNever,
				},
			},
		},
	}
}

// Submitter creates Jobs in one namespace.
type Submitter struct {
	client    kubernetes.Interface
	namespace string
	log       plog.Logger
}

// NewSubmitter returns a Submitter that creates Jobs in namespace.
func NewSubmitter(client kubernetes.Interface, namespace string) *Submitter {
	return &Submitter{client: client, namespace: namespace, log: plog.New().WithName("submitter")}
}

// Submit issues exactly one create call for job. Every failure is a *runerror.SubmissionError.
func (s *Submitter) Submit(ctx context.Context, job *batchv1.Job) (*batchv1.Job, error) {
	created, err := s.client.BatchV1().Jobs(s.namespace).Create(ctx, job, metav1.CreateOptions{})
	if err != nil {
		return nil, &runerror.SubmissionError{Err: fmt.Errorf("create job %q in namespace %q: %w", job.Name, s.namespace, err)}
	}

	s.log.Info("job created", "job", created.Name, "namespace", created.Namespace, "uid", created.UID)
	return created, nil
}
