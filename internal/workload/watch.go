// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package workload

import (
	"context"
	"fmt"
	"time"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/fields"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/kubernetes"
	"k8s.io/utils/clock"

	"go.eksjob.dev/internal/constable"
	"go.eksjob.dev/internal/plog"
	"go.eksjob.dev/internal/runerror"
)

const (
	ErrJobFailed   = constable.Error("job failed")
	ErrJobDeleted  = constable.Error("job was deleted before it completed")
	ErrWaitTimeout = constable.Error("timed out waiting for the job to complete")
)

// State is where a Job is in its lifecycle as far as the watcher is concerned.
type State int

const (
	StateWaiting State = iota
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "Waiting"
	case StateDone:
		return "Done"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Observe classifies one snapshot of a Job's status. Any succeeded pod means done.
func Observe(job *batchv1.Job) (State, string) {
	if job.Status.Succeeded > 0 {
		return StateDone, ""
	}
	for _, cond := range job.Status.Conditions {
		if cond.Type == batchv1.JobFailed && cond.Status == corev1.ConditionTrue {
			msg := cond.Reason
			if cond.Message != "" {
				msg += ": " + cond.Message
			}
			return StateFailed, msg
		}
	}
	return StateWaiting, ""
}

// WaitConfig tunes the Watcher.
type WaitConfig struct {
	// EventDelay is slept between observed events of the Job.
	EventDelay time.Duration
	// ReconnectDelay is slept before the watch is issued again after the server ended it.
	ReconnectDelay time.Duration
	// Timeout bounds Wait. Zero waits forever.
	Timeout time.Duration
}

// Watcher blocks until a Job reaches a terminal state.
type Watcher struct {
	client    kubernetes.Interface
	namespace string
	config    WaitConfig
	clock     clock.Clock
	log       plog.Logger
}

// NewWatcher returns a Watcher for Jobs in namespace that sleeps on c.
func NewWatcher(client kubernetes.Interface, namespace string, config WaitConfig, c clock.Clock) *Watcher {
	return &Watcher{
		client:    client,
		namespace: namespace,
		config:    config,
		clock:     c,
		log:       plog.New().WithName("watcher"),
	}
}

// Wait returns nil once the Job called name has a succeeded pod. A watch that the server closes
// before then is issued again. Every failure is a *runerror.WatchError.
func (w *Watcher) Wait(ctx context.Context, name string) error {
	if err := w.wait(ctx, name); err != nil {
		return &runerror.WatchError{Err: err}
	}
	return nil
}

func (w *Watcher) wait(ctx context.Context, name string) error {
	log := w.log.WithValues("job", name, "namespace", w.namespace)

	var timeout <-chan time.Time
	if w.config.Timeout > 0 {
		timer := w.clock.NewTimer(w.config.Timeout)
		defer timer.Stop()
		timeout = timer.C()
	}

	for attempt := 1; ; attempt++ {
		log.Debug("watching job", "attempt", attempt)

		watcher, err := w.client.BatchV1().Jobs(w.namespace).Watch(ctx, metav1.ListOptions{
			FieldSelector: fields.OneTermEqualSelector("metadata.name", name).String(),
		})
		if err != nil {
			return fmt.Errorf("watch job %q: %w", name, err)
		}

		state, msg, err := w.consume(ctx, watcher, timeout, log)
		watcher.Stop()
		if err != nil {
			return err
		}

		switch state {
		case StateDone:
			return nil
		case StateFailed:
			return fmt.Errorf("%w: %s", ErrJobFailed, msg)
		case StateWaiting:
		}

		log.Debug("watch ended before the job finished", "reconnectDelay", w.config.ReconnectDelay)
		if err := w.sleep(ctx, w.config.ReconnectDelay, timeout); err != nil {
			return err
		}
		if err := w.ensureExists(ctx, name); err != nil {
			return err
		}
	}
}

// ensureExists catches a Job that was deleted while no watch was open, which a new watch
// filtered by name would never report.
func (w *Watcher) ensureExists(ctx context.Context, name string) error {
	_, err := w.client.BatchV1().Jobs(w.namespace).Get(ctx, name, metav1.GetOptions{})
	switch {
	case apierrors.IsNotFound(err):
		return ErrJobDeleted
	case err != nil:
		return fmt.Errorf("get job %q: %w", name, err)
	default:
		return nil
	}
}

// consume reads events until the Job is terminal or the server closes the stream.
func (w *Watcher) consume(ctx context.Context, watcher watch.Interface, timeout <-chan time.Time, log plog.Logger) (State, string, error) {
	for {
		select {
		case <-ctx.Done():
			return StateWaiting, "", ctx.Err()
		case <-timeout:
			return StateWaiting, "", ErrWaitTimeout
		case event, ok := <-watcher.ResultChan():
			if !ok {
				return StateWaiting, "", nil
			}

			switch event.Type {
			case watch.Error:
				return StateWaiting, "", fmt.Errorf("watch error: %w", apierrors.FromObject(event.Object))
			case watch.Deleted:
				return StateWaiting, "", ErrJobDeleted
			case watch.Added, watch.Modified:
				job, ok := event.Object.(*batchv1.Job)
				if !ok {
					return StateWaiting, "", fmt.Errorf("unexpected object of type %T in job watch", event.Object)
				}

				state, msg := Observe(job)
				log.Debug("observed job",
					"event", event.Type,
					"state", state,
					"active", job.Status.Active,
					"succeeded", job.Status.Succeeded,
					"failed", job.Status.Failed,
				)
				if state != StateWaiting {
					return state, msg, nil
				}

				if err := w.sleep(ctx, w.config.EventDelay, timeout); err != nil {
					return StateWaiting, "", err
				}
			case watch.Bookmark:
			}
		}
	}
}

func (w *Watcher) sleep(ctx context.Context, d time.Duration, timeout <-chan time.Time) error {
	if d <= 0 {
		return nil
	}

	timer := w.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timeout:
		return ErrWaitTimeout
	case <-timer.C():
		return nil
	}
}
