// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package runner drives one eksjob run: credentials, submission, wait and log retrieval.
package runner

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"k8s.io/client-go/kubernetes"
	"k8s.io/utils/clock"

	"go.eksjob.dev/internal/awsconfig"
	"go.eksjob.dev/internal/cabundle"
	"go.eksjob.dev/internal/clustercreds"
	"go.eksjob.dev/internal/config/jobconfig"
	"go.eksjob.dev/internal/kubeclient"
	"go.eksjob.dev/internal/plog"
	"go.eksjob.dev/internal/runerror"
	"go.eksjob.dev/internal/workload"
)

// CredentialResolver looks up the credentials of an EKS cluster.
type CredentialResolver interface {
	Resolve(ctx context.Context, clusterName string) (*clustercreds.ClusterCredentials, error)
}

// Deps are the collaborators of Run. The zero value of each field is replaced by its real implementation.
type Deps struct {
	// NewResolver returns the resolver for the run, typically backed by the AWS APIs.
	NewResolver func(ctx context.Context, cfg *jobconfig.Config) (CredentialResolver, error)
	// NewClient builds a clientset that authenticates with creds and trusts the CA bundle at caFile.
	NewClient func(creds *clustercreds.ClusterCredentials, caFile string) (kubernetes.Interface, error)
	Clock     clock.Clock
	NewRunID  func() string
	// CADir is where the CA bundle is written, the system temp dir when empty.
	CADir string
	Log   plog.Logger
}

// Result summarizes a successful run.
type Result struct {
	JobName  string
	PodName  string
	Log      string
	PodFound bool
}

func (d Deps) withDefaults() Deps {
	if d.NewResolver == nil {
		d.NewResolver = newAWSResolver
	}
	if d.NewClient == nil {
		d.NewClient = newKubeClient
	}
	if d.Clock == nil {
		d.Clock = clock.RealClock{}
	}
	if d.NewRunID == nil {
		d.NewRunID = uuid.NewString
	}
	if d.Log == nil {
		d.Log = plog.New().WithName("runner")
	}
	return d
}

func newAWSResolver(ctx context.Context, cfg *jobconfig.Config) (CredentialResolver, error) {
	awsCfg, err := awsconfig.Load(ctx, cfg.AWSRegion())
	if err != nil {
		return nil, err
	}
	return clustercreds.New(awsCfg, clock.RealClock{}), nil
}

func newKubeClient(creds *clustercreds.ClusterCredentials, caFile string) (kubernetes.Interface, error) {
	client, err := kubeclient.New(kubeclient.WithCredentials(creds.Endpoint, creds.Token, caFile))
	if err != nil {
		return nil, err
	}
	return client.Kubernetes, nil
}

// Run performs the whole flow once and prints its progress to out. Failures are logged and
// returned as one of the runerror types so that the caller can pick an exit code.
func Run(ctx context.Context, cfg *jobconfig.Config, deps Deps, out io.Writer) (_ *Result, err error) {
	deps = deps.withDefaults()
	log := deps.Log.WithValues("cluster", cfg.ClusterName, "namespace", cfg.Namespace)

	defer func() {
		if err != nil {
			log.Error("run failed", err, "stage", runerror.Stage(err))
		}
	}()

	resolver, err := deps.NewResolver(ctx, cfg)
	if err != nil {
		return nil, &runerror.CredentialError{Err: fmt.Errorf("load AWS config: %w", err)}
	}

	creds, err := resolver.Resolve(ctx, cfg.ClusterName)
	if err != nil {
		return nil, err
	}

	caFile, err := cabundle.Write(creds.CertificateAuthorityData, cabundle.WithDir(deps.CADir))
	if err != nil {
		return nil, &runerror.CredentialError{Err: err}
	}
	defer func() {
		if closeErr := caFile.Close(); closeErr != nil {
			log.WarningErr("could not remove certificate authority file", closeErr, "path", caFile.Path())
		}
	}()
	log.Debug("wrote certificate authority file", "path", caFile.Path(), "tokenExpiresAt", creds.ExpiresAt)

	client, err := deps.NewClient(creds, caFile.Path())
	if err != nil {
		return nil, &runerror.CredentialError{Err: fmt.Errorf("build Kubernetes client: %w", err)}
	}

	spec := workload.WorkloadSpec{
		Name:                    workload.NewJobName(cfg.Job.NamePrefix, deps.Clock.Now()),
		Namespace:               cfg.Namespace,
		Image:                   cfg.Job.Image,
		Command:                 cfg.Job.Command,
		ContainerName:           cfg.Job.ContainerName,
		PodName:                 cfg.Job.PodName,
		TTLSecondsAfterFinished: *cfg.Job.TTLSecondsAfterFinished,
		BackoffLimit:            0,
		Labels:                  map[string]string{workload.RunIDLabel: deps.NewRunID()},
	}

	created, err := workload.NewSubmitter(client, cfg.Namespace).Submit(ctx, workload.BuildJob(spec))
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "Job created. Name: %s\n", created.Name)

	fmt.Fprintln(out, "Waiting for the job to complete...")
	watcher := workload.NewWatcher(client, cfg.Namespace, workload.WaitConfig{
		EventDelay:     cfg.Wait.EventDelay.Duration,
		ReconnectDelay: cfg.Wait.ReconnectDelay.Duration,
		Timeout:        cfg.Wait.Timeout.Duration,
	}, deps.Clock)
	if err := watcher.Wait(ctx, created.Name); err != nil {
		return nil, err
	}
	fmt.Fprintln(out, "Job completed successfully.")

	// the Job and its pod are deleted TTLSecondsAfterFinished after completion, so read the log right away
	logs, err := workload.NewLogFetcher(client, cfg.Namespace, cfg.Job.ContainerName).Fetch(ctx, created.Name)
	if err != nil {
		return nil, err
	}

	result := &Result{JobName: created.Name, PodName: logs.PodName, Log: logs.Log, PodFound: logs.PodFound}
	if !logs.PodFound {
		fmt.Fprintln(out, "No pods found for the job. It might have completed too quickly, or failed to create a pod.")
		return result, nil
	}

	fmt.Fprintf(out, "Fetching logs from pod: %s\n", logs.PodName)
	fmt.Fprintf(out, "Container output:\n%s\n", logs.Log)

	return result, nil
}
