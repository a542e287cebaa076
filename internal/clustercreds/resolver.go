// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package clustercreds resolves the bearer token, API endpoint and CA bundle
// needed to talk to the control plane of an EKS cluster.
package clustercreds

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"k8s.io/utils/clock"

	"go.eksjob.dev/internal/constable"
	"go.eksjob.dev/internal/plog"
	"go.eksjob.dev/internal/runerror"
)

const (
	ErrMissingEndpoint             = constable.Error("cluster has no API server endpoint")
	ErrMissingCertificateAuthority = constable.Error("cluster has no certificate authority data")
)

// ClusterCredentials is everything needed to build a client for one cluster.
// The token is never renewed, ExpiresAt is informational.
type ClusterCredentials struct {
	Token                    string
	Endpoint                 string
	CertificateAuthorityData string // base64 encoded PEM
	ExpiresAt                time.Time
}

// ClusterDescriber is the subset of the EKS API used to look up a cluster.
type ClusterDescriber interface {
	DescribeCluster(ctx context.Context, params *eks.DescribeClusterInput, optFns ...func(*eks.Options)) (*eks.DescribeClusterOutput, error)
}

// Resolver combines cluster metadata from EKS with a token from STS.
type Resolver struct {
	describer ClusterDescriber
	tokens    TokenGenerator
	log       plog.Logger
}

// New returns a Resolver that talks to the real AWS APIs using cfg.
func New(cfg aws.Config, c clock.PassiveClock) *Resolver {
	return NewResolver(eks.NewFromConfig(cfg), NewTokenGenerator(sts.NewFromConfig(cfg), c))
}

// NewResolver returns a Resolver backed by describer and tokens.
func NewResolver(describer ClusterDescriber, tokens TokenGenerator) *Resolver {
	return &Resolver{describer: describer, tokens: tokens, log: plog.New().WithName("clustercreds")}
}

// Resolve returns the credentials of clusterName exactly as reported by AWS.
// Every failure is a *runerror.CredentialError.
func (r *Resolver) Resolve(ctx context.Context, clusterName string) (*ClusterCredentials, error) {
	creds, err := r.resolve(ctx, clusterName)
	if err != nil {
		return nil, &runerror.CredentialError{Err: err}
	}
	return creds, nil
}

func (r *Resolver) resolve(ctx context.Context, clusterName string) (*ClusterCredentials, error) {
	log := r.log.WithValues("cluster", clusterName)

	log.Debug("describing EKS cluster")
	out, err := r.describer.DescribeCluster(ctx, &eks.DescribeClusterInput{Name: aws.String(clusterName)})
	if err != nil {
		return nil, fmt.Errorf("describe cluster %q: %w", clusterName, err)
	}
	if out.Cluster == nil || aws.ToString(out.Cluster.Endpoint) == "" {
		return nil, fmt.Errorf("describe cluster %q: %w", clusterName, ErrMissingEndpoint)
	}
	if out.Cluster.CertificateAuthority == nil || aws.ToString(out.Cluster.CertificateAuthority.Data) == "" {
		return nil, fmt.Errorf("describe cluster %q: %w", clusterName, ErrMissingCertificateAuthority)
	}

	token, err := r.tokens.Token(ctx, clusterName)
	if err != nil {
		return nil, fmt.Errorf("get token for cluster %q: %w", clusterName, err)
	}

	log.Debug("resolved cluster credentials",
		"endpoint", aws.ToString(out.Cluster.Endpoint),
		"expiresAt", token.ExpiresAt,
	)

	return &ClusterCredentials{
		Token:                    token.Value,
		Endpoint:                 aws.ToString(out.Cluster.Endpoint),
		CertificateAuthorityData: aws.ToString(out.Cluster.CertificateAuthority.Data),
		ExpiresAt:                token.ExpiresAt,
	}, nil
}
