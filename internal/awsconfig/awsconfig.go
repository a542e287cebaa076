// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package awsconfig loads the AWS SDK configuration used to talk to EKS and STS.
package awsconfig

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"

	"go.eksjob.dev/internal/plog"
)

// Load creates an AWS SDK config for region. When region is empty the region comes from the
// usual SDK sources (environment, shared config) and finally from EC2 instance metadata.
// Requests made with the returned config are never retried.
func Load(ctx context.Context, region string, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
	optFns = append([]func(*config.LoadOptions) error{
		config.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	}, optFns...)
	if region != "" {
		optFns = append(optFns, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return cfg, fmt.Errorf("error loading default config: %w", err)
	}

	// local configuration resolved a region so we can return
	if cfg.Region != "" {
		return cfg, nil
	}

	plog.Debug("no AWS region configured, asking the EC2 instance metadata service")

	regionResult, err := imds.NewFromConfig(cfg).GetRegion(ctx, &imds.GetRegionInput{})
	if err != nil {
		return cfg, fmt.Errorf("error getting region using imds: %w", err)
	}

	optFns = append(optFns, config.WithRegion(regionResult.Region))

	cfg, err = config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return cfg, fmt.Errorf("error loading default config using imds region: %w", err)
	}

	return cfg, nil
}
