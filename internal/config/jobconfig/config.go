// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package jobconfig loads the configuration of an eksjob run from an optional
// YAML file, inserts defaults and validates the result.
package jobconfig

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/validation"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/yaml"

	"go.eksjob.dev/internal/constable"
	"go.eksjob.dev/internal/plog"
)

const (
	AutoRegion = "auto"

	DefaultRegion        = "us-east-1"
	DefaultClusterName   = "eksjob"
	DefaultNamespace     = "default"
	DefaultNamePrefix    = "calculator-job"
	DefaultImage         = "python:3.9"
	DefaultContainerName = "calculator-container"
	DefaultPodName       = "calculator-pod"

	DefaultTTLSecondsAfterFinished = int32(30)
	DefaultEventDelay              = 2 * time.Second
	DefaultReconnectDelay          = 2 * time.Second

	// the job name gets "-" plus a unix timestamp appended and must still fit in a label value
	maxNamePrefixLength = validation.DNS1123LabelMaxLength - 11
)

//nolint:gochecknoglobals
var defaultCommand = []string{"/bin/sh", "-c", `python -c "print(5 + 12)" && sleep 10`}

// AWSRegion is the region to hand to the AWS SDK, empty when it should be discovered.
func (c *Config) AWSRegion() string {
	if c.Region == AutoRegion {
		return ""
	}
	return c.Region
}

// Load returns the defaulted and validated config at path, or the built-in defaults when path is empty.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default()
	}
	return FromPath(path)
}

// Default returns the built-in configuration.
func Default() (*Config, error) {
	return finish(&Config{})
}

// FromPath loads a Config from a provided local file path, inserts any
// defaults (from the Config documentation), and verifies that the config is
// valid (Config documentation).
func FromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var config Config
	if err := yaml.UnmarshalStrict(data, &config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	return finish(&config)
}

func finish(config *Config) (*Config, error) {
	setDefaults(config)

	if err := validateCluster(config); err != nil {
		return nil, fmt.Errorf("validate cluster: %w", err)
	}
	if err := validateJob(&config.Job); err != nil {
		return nil, fmt.Errorf("validate job: %w", err)
	}
	if err := validateWait(&config.Wait); err != nil {
		return nil, fmt.Errorf("validate wait: %w", err)
	}
	if !slices.Contains(plog.AllLevels, config.Log.Level) {
		return nil, fmt.Errorf("validate log: unknown level %q", config.Log.Level)
	}

	return config, nil
}

func setDefaults(config *Config) {
	maybeSetStringDefault(&config.Region, DefaultRegion)
	maybeSetStringDefault(&config.ClusterName, DefaultClusterName)
	maybeSetStringDefault(&config.Namespace, DefaultNamespace)

	job := &config.Job
	maybeSetStringDefault(&job.NamePrefix, DefaultNamePrefix)
	maybeSetStringDefault(&job.Image, DefaultImage)
	maybeSetStringDefault(&job.ContainerName, DefaultContainerName)
	maybeSetStringDefault(&job.PodName, DefaultPodName)
	if len(job.Command) == 0 {
		job.Command = append([]string(nil), defaultCommand...)
	}
	if job.TTLSecondsAfterFinished == nil {
		job.TTLSecondsAfterFinished = ptr.To(DefaultTTLSecondsAfterFinished)
	}

	maybeSetDurationDefault(&config.Wait.EventDelay, DefaultEventDelay)
	maybeSetDurationDefault(&config.Wait.ReconnectDelay, DefaultReconnectDelay)
	maybeSetDurationDefault(&config.Wait.Timeout, 0)
}

func maybeSetStringDefault(s *string, defaultValue string) {
	if *s != "" {
		return
	}
	*s = defaultValue
}

func maybeSetDurationDefault(d **metav1.Duration, defaultValue time.Duration) {
	if *d != nil {
		return
	}
	*d = &metav1.Duration{Duration: defaultValue}
}

func validateCluster(config *Config) error {
	if errs := validation.IsDNS1123Label(config.Namespace); len(errs) > 0 {
		return fmt.Errorf("invalid namespace %q: %s", config.Namespace, strings.Join(errs, ", "))
	}
	return nil
}

func validateJob(job *JobSpec) error {
	if len(job.NamePrefix) > maxNamePrefixLength {
		return fmt.Errorf("namePrefix %q must be no more than %d characters", job.NamePrefix, maxNamePrefixLength)
	}
	if errs := validation.IsDNS1123Label(job.NamePrefix); len(errs) > 0 {
		return fmt.Errorf("invalid namePrefix %q: %s", job.NamePrefix, strings.Join(errs, ", "))
	}
	if errs := validation.IsDNS1123Label(job.ContainerName); len(errs) > 0 {
		return fmt.Errorf("invalid containerName %q: %s", job.ContainerName, strings.Join(errs, ", "))
	}
	if errs := validation.IsDNS1123Subdomain(job.PodName); len(errs) > 0 {
		return fmt.Errorf("invalid podName %q: %s", job.PodName, strings.Join(errs, ", "))
	}
	if *job.TTLSecondsAfterFinished <= 0 {
		return constable.Error("ttlSecondsAfterFinished must be positive")
	}
	return nil
}

func validateWait(wait *WaitSpec) error {
	negative := []string{}
	if wait.EventDelay.Duration < 0 {
		negative = append(negative, "eventDelay")
	}
	if wait.ReconnectDelay.Duration < 0 {
		negative = append(negative, "reconnectDelay")
	}
	if wait.Timeout.Duration < 0 {
		negative = append(negative, "timeout")
	}
	if len(negative) > 0 {
		return constable.Error("durations must not be negative: " + strings.Join(negative, ", "))
	}
	return nil
}
