// Copyright 2021-2022 the Pinniped contributors. All Rights Reserved.
// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package kubeclient builds the Kubernetes clientset used to submit and observe the Job.
package kubeclient

import (
	"fmt"
	"net/url"

	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes"
	restclient "k8s.io/client-go/rest"

	"go.eksjob.dev/internal/constable"
	"go.eksjob.dev/internal/pversion"
)

const (
	ErrNoConfig  = constable.Error("no client config was provided")
	ErrNoCA      = constable.Error("refusing to talk to the API server without a certificate authority")
	ErrInsecure  = constable.Error("refusing to talk to the API server without verifying its certificate")
	ErrNotHTTPS  = constable.Error("refusing to send credentials to an API server that is not served over https")
	ErrEmptyHost = constable.Error("API server endpoint is empty")
)

type Client struct {
	Kubernetes kubernetes.Interface

	JSONConfig *restclient.Config
}

func New(opts ...Option) (*Client, error) {
	c := &clientConfig{userAgent: pversion.UserAgent()}

	for _, opt := range opts {
		opt(c)
	}

	if c.config == nil {
		return nil, ErrNoConfig
	}

	if err := AssertSecureConfig(c.config); err != nil {
		return nil, fmt.Errorf("could not create secure client config: %w", err)
	}

	// batch and core are built-in APIs but json keeps the wire format easy to fake and to debug
	jsonKubeConfig := createJSONKubeConfig(c.config)
	jsonKubeConfig.UserAgent = c.userAgent
	if c.transportWrapper != nil {
		jsonKubeConfig.Wrap(c.transportWrapper)
	}

	k8sClient, err := kubernetes.NewForConfig(jsonKubeConfig)
	if err != nil {
		return nil, fmt.Errorf("could not initialize Kubernetes client: %w", err)
	}

	return &Client{
		Kubernetes: k8sClient,
		JSONConfig: jsonKubeConfig,
	}, nil
}

// Returns a copy of the input config with the ContentConfig set to use json.
func createJSONKubeConfig(kubeConfig *restclient.Config) *restclient.Config {
	jsonKubeConfig := restclient.CopyConfig(kubeConfig)
	jsonKubeConfig.AcceptContentTypes = runtime.ContentTypeJSON
	jsonKubeConfig.ContentType = runtime.ContentTypeJSON
	return jsonKubeConfig
}

// AssertSecureConfig makes sure that the bearer token only ever travels over TLS to a
// server whose certificate chains up to the configured CA bundle.
func AssertSecureConfig(kubeConfig *restclient.Config) error {
	if kubeConfig.Host == "" {
		return ErrEmptyHost
	}

	host, err := url.Parse(kubeConfig.Host)
	if err != nil {
		return fmt.Errorf("invalid API server endpoint %q: %w", kubeConfig.Host, err)
	}
	if host.Scheme != "https" {
		return ErrNotHTTPS
	}

	if kubeConfig.Insecure {
		return ErrInsecure
	}
	if kubeConfig.CAFile == "" && len(kubeConfig.CAData) == 0 {
		return ErrNoCA
	}

	// loads and parses the CA bundle, which fails early on a missing or garbled file
	if _, err := restclient.TLSConfigFor(kubeConfig); err != nil {
		return fmt.Errorf("invalid TLS config: %w", err)
	}

	return nil
}
