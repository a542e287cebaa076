// Copyright 2021 the Pinniped contributors. All Rights Reserved.
// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package kubeclient

import (
	restclient "k8s.io/client-go/rest"
	"k8s.io/client-go/transport"
)

type Option func(*clientConfig)

type clientConfig struct {
	config           *restclient.Config
	userAgent        string
	transportWrapper transport.WrapperFunc
}

func WithConfig(config *restclient.Config) Option {
	return func(c *clientConfig) {
		c.config = config
	}
}

// WithCredentials talks to endpoint with a bearer token, trusting only the CA bundle stored at caFile.
func WithCredentials(endpoint, token, caFile string) Option {
	return WithConfig(&restclient.Config{
		Host:        endpoint,
		BearerToken: token,
		TLSClientConfig: restclient.TLSClientConfig{
			CAFile: caFile,
		},
	})
}

func WithUserAgent(userAgent string) Option {
	return func(c *clientConfig) {
		c.userAgent = userAgent
	}
}

// WithTransportWrapper will wrap the client-go http.RoundTripper chain. I.e., this wrapper has
// the opportunity to supply an http.RoundTripper that runs first in the client-go http.RoundTripper chain.
func WithTransportWrapper(wrapper transport.WrapperFunc) Option {
	return func(c *clientConfig) {
		c.transportWrapper = wrapper
	}
}
