// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package clustercreds

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"k8s.io/utils/clock"
)

const (
	tokenPrefix     = "k8s-aws-v1."
	clusterIDHeader = "x-k8s-aws-id"

	// the presigned URL is valid for 15 minutes no matter what X-Amz-Expires says, report a bit less
	tokenLifetime = 14 * time.Minute
)

// Token is a bearer token accepted by the EKS API server authenticator.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// TokenGenerator mints a token for one cluster.
type TokenGenerator interface {
	Token(ctx context.Context, clusterName string) (Token, error)
}

// CallerIdentityPresigner is the subset of the STS presign client used to mint tokens.
type CallerIdentityPresigner interface {
	PresignGetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type stsTokenGenerator struct {
	presigner CallerIdentityPresigner
	clock     clock.PassiveClock
}

var _ TokenGenerator = (*stsTokenGenerator)(nil)

// NewTokenGenerator returns a TokenGenerator that presigns sts:GetCallerIdentity with client.
func NewTokenGenerator(client *sts.Client, c clock.PassiveClock) TokenGenerator {
	return NewTokenGeneratorFromPresigner(sts.NewPresignClient(client), c)
}

// NewTokenGeneratorFromPresigner is NewTokenGenerator for an already built presigner.
func NewTokenGeneratorFromPresigner(presigner CallerIdentityPresigner, c clock.PassiveClock) TokenGenerator {
	return &stsTokenGenerator{presigner: presigner, clock: c}
}

func (g *stsTokenGenerator) Token(ctx context.Context, clusterName string) (Token, error) {
	// the timestamp is taken before signing so that ExpiresAt never overshoots
	now := g.clock.Now()

	req, err := g.presigner.PresignGetCallerIdentity(ctx, &sts.GetCallerIdentityInput{}, func(o *sts.PresignOptions) {
		o.ClientOptions = append(o.ClientOptions, sts.WithAPIOptions(
			smithyhttp.AddHeaderValue(clusterIDHeader, clusterName),
			smithyhttp.AddHeaderValue("X-Amz-Expires", "60"),
		))
	})
	if err != nil {
		return Token{}, fmt.Errorf("presign sts:GetCallerIdentity: %w", err)
	}

	return Token{
		Value:     tokenPrefix + base64.RawURLEncoding.EncodeToString([]byte(req.URL)),
		ExpiresAt: now.Add(tokenLifetime),
	}, nil
}
