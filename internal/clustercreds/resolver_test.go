// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package clustercreds_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	ekstypes "github.com/aws/aws-sdk-go-v2/service/eks/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"go.eksjob.dev/internal/clustercreds"
	"go.eksjob.dev/internal/mocks/mockclustercreds"
	"go.eksjob.dev/internal/runerror"
)

func TestResolve(t *testing.T) {
	expiresAt := time.Date(2026, 3, 4, 5, 20, 0, 0, time.UTC)

	describeOutput := func(endpoint, caData *string) *eks.DescribeClusterOutput {
		out := &eks.DescribeClusterOutput{Cluster: &ekstypes.Cluster{Name: aws.String("calc"), Endpoint: endpoint}}
		if caData != nil {
			out.Cluster.CertificateAuthority = &ekstypes.Certificate{Data: caData}
		}
		return out
	}

	tests := []struct {
		name          string
		describeOut   *eks.DescribeClusterOutput
		describeErr   error
		wantTokenCall bool
		tokenErr      error
		wantCreds     *clustercreds.ClusterCredentials
		wantErr       string
		wantErrIs     error
	}{
		{
			name:          "returns the token, endpoint and CA bundle unmodified",
			describeOut:   describeOutput(aws.String("https://ABCDEF.gr7.us-east-1.eks.amazonaws.com"), aws.String("LS0tLS1CRUdJTi==")),
			wantTokenCall: true,
			wantCreds: &clustercreds.ClusterCredentials{
				Token:                    "k8s-aws-v1.some-token",
				Endpoint:                 "https://ABCDEF.gr7.us-east-1.eks.amazonaws.com",
				CertificateAuthorityData: "LS0tLS1CRUdJTi==",
				ExpiresAt:                expiresAt,
			},
		},
		{
			name:        "cluster not found",
			describeErr: &ekstypes.ResourceNotFoundException{Message: aws.String("No cluster found for name: calc.")},
			wantErr:     `could not resolve cluster credentials: describe cluster "calc": ResourceNotFoundException: No cluster found for name: calc.`,
		},
		{
			name:        "cluster without endpoint",
			describeOut: describeOutput(nil, aws.String("LS0tLS1CRUdJTi==")),
			wantErr:     `could not resolve cluster credentials: describe cluster "calc": cluster has no API server endpoint`,
			wantErrIs:   clustercreds.ErrMissingEndpoint,
		},
		{
			name:        "cluster without certificate authority",
			describeOut: describeOutput(aws.String("https://ABCDEF.gr7.us-east-1.eks.amazonaws.com"), nil),
			wantErr:     `could not resolve cluster credentials: describe cluster "calc": cluster has no certificate authority data`,
			wantErrIs:   clustercreds.ErrMissingCertificateAuthority,
		},
		{
			name:          "token generation fails",
			describeOut:   describeOutput(aws.String("https://ABCDEF.gr7.us-east-1.eks.amazonaws.com"), aws.String("LS0tLS1CRUdJTi==")),
			wantTokenCall: true,
			tokenErr:      errors.New("no credentials"),
			wantErr:       `could not resolve cluster credentials: get token for cluster "calc": no credentials`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			describer := mockclustercreds.NewMockClusterDescriber(ctrl)
			tokens := mockclustercreds.NewMockTokenGenerator(ctrl)

			ctx := context.Background()
			describer.EXPECT().
				DescribeCluster(ctx, &eks.DescribeClusterInput{Name: aws.String("calc")}).
				Return(tt.describeOut, tt.describeErr).
				Times(1)
			if tt.wantTokenCall {
				tokens.EXPECT().
					Token(ctx, "calc").
					Return(clustercreds.Token{Value: "k8s-aws-v1.some-token", ExpiresAt: expiresAt}, tt.tokenErr).
					Times(1)
			}

			creds, err := clustercreds.NewResolver(describer, tokens).Resolve(ctx, "calc")
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				require.Nil(t, creds)

				var credErr *runerror.CredentialError
				require.ErrorAs(t, err, &credErr)
				require.Equal(t, runerror.ExitCredential, runerror.ExitCode(err))
				if tt.wantErrIs != nil {
					require.ErrorIs(t, err, tt.wantErrIs)
				}
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantCreds, creds)
		})
	}
}
