// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package mockclustercreds

//go:generate go run -v go.uber.org/mock/mockgen  -destination=mockclustercreds.go -package=mockclustercreds -copyright_file=../../../hack/header.txt go.eksjob.dev/internal/clustercreds ClusterDescriber,TokenGenerator
