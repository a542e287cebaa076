// Copyright 2020 VMware, Inc.
// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package here

import (
	"testing"

	"github.com/sclevine/spec"
	"github.com/sclevine/spec/report"
	"github.com/stretchr/testify/require"
)

func TestDoc(t *testing.T) {
	spec.Run(t, "here.Doc", func(t *testing.T, when spec.G, it spec.S) {
		var r *require.Assertions

		it.Before(func() {
			r = require.New(t)
		})

		it("returns single-line strings unchanged", func() {
			r.Equal("Job created.", Doc("Job created."))
			r.Equal("  Job created.", Doc("  Job created."))
		})

		it("removes the shared indentation of multi-line strings", func() {
			r.Equal(
				"region: us-east-1\nclusterName: demo\nnamespace: jobs",
				Doc(`region: us-east-1
						clusterName: demo
						namespace: jobs`),
			)
		})

		it("drops the leading empty line and the trailing indentation", func() {
			r.Equal(
				"region: us-east-1\nclusterName: demo\n",
				Doc(`
						region: us-east-1
						clusterName: demo
				`),
			)
		})

		it("expands nested tabs to four spaces", func() {
			r.Equal(
				"job:\n    image: python:3.9\n        # comment\n",
				Doc(`
						job:
							image: python:3.9
								# comment
				`),
			)
		})
	}, spec.Parallel(), spec.Report(report.Terminal{}))

	spec.Run(t, "here.Docf", func(t *testing.T, when spec.G, it spec.S) {
		var r *require.Assertions

		it.Before(func() {
			r = require.New(t)
		})

		it("formats single-line strings", func() {
			r.Equal("Job created. Name: calculator-job-1", Docf("Job created. Name: %s", "calculator-job-1"))
		})

		it("formats and dedents multi-line strings", func() {
			r.Equal(
				"Fetching logs from pod: p\nContainer output:\n17\n",
				Docf(`
						Fetching logs from pod: %s
						Container output:
						%d
				`, "p", 17),
			)
		})
	}, spec.Parallel(), spec.Report(report.Terminal{}))
}
