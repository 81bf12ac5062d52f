// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func Test_metrics01(tst *testing.T) {

	//verbose()
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.Sampled(2, 3, 2, 0.4, 1.5)
	m.Sampled(1, 0, 3, 0.1, 0.2)
	m.Injected(false)
	m.Injected(true)
	m.Injected(true)
	m.Retried()
	m.Failed(true)
	m.Failed(false)
	m.Failed(false)
	m.Stepped(time.Now())

	assert.Equal(tst, 3.0, testutil.ToFloat64(m.Accepted))
	assert.Equal(tst, 3.0, testutil.ToFloat64(m.Rejected))
	assert.Equal(tst, 3.0, testutil.ToFloat64(m.Events))
	assert.Equal(tst, 0.1, testutil.ToFloat64(m.MaxProb))
	assert.Equal(tst, 0.2, testutil.ToFloat64(m.Expected))
	assert.Equal(tst, 1.0, testutil.ToFloat64(m.Injections.WithLabelValues("applied")))
	assert.Equal(tst, 2.0, testutil.ToFloat64(m.Injections.WithLabelValues("deferred")))
	assert.Equal(tst, 1.0, testutil.ToFloat64(m.Retries))
	assert.Equal(tst, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("divergence")))
	assert.Equal(tst, 2.0, testutil.ToFloat64(m.Failures.WithLabelValues("error")))
	assert.Equal(tst, 1.0, testutil.ToFloat64(m.Steps))
	assert.Equal(tst, 1, testutil.CollectAndCount(m.StepTime))

	// registering twice fails
	assert.Panics(tst, func() { NewMetrics(reg) })
}

func Test_metrics02(tst *testing.T) {

	//verbose()
	var m *Metrics
	assert.NotPanics(tst, func() {
		m.Sampled(1, 1, 1, 1, 1)
		m.Injected(true)
		m.Retried()
		m.Failed(true)
		m.Stepped(time.Now())
	})
}
