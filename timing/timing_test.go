//
// timing_test.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package timing

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/markkurossi/sigmaot/p2p"
	"github.com/stretchr/testify/assert"
)

func TestFileSize(t *testing.T) {
	tests := []struct {
		v FileSize
		s string
	}{
		{0, "0B"},
		{999, "999B"},
		{1500, "1kB"},
		{2500000, "2MB"},
		{3000000001, "3GB"},
		{4000000000001, "4TB"},
	}
	for _, test := range tests {
		assert.Equal(t, test.s, test.v.String())
	}
}

func TestTiming(t *testing.T) {
	timing := New()

	var buf bytes.Buffer
	timing.Print(&buf, p2p.NewIOStats())
	assert.Equal(t, 0, buf.Len())

	sample := timing.Sample("Setup", []string{"1kB"})
	sample.SubSample("Base OT", sample.Start.Add(time.Millisecond))
	sample.SubSample("Check", sample.End)
	timing.Sample("Transfer", nil)

	assert.Len(t, timing.Samples, 2)
	assert.Equal(t, timing.Samples[0].End, timing.Samples[1].Start)
	assert.Equal(t, sample.Samples[0].End, sample.Samples[1].Start)
	assert.True(t, timing.Total() >= 0)

	stats := p2p.NewIOStats()
	stats.Sent.Store(2000)
	stats.Recvd.Store(1000)
	stats.Flushed.Store(3)

	timing.Print(&buf, stats)
	out := buf.String()
	for _, s := range []string{"Setup", "Base OT", "Check", "Transfer", "Total", "3kB"} {
		assert.Truef(t, strings.Contains(out, s), "output missing %q", s)
	}
}
