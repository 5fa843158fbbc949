package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hb9tf/xtiming/gti"
)

func TestWriteIntervals(t *testing.T) {
	intervals := gti.List{{Start: 0, Stop: 2}, {Start: 100, Stop: 101.5}}

	tests := []struct {
		format string
		want   string
	}{
		{"text", "0.000000000000000000e+00 2.000000000000000000e+00\n1.000000000000000000e+02 1.015000000000000000e+02\n"},
		{"CSV", "Start,Stop\n0.000000,2.000000\n100.000000,101.500000\n"},
		{"json", "[[0,2],[100,101.5]]\n"},
	}
	for _, tc := range tests {
		t.Run(tc.format, func(t *testing.T) {
			buf := &bytes.Buffer{}
			require.NoError(t, writeIntervals(buf, tc.format, intervals))
			assert.Equal(t, tc.want, buf.String())
		})
	}

	assert.Error(t, writeIntervals(&bytes.Buffer{}, "xml", intervals))
}
