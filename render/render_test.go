package main

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))

	buf := &bytes.Buffer{}
	require.NoError(t, encode(buf, "/tmp/out.PNG", img))
	got, err := png.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), got.Bounds())

	buf.Reset()
	require.NoError(t, encode(buf, "out.jpg", img))
	got, err = jpeg.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), got.Bounds())

	assert.Error(t, encode(&bytes.Buffer{}, "out.gif", img))
}
