package imageprocessor

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalize_Downscales(t *testing.T) {
	p := NewProcessor(80, 100, 0)

	res, err := p.Normalize(makePNG(t, 400, 200))
	require.NoError(t, err)

	assert.Equal(t, "image/jpeg", res.ContentType)
	assert.Equal(t, 100, res.Width)
	assert.Equal(t, 50, res.Height)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 100, cfg.Width)
}

func TestNormalize_NoUpscale(t *testing.T) {
	p := NewProcessor(80, 1280, 0)

	res, err := p.Normalize(makePNG(t, 30, 60))
	require.NoError(t, err)
	assert.Equal(t, 30, res.Width)
	assert.Equal(t, 60, res.Height)
}

func TestNormalize_RejectsGarbage(t *testing.T) {
	_, err := NewProcessor(80, 100, 0).Normalize([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestNormalize_RejectsOversizedDimensions(t *testing.T) {
	// 10000x10000 в градациях серого сжимается в ~120 КБ, но распаковка заняла бы сотни МБ
	img := image.NewGray(image.Rect(0, 0, 10000, 10000))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.Less(t, buf.Len(), 1<<20)

	_, err := NewProcessor(80, 1280, 0).Normalize(buf.Bytes())
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	// предел настраивается
	_, err = NewProcessor(80, 100, 399*200).Normalize(makePNG(t, 400, 200))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	res, err := NewProcessor(80, 100, 400*200).Normalize(makePNG(t, 400, 200))
	require.NoError(t, err)
	assert.Equal(t, 100, res.Width)
}

func TestFitWithin(t *testing.T) {
	w, h := FitWithin(2000, 1000, 1280)
	assert.Equal(t, 1280, w)
	assert.Equal(t, 640, h)

	w, h = FitWithin(1000, 3000, 1500)
	assert.Equal(t, 500, w)
	assert.Equal(t, 1500, h)
}
