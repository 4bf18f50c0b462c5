package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodedSquare(t *testing.T, size int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSpriteDecode(t *testing.T) {
	data := encodedSquare(t, 8, color.RGBA{255, 0, 0, 255})

	s := &SpriteImage{Name: "red", Data: data}
	tex, err := s.Decode()
	require.NoError(t, err)
	assert.Equal(t, uint32(8), tex.Width)
	assert.Equal(t, uint32(8), tex.Height)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, tex.At(3, 3))
}

func TestSpriteDecodeResamples(t *testing.T) {
	s := &SpriteImage{Name: "red", Data: encodedSquare(t, 8, color.RGBA{0, 255, 0, 255}), Size: 32}
	tex, err := s.Decode()
	require.NoError(t, err)
	assert.Equal(t, uint32(32), tex.Width)
	assert.Len(t, tex.Pixels, 32*32*4)
	assert.InDelta(t, 1, tex.At(16, 16)[1], 0.01)
}

func TestSpriteDecodeErrors(t *testing.T) {
	_, err := (&SpriteImage{Name: "empty"}).Decode()
	assert.ErrorIs(t, err, ErrNoImageSource)

	_, err = (&SpriteImage{Name: "garbage", Data: []byte("nope")}).Decode()
	assert.Error(t, err)

	_, err = (&SpriteImage{Name: "missing", Path: "does/not/exist.png"}).Decode()
	assert.Error(t, err)
}

func TestStagingAtClampsToEdge(t *testing.T) {
	tex := &TextureStagingData{Pixels: []byte{10, 20, 30, 255, 40, 50, 60, 255}, Width: 2, Height: 1}
	assert.Equal(t, tex.At(0, 0), tex.At(-5, 3))
	assert.Equal(t, tex.At(1, 0), tex.At(9, -1))
}
