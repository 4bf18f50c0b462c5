package postprocess

import (
	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxy-hdr/common"
)

// LuminanceVector weights linear RGB into luminance.
var LuminanceVector = [3]float32{0.2125, 0.7154, 0.0721}

var blueShiftVector = [3]float32{1.05, 0.97, 1.27}

const (
	brightPassThreshold = 5.0
	brightPassOffset    = 10.0
	// luminanceEpsilon keeps log() and the exposure division finite on black input.
	luminanceEpsilon = 0.0001
	exposureEpsilon  = 0.001
)

// Luminance returns dot(rgb, LuminanceVector).
func Luminance(c [4]float32) float32 {
	return c[0]*LuminanceVector[0] + c[1]*LuminanceVector[1] + c[2]*LuminanceVector[2]
}

// LogLuminance is the per-sample term averaged by SampleAvgLum.
func LogLuminance(c [4]float32) float32 {
	return math32.Log(Luminance(c) + luminanceEpsilon)
}

// BrightPass keeps only what stays bright after exposure: the color is exposed to the key
// value, a fixed threshold is subtracted, and the remainder is compressed into [0, 1).
//
// Parameters:
//   - c: scaled scene color
//   - adapted: adapted luminance
//   - key: middle gray
//
// Returns:
//   - [4]float32: the bright-pass color with alpha 1
func BrightPass(c [4]float32, adapted, key float32) [4]float32 {
	out := [4]float32{0, 0, 0, 1}
	for i := range 3 {
		v := c[i] * key / (adapted + exposureEpsilon)
		v = max(v-brightPassThreshold, 0)
		out[i] = v / (brightPassOffset + v)
	}
	return out
}

// BlueShift moves a dark color toward a desaturated blue rod response. The shift fades out as
// the adapted luminance rises.
//
// Parameters:
//   - c: scene color
//   - adapted: adapted luminance
//
// Returns:
//   - [4]float32: the shifted color
func BlueShift(c [4]float32, adapted float32) [4]float32 {
	coef := common.Saturate(1 - (adapted+1.5)/4.1)
	lum := Luminance(c)
	out := c
	for i := range 3 {
		rod := lum * blueShiftVector[i]
		out[i] = c[i] + (rod-c[i])*coef
	}
	return out
}

// ToneMap exposes a color to the key value and compresses it with x/(1+x).
//
// Parameters:
//   - c: scene color
//   - adapted: adapted luminance
//   - key: middle gray
//
// Returns:
//   - [4]float32: the display color
func ToneMap(c [4]float32, adapted, key float32) [4]float32 {
	out := c
	for i := range 3 {
		v := c[i] * key / (adapted + exposureEpsilon)
		out[i] = v / (1 + v)
	}
	return out
}

// FinalColor combines the scene with the glare textures as FinalScenePass does.
//
// Parameters:
//   - scene, bloom, star: the sampled colors
//   - adapted: adapted luminance
//   - p: the pass parameters
//
// Returns:
//   - [4]float32: the back buffer color, alpha 1
func FinalColor(scene, bloom, star [4]float32, adapted float32, p *Params) [4]float32 {
	c := scene
	if p.BlueShift {
		c = BlueShift(c, adapted)
	}
	if p.ToneMap {
		c = ToneMap(c, adapted, p.MiddleGray)
	}
	for i := range 3 {
		c[i] += p.StarScale*star[i] + p.BloomScale*bloom[i]
	}
	c[3] = 1
	return c
}
