package postprocess

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess/glare"
)

func TestTextureCoords(t *testing.T) {
	src := &fakeTexture{w: 100, h: 50}
	dst := &fakeTexture{w: 27, h: 14}

	assert.Equal(t, CoordRect{0, 0, 1, 1}, TextureCoords(src, nil, dst, nil))
	assert.Equal(t, Rect{0, 0, 100, 50}, TextureRect(src))

	srcRect := TextureRect(src).Inset(1)
	c := TextureCoords(src, &srcRect, dst, nil)
	assert.InDelta(t, 0.01, c.U0, 1e-6)
	assert.InDelta(t, 0.02, c.V0, 1e-6)
	assert.InDelta(t, 0.99, c.U1, 1e-6)
	assert.InDelta(t, 0.98, c.V1, 1e-6)

	dstRect := TextureRect(dst).Inset(1)
	c = TextureCoords(src, nil, dst, &dstRect)
	assert.InDelta(t, -1.0/27, c.U0, 1e-6)
	assert.InDelta(t, -1.0/14, c.V0, 1e-6)
	assert.InDelta(t, 1+1.0/27, c.U1, 1e-6)
	assert.InDelta(t, 1+1.0/14, c.V1, 1e-6)

	u, v := CoordRect{U0: 0.25, V0: 0, U1: 0.75, V1: 1}.At(0, 1, 2, 2)
	assert.InDelta(t, 0.375, u, 1e-6)
	assert.InDelta(t, 0.75, v, 1e-6)
}

func TestRect(t *testing.T) {
	r := Rect{W: 4, H: 4}.Inset(1)
	assert.Equal(t, Rect{1, 1, 2, 2}, r)
	assert.False(t, r.Empty())
	assert.True(t, r.Inset(1).Empty())
}

func TestCropSize(t *testing.T) {
	w, h := CropSize(1024, 767)
	assert.Equal(t, 1024, w)
	assert.Equal(t, 760, h)
}

func TestAdaptedLuminance(t *testing.T) {
	v := AdaptedLuminance(1, 2, 1)
	assert.Greater(t, v, float32(1))
	assert.Less(t, v, float32(2))
	assert.InDelta(t, 1+(1-math32.Pow(0.98, 30)), v, 1e-6)

	assert.Equal(t, float32(1), AdaptedLuminance(1, 2, 0))
	assert.InDelta(t, 0.5, AdaptedLuminance(0.5, 0.5, 3), 1e-7)

	// converging downward never overshoots either
	prev := float32(4)
	for range 100 {
		next := AdaptedLuminance(prev, 1, 0.1)
		assert.LessOrEqual(t, next, prev)
		assert.GreaterOrEqual(t, next, float32(1))
		prev = next
	}
}

func TestAdaptationPingPong(t *testing.T) {
	a, b := &fakeTexture{label: "a"}, &fakeTexture{label: "b"}
	var ad Adaptation
	ad.Set(a, b)
	assert.Same(t, a, ad.Current())
	assert.Same(t, b, ad.Last())

	ad.Swap()
	assert.Same(t, b, ad.Current())
	assert.Same(t, a, ad.Last())
	assert.Equal(t, 1, ad.Generation())

	assert.False(t, ad.Consume())
	ad.Invalidate()
	ad.Invalidate()
	assert.True(t, ad.Consume())
	assert.False(t, ad.Consume())

	ad.Release()
	assert.True(t, a.released)
	assert.True(t, b.released)
	assert.Nil(t, ad.Current())
}

func TestBrightPass(t *testing.T) {
	// exposure of 1: 5 is exactly the threshold
	c := BrightPass([4]float32{5, 1, 0, 1}, 0.999, 1)
	assert.InDelta(t, 0, c[0], 1e-5)
	assert.Equal(t, float32(0), c[1])
	assert.Equal(t, float32(1), c[3])

	c = BrightPass([4]float32{15, 0, 0, 1}, 0.999, 1)
	assert.InDelta(t, 10.0/20.0, c[0], 1e-4)
	assert.Less(t, c[0], float32(1))
}

func TestToneMap(t *testing.T) {
	c := ToneMap([4]float32{1, 0, 3, 0.5}, 0.999, 1)
	assert.InDelta(t, 0.5, c[0], 1e-4)
	assert.Equal(t, float32(0), c[1])
	assert.InDelta(t, 0.75, c[2], 1e-4)
	assert.Equal(t, float32(0.5), c[3])
}

func TestBlueShift(t *testing.T) {
	c := [4]float32{0.2, 0.4, 0.1, 1}
	assert.Equal(t, c, BlueShift(c, 2.6))
	assert.Equal(t, c, BlueShift(c, 10))

	dark := BlueShift(c, -1.5)
	lum := Luminance(c)
	assert.InDelta(t, lum*1.05, dark[0], 1e-6)
	assert.InDelta(t, lum*0.97, dark[1], 1e-6)
	assert.InDelta(t, lum*1.27, dark[2], 1e-6)
}

func TestFinalColor(t *testing.T) {
	p := &Params{BloomScale: 3, StarScale: 0.5}
	c := FinalColor([4]float32{0.1, 0.2, 0.3, 0}, [4]float32{0.1, 0, 0, 0}, [4]float32{0, 0.2, 0, 0}, 1, p)
	assert.InDelta(t, 0.4, c[0], 1e-6)
	assert.InDelta(t, 0.3, c[1], 1e-6)
	assert.InDelta(t, 0.3, c[2], 1e-6)
	assert.Equal(t, float32(1), c[3])
}

func TestLogLuminanceBlack(t *testing.T) {
	assert.InDelta(t, math32.Log(0.0001), LogLuminance([4]float32{}), 1e-5)
}

func TestStarColors(t *testing.T) {
	none := StarColors(0)
	for p := range none {
		for s := range none[p] {
			assert.Equal(t, starWhite, none[p][s])
		}
	}

	full := StarColors(1)
	assert.InDelta(t, glare.ChromaticAberration[2][0]+(0.63-glare.ChromaticAberration[2][0])/3, full[0][2][0], 1e-6)
	// the last pass is fully white
	assert.InDelta(t, 0.63, full[2][5][2], 1e-6)
}

func TestStarLinePasses(t *testing.T) {
	line := glare.StarLine{Passes: 3, SampleLength: 1, Attenuation: 0.9}
	colors := StarColors(0)
	passes := StarLinePasses(line, 0, colors, 100, 80)
	require.Len(t, passes, 3)

	// inclination 0 streaks along +V
	assert.Equal(t, float32(0), passes[0].Offsets[1][0])
	assert.InDelta(t, 1.0/80, passes[0].Offsets[1][1], 1e-7)
	assert.InDelta(t, 8.0/80, passes[1].Offsets[1][1], 1e-6)
	assert.Equal(t, starSamples, passes[0].SampleCount)

	// tap 0 has no attenuation: weight = white * (p+1) / 2
	assert.InDelta(t, 0.63*0.5, passes[0].Weights[0][0], 1e-6)
	assert.InDelta(t, 0.63*1.5, passes[2].Weights[0][0], 1e-6)
	assert.Less(t, passes[0].Weights[7][0], passes[0].Weights[1][0])

	// third pass steps 64 texels per tap: taps reaching 0.9 of the texture are dropped
	for i := range starSamples {
		o := passes[2].Offsets[i]
		if float32(i)*64/80 >= 0.9 {
			assert.Equal(t, [2]float32{}, o, "tap %d", i)
			assert.Equal(t, [4]float32{}, passes[2].Weights[i], "tap %d", i)
		} else {
			assert.InDelta(t, float32(i)*64/80, o[1], 1e-5)
		}
	}
}

func TestPassValidate(t *testing.T) {
	a := &fakeTexture{label: "a", w: 4, h: 4}
	b := &fakeTexture{label: "b", w: 4, h: 4}
	c := &fakeTexture{label: "c", w: 4, h: 4}
	d := &fakeTexture{label: "d", w: 4, h: 4}
	out := &fakeTexture{label: "out", w: 4, h: 4}

	tests := []struct {
		name string
		pass Pass
		ok   bool
	}{
		{"single input", Pass{Technique: TechniqueDownScale4x4, Target: out, Inputs: []Texture{a}}, true},
		{"missing target", Pass{Technique: TechniqueDownScale4x4, Inputs: []Texture{a}}, false},
		{"too many inputs", Pass{Technique: TechniqueGaussBlur5x5, Target: out, Inputs: []Texture{a, b}}, false},
		{"bright pass needs adapted", Pass{Technique: TechniqueBrightPassFilter, Target: out, Inputs: []Texture{a}}, false},
		{"final pass", Pass{Technique: TechniqueFinalScenePass, Target: out, Inputs: []Texture{a, b, c, d}}, true},
		{"merge of three", Pass{Technique: TechniqueMergeTextures, Target: out, Inputs: []Texture{a, b, c}}, true},
		{"reads own target", Pass{Technique: TechniqueStar, Target: out, Inputs: []Texture{out}}, false},
		{"nil input", Pass{Technique: TechniqueStar, Target: out, Inputs: []Texture{nil}}, false},
		{"unknown technique", Pass{Technique: Technique(99), Target: out, Inputs: []Texture{a}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pass.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidPass)
			}
		})
	}

	tooMany := Pass{Technique: TechniqueMergeTextures, Target: out, Inputs: make([]Texture, MaxMergeInputs+1)}
	assert.ErrorIs(t, tooMany.Validate(), ErrInvalidPass)
}
