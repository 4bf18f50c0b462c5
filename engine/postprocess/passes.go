package postprocess

import (
	"log"

	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess/glare"
	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess/kernel"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/material"
)

const (
	starSamples   = 8
	starMaxPasses = 3
)

var starWhite = [4]float32{0.63, 0.63, 0.63, 0}

// draw submits one pass; failures are logged and the frame carries on.
func (h *hdr) draw(p Pass) {
	if err := h.dev.Draw(p); err != nil {
		log.Printf("[HDR] %s pass into %s failed: %v", p.Technique, p.Target.Label(), err)
	}
}

func (h *hdr) clear(t Texture) {
	if err := h.dev.Clear(t, [4]float32{}); err != nil {
		log.Printf("[HDR] clearing %s failed: %v", t.Label(), err)
	}
}

func (h *hdr) renderScene(view, projection [16]float32, draw SceneDrawer) {
	pass := ScenePass{
		Target:     h.t.scene,
		Clear:      true,
		View:       view,
		Projection: projection,
		Light:      h.sunLight(),
		Meshes:     []MeshDraw{h.sunDraw()},
	}
	if draw != nil {
		draw(&pass)
	}
	if err := h.dev.DrawScene(pass); err != nil {
		log.Printf("[HDR] scene pass failed: %v", err)
	}
}

// sceneToSceneScaled reduces the centered crop of the scene by 4x4.
func (h *hdr) sceneToSceneScaled() {
	bb := h.dev.BackBuffer()
	src := Rect{
		X: (bb.Width() - h.t.cropW) / 2,
		Y: (bb.Height() - h.t.cropH) / 2,
		W: h.t.cropW,
		H: h.t.cropH,
	}
	p := Pass{
		Technique: TechniqueDownScale4x4,
		Target:    h.t.sceneScaled,
		Inputs:    []Texture{h.t.scene},
		Coords:    TextureCoords(h.t.scene, &src, h.t.sceneScaled, nil),
	}
	p.Params.SetSamples(kernel.DownScale4x4(bb.Width(), bb.Height()))
	h.draw(p)
}

// measureLuminance reduces the scaled scene to the 1x1 average luminance in toneMap[0].
func (h *hdr) measureLuminance() {
	full := CoordRect{U1: 1, V1: 1}
	cur := NumToneMapTextures - 1

	p := Pass{
		Technique: TechniqueSampleAvgLum,
		Target:    h.t.toneMap[cur],
		Inputs:    []Texture{h.t.sceneScaled},
		Coords:    full,
	}
	p.Params.SetSamples(kernel.LuminanceSample3x3(h.t.toneMap[cur].Width(), h.t.toneMap[cur].Height()))
	h.draw(p)

	for cur--; cur > 0; cur-- {
		src := h.t.toneMap[cur+1]
		p := Pass{
			Technique: TechniqueResampleAvgLum,
			Target:    h.t.toneMap[cur],
			Inputs:    []Texture{src},
			Coords:    full,
		}
		p.Params.SetSamples(kernel.DownScale4x4(src.Width(), src.Height()))
		h.draw(p)
	}

	src := h.t.toneMap[1]
	p = Pass{
		Technique: TechniqueResampleAvgLumExp,
		Target:    h.t.toneMap[0],
		Inputs:    []Texture{src},
		Coords:    full,
	}
	p.Params.SetSamples(kernel.DownScale4x4(src.Width(), src.Height()))
	h.draw(p)
}

// calculateAdaptation swaps the adaptation pair and moves the current slot toward the
// measured luminance.
func (h *hdr) calculateAdaptation() {
	a := &h.t.adaptation
	a.Swap()
	p := Pass{
		Technique: TechniqueCalculateAdaptedLum,
		Target:    a.Current(),
		Inputs:    []Texture{a.Last(), h.t.toneMap[0]},
		Coords:    CoordRect{U1: 1, V1: 1},
	}
	p.Params.ElapsedTime = h.elapsed
	h.elapsed = 0
	h.draw(p)
}

func (h *hdr) sceneScaledToBrightPass() {
	src := TextureRect(h.t.sceneScaled).Inset(1)
	dst := TextureRect(h.t.brightPass).Inset(1)
	p := Pass{
		Technique: TechniqueBrightPassFilter,
		Target:    h.t.brightPass,
		Inputs:    []Texture{h.t.sceneScaled, h.t.adaptation.Current()},
		Coords:    TextureCoords(h.t.sceneScaled, &src, h.t.brightPass, &dst),
		Scissor:   &dst,
	}
	p.Params.MiddleGray = h.keyValue
	h.draw(p)
}

func (h *hdr) brightPassToStarSource() {
	dst := TextureRect(h.t.starSource).Inset(1)
	p := Pass{
		Technique: TechniqueGaussBlur5x5,
		Target:    h.t.starSource,
		Inputs:    []Texture{h.t.brightPass},
		Coords:    TextureCoords(h.t.brightPass, nil, h.t.starSource, &dst),
		Scissor:   &dst,
	}
	p.Params.SetSamples(kernel.GaussBlur5x5(h.t.brightPass.Width(), h.t.brightPass.Height(), 1))
	h.draw(p)
}

func (h *hdr) starSourceToBloomSource() {
	src := TextureRect(h.t.starSource).Inset(1)
	dst := TextureRect(h.t.bloomSource).Inset(1)
	p := Pass{
		Technique: TechniqueDownScale2x2,
		Target:    h.t.bloomSource,
		Inputs:    []Texture{h.t.starSource},
		Coords:    TextureCoords(h.t.starSource, &src, h.t.bloomSource, &dst),
		Scissor:   &dst,
	}
	p.Params.SetSamples(kernel.DownScale2x2(h.t.brightPass.Width(), h.t.brightPass.Height()))
	h.draw(p)
}

// renderBloom blurs the bloom source separably into bloom[0].
func (h *hdr) renderBloom() {
	h.clear(h.t.bloom[0])
	if h.glareDef.GlareLuminance <= 0 || h.glareDef.BloomLuminance <= 0 {
		return
	}

	src := TextureRect(h.t.bloomSource).Inset(1)
	dst := TextureRect(h.t.bloom[2]).Inset(1)
	coords := TextureCoords(h.t.bloomSource, &src, h.t.bloom[2], &dst)

	p := Pass{
		Technique: TechniqueGaussBlur5x5,
		Target:    h.t.bloom[2],
		Inputs:    []Texture{h.t.bloomSource},
		Coords:    coords,
		Scissor:   &dst,
	}
	p.Params.SetSamples(kernel.GaussBlur5x5(h.t.bloomSource.Width(), h.t.bloomSource.Height(), 1))
	h.draw(p)

	p = Pass{
		Technique: TechniqueBloom,
		Target:    h.t.bloom[1],
		Inputs:    []Texture{h.t.bloom[2]},
		Coords:    coords,
		Scissor:   &dst,
	}
	p.Params.SetLine(kernel.Bloom(h.t.bloom[2].Width(), 3, 2), true)
	h.draw(p)

	src = TextureRect(h.t.bloom[1]).Inset(1)
	p = Pass{
		Technique: TechniqueBloom,
		Target:    h.t.bloom[0],
		Inputs:    []Texture{h.t.bloom[1]},
		Coords:    TextureCoords(h.t.bloom[1], &src, h.t.bloom[0], nil),
	}
	p.Params.SetLine(kernel.Bloom(h.t.bloom[1].Height(), 3, 2), false)
	h.draw(p)
}

// renderStar expands each streak direction from the star source and merges them into star[0].
func (h *hdr) renderStar() {
	h.clear(h.t.star[0])
	if h.glareDef.GlareLuminance <= 0 || h.glareDef.StarLuminance <= 0 {
		return
	}

	def := glare.Star(h.glareDef.Star)
	lines := min(def.LineCount(), MaxMergeInputs)
	if lines == 0 {
		return
	}
	srcW, srcH := float32(h.t.starSource.Width()), float32(h.t.starSource.Height())
	colors := StarColors(h.glareDef.ChromaticAberration)
	radOffset := h.glareDef.StarInclination + def.Inclination
	full := CoordRect{U1: 1, V1: 1}

	for d := range lines {
		source := h.t.starSource
		work := 1
		steps := StarLinePasses(def.Lines[d], radOffset, colors, srcW, srcH)
		for p, params := range steps {
			target := h.t.star[work]
			if p == len(steps)-1 {
				target = h.t.star[starLineBase+d]
			}
			h.draw(Pass{
				Technique: TechniqueStar,
				Target:    target,
				Inputs:    []Texture{source},
				Coords:    full,
				Params:    params,
			})
			source = h.t.star[work]
			work++
			if work > 2 {
				work = 1
			}
		}
	}

	merge := Pass{
		Technique: TechniqueMergeTextures,
		Target:    h.t.star[0],
		Inputs:    h.t.star[starLineBase : starLineBase+lines],
		Coords:    full,
	}
	w := 1 / float32(lines)
	for i := range lines {
		merge.Params.Weights[i] = [4]float32{w, w, w, w}
	}
	merge.Params.SampleCount = lines
	h.draw(merge)
}

// finalScenePass tone maps the scene into the back buffer and adds the glare textures. The
// blend is additive so the starfield already in the back buffer stays visible.
func (h *hdr) finalScenePass() {
	p := Pass{
		Technique: TechniqueFinalScenePass,
		Target:    h.dev.BackBuffer(),
		Inputs:    []Texture{h.t.scene, h.t.bloom[0], h.t.star[0], h.t.adaptation.Current()},
		Coords:    CoordRect{U1: 1, V1: 1},
		// One/one, the state the star passes leave enabled, not source-alpha blending.
		Blend: material.BlendAdditive,
	}
	p.Params.MiddleGray = h.keyValue
	p.Params.BloomScale = h.bloomScale
	p.Params.StarScale = h.starScale
	p.Params.ToneMap = h.toneMap
	p.Params.BlueShift = h.blueShift
	h.draw(p)
}

// StarColors builds the per-pass, per-tap streak tints: each tap's chromatic aberration color
// fades toward white as the passes progress, and the whole set is blended from white by the
// aberration strength.
//
// Parameters:
//   - aberration: chromatic aberration strength of the glare preset
//
// Returns:
//   - [3][8][4]float32: tints indexed by pass and tap
func StarColors(aberration float32) [starMaxPasses][starSamples][4]float32 {
	var out [starMaxPasses][starSamples][4]float32
	for p := range starMaxPasses {
		ratio := float32(p+1) / starMaxPasses
		for s := range starSamples {
			tinted := common.Lerp4(glare.ChromaticAberration[s], starWhite, ratio)
			out[p][s] = common.Lerp4(starWhite, tinted, aberration)
		}
	}
	return out
}

// StarLinePasses computes the parameters of every expansion pass along one streak. Each pass
// samples 8 taps along the streak; the step length and attenuation exponent grow 8x per pass.
// Taps that would reach 0.9 of the texture away are zeroed.
//
// Parameters:
//   - line: the streak direction
//   - radOffset: inclination added to the line's own
//   - colors: tints from StarColors
//   - srcW, srcH: star source size
//
// Returns:
//   - []Params: one parameter block per pass
func StarLinePasses(line glare.StarLine, radOffset float32, colors [starMaxPasses][starSamples][4]float32, srcW, srcH float32) []Params {
	sn, cs := math32.Sincos(radOffset + line.Inclination)
	stepU := sn / srcW * line.SampleLength
	stepV := cs / srcH * line.SampleLength
	attnPowScale := (math32.Atan(math32.Pi/8) + 0.1) * (160 + 120) / (srcW + srcH) * 1.2

	out := make([]Params, line.Passes)
	for p := range line.Passes {
		tint := colors[common.Clamp(line.Passes-1-p, 0, starMaxPasses-1)]
		params := &out[p]
		params.SampleCount = starSamples
		for i := range starSamples {
			lum := math32.Pow(line.Attenuation, attnPowScale*float32(i))
			scale := lum * float32(p+1) * 0.5
			w := tint[i]
			params.Weights[i] = [4]float32{w[0] * scale, w[1] * scale, w[2] * scale, w[3] * scale}
			params.Offsets[i] = [2]float32{stepU * float32(i), stepV * float32(i)}
			if math32.Abs(params.Offsets[i][0]) >= 0.9 || math32.Abs(params.Offsets[i][1]) >= 0.9 {
				params.Offsets[i] = [2]float32{}
				params.Weights[i] = [4]float32{}
			}
		}
		stepU *= starSamples
		stepV *= starSamples
		attnPowScale *= starSamples
	}
	return out
}
