package software

import (
	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess"
)

// shader evaluates one technique at a texture coordinate.
type shader func(u, v float32) [4]float32

// bindTechnique resolves the pass inputs once and returns the per-pixel program.
func bindTechnique(p *postprocess.Pass, inputs []*texture) shader {
	params := &p.Params
	src := inputs[0]

	switch p.Technique {
	case postprocess.TechniqueDownScale4x4, postprocess.TechniqueDownScale2x2, postprocess.TechniqueResampleAvgLum:
		return func(u, v float32) [4]float32 {
			return average(src, params, u, v)
		}

	case postprocess.TechniqueResampleAvgLumExp:
		return func(u, v float32) [4]float32 {
			l := math32.Exp(average(src, params, u, v)[0])
			return [4]float32{l, l, l, 1}
		}

	case postprocess.TechniqueSampleAvgLum:
		return func(u, v float32) [4]float32 {
			var sum float32
			for i := range params.SampleCount {
				o := params.Offsets[i]
				sum += postprocess.LogLuminance(src.Sample(u+o[0], v+o[1]))
			}
			if params.SampleCount > 0 {
				sum /= float32(params.SampleCount)
			}
			return [4]float32{sum, sum, sum, 1}
		}

	case postprocess.TechniqueCalculateAdaptedLum:
		last := inputs[0].Texel(0, 0)[0]
		measured := inputs[1].Texel(0, 0)[0]
		l := postprocess.AdaptedLuminance(last, measured, params.ElapsedTime)
		return func(float32, float32) [4]float32 {
			return [4]float32{l, l, l, 1}
		}

	case postprocess.TechniqueBrightPassFilter:
		adapted := inputs[1].Texel(0, 0)[0]
		return func(u, v float32) [4]float32 {
			return postprocess.BrightPass(src.Sample(u, v), adapted, params.MiddleGray)
		}

	case postprocess.TechniqueGaussBlur5x5, postprocess.TechniqueBloom, postprocess.TechniqueStar:
		return func(u, v float32) [4]float32 {
			return weightedSum(src, params, u, v)
		}

	case postprocess.TechniqueMergeTextures:
		return func(u, v float32) [4]float32 {
			var out [4]float32
			for i, in := range inputs {
				c := in.Sample(u, v)
				w := params.Weights[i]
				for k := range 4 {
					out[k] += c[k] * w[k]
				}
			}
			return out
		}

	case postprocess.TechniqueFinalScenePass:
		bloom, star := inputs[1], inputs[2]
		adapted := inputs[3].Texel(0, 0)[0]
		return func(u, v float32) [4]float32 {
			return postprocess.FinalColor(src.Sample(u, v), bloom.Sample(u, v), star.Sample(u, v), adapted, params)
		}
	}
	return nil
}

// average is the unweighted mean of the offset samples.
func average(src *texture, p *postprocess.Params, u, v float32) [4]float32 {
	var out [4]float32
	if p.SampleCount == 0 {
		return out
	}
	for i := range p.SampleCount {
		o := p.Offsets[i]
		c := src.Sample(u+o[0], v+o[1])
		for k := range 4 {
			out[k] += c[k]
		}
	}
	n := float32(p.SampleCount)
	for k := range 4 {
		out[k] /= n
	}
	return out
}

func weightedSum(src *texture, p *postprocess.Params, u, v float32) [4]float32 {
	var out [4]float32
	for i := range p.SampleCount {
		o := p.Offsets[i]
		w := p.Weights[i]
		c := src.Sample(u+o[0], v+o[1])
		for k := range 4 {
			out[k] += c[k] * w[k]
		}
	}
	return out
}
