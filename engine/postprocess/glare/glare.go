// Package glare holds the library of lens glare and star streak definitions the HDR
// pipeline draws its bloom and star passes from.
package glare

import (
	"fmt"
	"strings"
)

// Type enumerates the glare presets.
type Type int

const (
	Disable Type = iota
	Camera
	Natural
	CheapLens
	CrossScreen
	CrossScreenSpectral
	SnowCross
	SnowCrossSpectral
	SunnyCross
	SunnyCrossSpectral
	CineCamVertical
	CineCamHorizontal
	typeCount
)

// Default is the preset the scene starts with.
const Default = SnowCrossSpectral

// Def is a glare preset. Luminance values of zero switch the matching pass off.
type Def struct {
	Name string

	GlareLuminance  float32
	BloomLuminance  float32
	GhostLuminance  float32
	GhostDistortion float32
	StarLuminance   float32

	Star            StarType
	StarInclination float32 // radians

	ChromaticAberration float32

	AfterimageSensitivity float32
	AfterimageRatio       float32
	AfterimageLuminance   float32
}

func preset(name string, glare, bloom, ghost, distortion, star float32, st StarType,
	inclinationDeg, aberration, sensitivity, ratio, afterLum float32) Def {
	return Def{
		Name:                  name,
		GlareLuminance:        glare,
		BloomLuminance:        bloom,
		GhostLuminance:        ghost,
		GhostDistortion:       distortion,
		StarLuminance:         star,
		Star:                  st,
		StarInclination:       radians(inclinationDeg),
		ChromaticAberration:   aberration,
		AfterimageSensitivity: sensitivity,
		AfterimageRatio:       ratio,
		AfterimageLuminance:   afterLum,
	}
}

var library = [typeCount]Def{
	Disable:             preset("Disable", 0, 0, 0, 0.01, 0, StarDisable, 0, 0.5, 0, 0, 0),
	Camera:              preset("Camera", 1.5, 1.2, 1.0, 0, 1.0, StarCross, 0, 0.5, 0.25, 0.90, 1.0),
	Natural:             preset("Natural Bloom", 1.5, 1.2, 0, 0, 0, StarDisable, 0, 0, 0.40, 0.85, 0.5),
	CheapLens:           preset("Cheap Lens Camera", 1.25, 2.0, 1.5, 0.05, 2.0, StarCross, 0, 0.5, 0.18, 0.95, 1.0),
	CrossScreen:         preset("Cross Screen Filter", 1.0, 2.0, 1.7, 0, 1.5, StarCrossFilter, 25, 0.5, 0.20, 0.93, 1.0),
	CrossScreenSpectral: preset("Spectral Cross Filter", 1.0, 2.0, 1.7, 0, 1.8, StarCrossFilter, 70, 1.5, 0.20, 0.93, 1.0),
	SnowCross:           preset("Snow Cross Filter", 1.0, 2.0, 1.7, 0, 1.5, StarSnowCross, 10, 0.5, 0.20, 0.93, 1.0),
	SnowCrossSpectral:   preset("Spectral Snow Cross", 1.0, 2.0, 1.7, 0, 1.8, StarSnowCross, 40, 1.5, 0.20, 0.93, 1.0),
	SunnyCross:          preset("Sunny Cross Filter", 1.0, 2.0, 1.7, 0, 1.5, StarSunnyCross, 0, 0.5, 0.20, 0.93, 1.0),
	SunnyCrossSpectral:  preset("Spectral Sunny Cross", 1.0, 2.0, 1.7, 0, 1.8, StarSunnyCross, 45, 1.5, 0.20, 0.93, 1.0),
	CineCamVertical:     preset("Cine Camera Vertical Slits", 1.0, 2.0, 1.5, 0, 1.0, StarVertical, 90, 0.5, 0.20, 0.93, 1.0),
	CineCamHorizontal:   preset("Cine Camera Horizontal Slits", 1.0, 2.0, 1.5, 0, 1.0, StarVertical, 0, 0.5, 0.20, 0.93, 1.0),
}

// Lookup returns the preset for t. Unknown types map to Disable.
//
// Parameters:
//   - t: the glare type
//
// Returns:
//   - Def: the preset
func Lookup(t Type) Def {
	if !t.Valid() {
		return library[Disable]
	}
	return library[t]
}

// Valid reports whether t names a preset.
func (t Type) Valid() bool {
	return t >= 0 && t < typeCount
}

// Next returns the preset after t, wrapping back to Disable.
func (t Type) Next() Type {
	if !t.Valid() {
		return Disable
	}
	return (t + 1) % typeCount
}

func (t Type) String() string {
	return Lookup(t).Name
}

// Parse resolves a preset from its display name, case-insensitively.
//
// Parameters:
//   - name: the preset name, e.g. "Spectral Snow Cross"
//
// Returns:
//   - Type: the matching preset
//   - error: error if no preset has that name
func Parse(name string) (Type, error) {
	for i := range typeCount {
		if strings.EqualFold(library[i].Name, strings.TrimSpace(name)) {
			return i, nil
		}
	}
	return Disable, fmt.Errorf("unknown glare type %q", name)
}

// Types returns every preset in library order.
func Types() []Type {
	out := make([]Type, 0, typeCount)
	for i := range typeCount {
		out = append(out, i)
	}
	return out
}
