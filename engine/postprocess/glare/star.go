package glare

import (
	"github.com/chewxy/math32"
)

// StarType enumerates the base streak shapes.
type StarType int

const (
	StarDisable StarType = iota
	StarCross
	StarCrossFilter
	StarSnowCross
	StarVertical
	StarSunnyCross
	starTypeCount
)

// ChromaticAberration holds the eight tints applied across the taps of a streak pass.
var ChromaticAberration = [8][4]float32{
	{0.5, 0.5, 0.5, 0},
	{0.8, 0.3, 0.3, 0},
	{1.0, 0.2, 0.2, 0},
	{0.5, 0.2, 0.6, 0},
	{0.2, 0.2, 1.0, 0},
	{0.2, 0.3, 0.7, 0},
	{0.2, 0.6, 0.2, 0},
	{0.3, 0.5, 0.3, 0},
}

// StarLine describes one streak direction.
type StarLine struct {
	Passes       int
	SampleLength float32
	Attenuation  float32
	Inclination  float32 // radians
}

// StarDef is an immutable set of streak directions.
type StarDef struct {
	Name        string
	Inclination float32 // radians, added to every line
	Lines       []StarLine
}

// LineCount returns the number of streak directions.
func (s StarDef) LineCount() int {
	return len(s.Lines)
}

func radians(deg float32) float32 {
	return deg * math32.Pi / 180
}

// evenStar spreads lines evenly around the full circle.
func evenStar(name string, lines, passes int, length, attenuation, inclinationDeg float32) StarDef {
	def := StarDef{Name: name, Inclination: radians(inclinationDeg)}
	if lines == 0 {
		return def
	}
	step := 2 * math32.Pi / float32(lines)
	for i := range lines {
		def.Lines = append(def.Lines, StarLine{
			Passes:       passes,
			SampleLength: length,
			Attenuation:  attenuation,
			Inclination:  step * float32(i),
		})
	}
	return def
}

// sunnyStar alternates long sharp rays with short soft ones across 8 directions.
func sunnyStar(name string, sharpness, length, inclinationDeg float32) StarDef {
	def := evenStar(name, 8, 3, length, sharpness, inclinationDeg)
	for i := range def.Lines {
		if i%2 == 1 {
			def.Lines[i].SampleLength = length * 0.5
			def.Lines[i].Attenuation = sharpness + 0.05
		}
	}
	return def
}

var starLibrary = [starTypeCount]StarDef{
	StarDisable:     evenStar("Disable", 0, 0, 0, 0, 0),
	StarCross:       evenStar("Cross", 4, 3, 1.0, 0.85, 0),
	StarCrossFilter: evenStar("CrossFilter", 4, 3, 1.0, 0.95, 0),
	StarSnowCross:   evenStar("SnowCross", 6, 3, 1.0, 0.96, 20),
	StarVertical:    evenStar("Vertical", 2, 3, 1.0, 0.96, 0),
	StarSunnyCross:  sunnyStar("SunnyCross", 0.88, 1.0, 0),
}

// Star returns the library definition for t. Unknown types map to StarDisable.
//
// Parameters:
//   - t: the star type
//
// Returns:
//   - StarDef: a copy of the library entry
func Star(t StarType) StarDef {
	if t < 0 || t >= starTypeCount {
		t = StarDisable
	}
	def := starLibrary[t]
	def.Lines = append([]StarLine(nil), def.Lines...)
	return def
}
