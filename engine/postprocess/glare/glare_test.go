package glare

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibraryInvariants(t *testing.T) {
	for _, typ := range Types() {
		def := Lookup(typ)
		t.Run(def.Name, func(t *testing.T) {
			assert.NotEmpty(t, def.Name)
			assert.GreaterOrEqual(t, def.GlareLuminance, float32(0))
			assert.GreaterOrEqual(t, def.BloomLuminance, float32(0))
			assert.GreaterOrEqual(t, def.StarLuminance, float32(0))

			star := Star(def.Star)
			if def.StarLuminance > 0 {
				assert.NotZero(t, star.LineCount(), "a lit star needs at least one line")
			}
			for _, line := range star.Lines {
				assert.Positive(t, line.Passes)
				assert.LessOrEqual(t, line.Passes, 3)
				assert.Positive(t, line.SampleLength)
				assert.Greater(t, line.Attenuation, float32(0))
				assert.Less(t, line.Attenuation, float32(1))
			}
		})
	}
}

func TestDisableSwitchesGlareOff(t *testing.T) {
	def := Lookup(Disable)
	assert.Zero(t, def.GlareLuminance)
	assert.Zero(t, def.StarLuminance)
	assert.Zero(t, Star(def.Star).LineCount())
}

func TestStarLinesSpreadEvenly(t *testing.T) {
	snow := Star(StarSnowCross)
	require.Equal(t, 6, snow.LineCount())
	assert.InDelta(t, radians(20), snow.Inclination, 1e-6)
	for i, line := range snow.Lines {
		assert.InDelta(t, float32(i)*math32.Pi/3, line.Inclination, 1e-5)
	}

	sunny := Star(StarSunnyCross)
	require.Equal(t, 8, sunny.LineCount())
	assert.Greater(t, sunny.Lines[0].SampleLength, sunny.Lines[1].SampleLength)
}

func TestStarReturnsCopy(t *testing.T) {
	a := Star(StarCross)
	a.Lines[0].Attenuation = 0
	assert.NotZero(t, Star(StarCross).Lines[0].Attenuation)
	assert.Equal(t, "Disable", Star(StarType(99)).Name)
}

func TestNextCycles(t *testing.T) {
	seen := map[Type]bool{}
	typ := Default
	for range Types() {
		seen[typ] = true
		typ = typ.Next()
	}
	assert.Equal(t, Default, typ)
	assert.Len(t, seen, len(Types()))
	assert.Equal(t, Disable, CineCamHorizontal.Next())
	assert.Equal(t, Disable, Type(-3).Next())
}

func TestParse(t *testing.T) {
	typ, err := Parse("spectral snow cross")
	require.NoError(t, err)
	assert.Equal(t, SnowCrossSpectral, typ)

	_, err = Parse("fisheye")
	assert.Error(t, err)
}

func TestLookupUnknown(t *testing.T) {
	assert.Equal(t, Lookup(Disable), Lookup(Type(42)))
	assert.False(t, Type(42).Valid())
}
