package game_object

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-hdr/common"
)

func TestDefaults(t *testing.T) {
	g := NewGameObject()
	assert.True(t, g.Enabled())
	assert.Equal(t, [3]float32{1, 1, 1}, g.Scale())
	assert.Nil(t, g.Model())
	assert.Nil(t, g.Material())
	assert.Equal(t, common.IdentityMatrix(), g.ModelMatrix())
}

func TestUpdateIntegratesVelocity(t *testing.T) {
	g := NewGameObject(
		WithPosition([3]float32{-150, 50, 400}),
		WithVelocity([3]float32{-0.2, -0.2, 0}),
		WithRotationSpeed([3]float32{20 * math32.Pi / 180, 0, 0}),
	)
	g.Update(10)

	assert.InDelta(t, -152, g.Position()[0], 1e-4)
	assert.InDelta(t, 48, g.Position()[1], 1e-4)
	assert.InDelta(t, 400, g.Position()[2], 1e-4)
	assert.InDelta(t, 200*math32.Pi/180, g.Rotation()[0], 1e-4)
}

func TestModelMatrix(t *testing.T) {
	g := NewGameObject(WithPosition([3]float32{1, 2, 3}), WithScale([3]float32{5, 5, 5}))
	m := g.ModelMatrix()
	assert.Equal(t, float32(5), m[0])
	assert.Equal(t, float32(5), m[5])
	assert.Equal(t, float32(5), m[10])
	assert.Equal(t, [3]float32{1, 2, 3}, [3]float32{m[12], m[13], m[14]})

	// rotating about X leaves the translation alone
	g.SetRotation([3]float32{1, 0, 0})
	m = g.ModelMatrix()
	p := common.TransformPoint(m[:], [3]float32{})
	require.Equal(t, float32(1), p[3])
	assert.Equal(t, [3]float32{1, 2, 3}, [3]float32{p[0], p[1], p[2]})
}

func TestSetters(t *testing.T) {
	g := NewGameObject(WithEnabled(false), WithID(7))
	assert.False(t, g.Enabled())
	assert.Equal(t, uint64(7), g.ID())
	g.SetEnabled(true)
	g.SetID(9)
	g.SetVelocity([3]float32{1, 0, 0})
	g.SetPosition([3]float32{0, 1, 0})
	g.SetRotationSpeed([3]float32{0, 1, 0})
	g.SetScale([3]float32{2, 2, 2})
	g.Update(1)
	assert.True(t, g.Enabled())
	assert.Equal(t, uint64(9), g.ID())
	assert.Equal(t, [3]float32{1, 1, 0}, g.Position())
	assert.Equal(t, [3]float32{0, 1, 0}, g.Rotation())
	assert.Equal(t, [3]float32{2, 2, 2}, g.Scale())
	assert.Equal(t, [3]float32{1, 0, 0}, g.Velocity())
	assert.Equal(t, [3]float32{0, 1, 0}, g.RotationSpeed())
}
