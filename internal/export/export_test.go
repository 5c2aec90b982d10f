package export

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/dropsim/internal/body"
	"github.com/san-kum/dropsim/internal/geometry"
	"github.com/san-kum/dropsim/internal/kernel"
	"github.com/san-kum/dropsim/internal/material"
	"github.com/san-kum/dropsim/internal/neighbor"
	"github.com/san-kum/dropsim/internal/physics"
	"github.com/san-kum/dropsim/internal/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

const dp = 0.1

func testPhases(t *testing.T) []*physics.Phase {
	t.Helper()
	mat := material.NewWeaklyCompressible(1, 10, 0.05)
	k := kernel.NewWendlandC2(dp)
	var phases []*physics.Phase
	for _, name := range []string{"lower", "upper"} {
		f := body.NewFluid(name, body.Lower, mat, r2.Vec{}, geometry.Lattice(geometry.NewRect(0, 0, 0.3, 0.2), dp), dp*dp)
		p, err := physics.NewPhase(neighbor.Build(f, k), material.Acoustic{}, physics.Params{Spacing: dp, MaxSpeed: 1})
		require.NoError(t, err)
		phases = append(phases, p)
	}
	phases[0].Fluid.Surface[0] = true
	return phases
}

func TestMarkers(t *testing.T) {
	phases := testPhases(t)
	markers := Markers(phases)

	n := phases[0].Fluid.Len()
	require.Len(t, markers, 2*n)
	assert.True(t, markers[0].Surface)
	assert.Equal(t, 0, markers[n-1].Phase)
	assert.Equal(t, 1, markers[n].Phase)
}

func TestParticlesToSVG(t *testing.T) {
	markers := []Marker{{X: 0.5, Y: 0.5}, {X: 0.25, Y: 1, Phase: 1, Surface: true}}
	var buf bytes.Buffer
	require.NoError(t, ParticlesToSVG(&buf, markers, geometry.NewRect(0, 0, 1, 2), 0.05, 100))

	out := buf.String()
	assert.Contains(t, out, `width="100" height="200"`)
	assert.Equal(t, 2, strings.Count(out, "<circle"))
	assert.Contains(t, out, `cx="50.0" cy="150.0"`)
	assert.Contains(t, out, surfaceColor)

	assert.Error(t, ParticlesToSVG(&buf, markers, geometry.NewRect(0, 0, 0, 1), 0.05, 100))
}

func TestSVGWriter(t *testing.T) {
	dir := t.TempDir()
	w := NewSVGWriter(dir, geometry.NewRect(-0.1, -0.1, 0.5, 0.5), dp)
	phases := testPhases(t)

	require.NoError(t, w.WriteSnapshot(sim.Clock{Iteration: 12}, phases))
	data, err := os.ReadFile(filepath.Join(dir, "snapshot_00000012.svg"))
	require.NoError(t, err)
	assert.Equal(t, len(Markers(phases)), strings.Count(string(data), "<circle"))
}

func TestPNGWriter(t *testing.T) {
	dir := t.TempDir()
	w := NewPNGWriter(dir, geometry.NewRect(-0.1, -0.1, 0.5, 0.5))

	require.NoError(t, w.WriteSnapshot(sim.Clock{Time: 0.5, Iteration: 3}, testPhases(t)))
	data, err := os.ReadFile(filepath.Join(dir, "snapshot_00000003.png"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestParticlesPlotRejectsUnknownPhase(t *testing.T) {
	_, err := ParticlesPlot("t", []string{"lower"}, []Marker{{Phase: 1}}, geometry.NewRect(0, 0, 1, 1))
	assert.Error(t, err)
}

func TestSavePlotSkipsNaN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "angle.png")
	line := Line{Name: "lower", X: []float64{0, 1, 2}, Y: []float64{math.NaN(), 2.5, 2.6}}
	require.NoError(t, SavePlot(path, "contact angle", "t", "rad", line))

	_, err := os.Stat(path)
	assert.NoError(t, err)

	bad := Line{Name: "bad", X: []float64{0}, Y: nil}
	assert.Error(t, SavePlot(path, "", "", "", bad))
}

func TestTrajectoryToSVG(t *testing.T) {
	assert.Empty(t, TrajectoryToSVG(nil, 100, 100))

	paths := [][]r2.Vec{
		{{X: 0, Y: 0}, {X: 1, Y: 1}},
		{{X: 1, Y: 0}, {X: 0, Y: 1}},
	}
	out := TrajectoryToSVG(paths, 120, 120)
	assert.Equal(t, 2, strings.Count(out, "<path"))
	assert.Contains(t, out, "M10.0,110.0 L110.0,10.0")
}
