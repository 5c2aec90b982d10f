package main

import (
	"math"
	"testing"

	"github.com/san-kum/dropsim/internal/storage"
)

func TestParseSweep(t *testing.T) {
	names, ranges, err := parseSweep([]string{"contact_angle=60, 90,120", "surface_tension=0.01"})
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "contact_angle" || names[1] != "surface_tension" {
		t.Errorf("unexpected names %v", names)
	}
	if len(ranges[0]) != 3 || ranges[0][1] != 90 || ranges[1][0] != 0.01 {
		t.Errorf("unexpected ranges %v", ranges)
	}

	for _, bad := range []string{"contact_angle", "contact_angle=a,b"} {
		if _, _, err := parseSweep([]string{bad}); err == nil {
			t.Errorf("expected an error for %q", bad)
		}
	}
}

func TestFillNaN(t *testing.T) {
	got := fillNaN([]float64{math.NaN(), 1, math.NaN(), 3})
	want := []float64{0, 1, 1, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestToMarkers(t *testing.T) {
	particles := []storage.Particle{
		{Phase: "lower", X: 1, Y: 2},
		{Phase: "upper", X: 3, Y: 4, Surface: true},
	}
	markers := toMarkers(particles, []string{"lower", "upper"})
	if markers[0].Phase != 0 || markers[1].Phase != 1 || !markers[1].Surface {
		t.Errorf("unexpected markers %+v", markers)
	}
}
