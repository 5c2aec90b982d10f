package analysis

import (
	"math"
	"sort"
)

// PhaseSeries is the diagnostics history of one liquid phase.
type PhaseSeries struct {
	Phase        string
	Time         []float64
	Mass         []float64
	Kinetic      []float64
	CentroidX    []float64
	CentroidY    []float64
	ContactAngle []float64 // radians, NaN while off the wall
}

// Append adds one sample.
func (s *PhaseSeries) Append(t, mass, kinetic, cx, cy, angle float64) {
	s.Time = append(s.Time, t)
	s.Mass = append(s.Mass, mass)
	s.Kinetic = append(s.Kinetic, kinetic)
	s.CentroidX = append(s.CentroidX, cx)
	s.CentroidY = append(s.CentroidY, cy)
	s.ContactAngle = append(s.ContactAngle, angle)
}

func (s *PhaseSeries) Len() int { return len(s.Time) }

type Summary struct {
	Phase             string
	Samples           int
	MassDrift         float64
	PeakKinetic       float64
	PeakKineticTime   float64
	FinalContactAngle float64 // degrees, NaN if never on the wall
	Travel            float64 // centroid displacement from first to last sample
}

func (s *PhaseSeries) Summary() Summary {
	sum := Summary{Phase: s.Phase, Samples: s.Len(), FinalContactAngle: math.NaN()}
	n := s.Len()
	if n == 0 {
		return sum
	}
	m0 := s.Mass[0]
	for i := 0; i < n; i++ {
		if m0 != 0 {
			sum.MassDrift = math.Max(sum.MassDrift, math.Abs(s.Mass[i]-m0)/math.Abs(m0))
		}
		if s.Kinetic[i] > sum.PeakKinetic {
			sum.PeakKinetic = s.Kinetic[i]
			sum.PeakKineticTime = s.Time[i]
		}
	}
	for i := n - 1; i >= 0; i-- {
		if !math.IsNaN(s.ContactAngle[i]) {
			sum.FinalContactAngle = s.ContactAngle[i] * 180 / math.Pi
			break
		}
	}
	sum.Travel = math.Hypot(s.CentroidX[n-1]-s.CentroidX[0], s.CentroidY[n-1]-s.CentroidY[0])
	return sum
}

// ClosestApproach returns the time and distance at which the centroids of
// two phases were nearest. Samples are matched by index; both series must
// come from the same run.
func ClosestApproach(a, b *PhaseSeries) (t, dist float64, ok bool) {
	n := a.Len()
	if b.Len() < n {
		n = b.Len()
	}
	if n == 0 {
		return 0, 0, false
	}
	dist = math.Inf(1)
	for i := 0; i < n; i++ {
		d := math.Hypot(a.CentroidX[i]-b.CentroidX[i], a.CentroidY[i]-b.CentroidY[i])
		if d < dist {
			dist, t = d, a.Time[i]
		}
	}
	return t, dist, true
}

// Resample linearly interpolates values onto a uniform grid of step dt
// starting at times[0]. times must be increasing.
func Resample(times, values []float64, dt float64) []float64 {
	if len(times) == 0 || len(times) != len(values) || dt <= 0 {
		return nil
	}
	start, end := times[0], times[len(times)-1]
	n := int(math.Floor((end-start)/dt+1e-9)) + 1
	out := make([]float64, n)
	for k := 0; k < n; k++ {
		t := start + float64(k)*dt
		j := sort.SearchFloat64s(times, t)
		switch {
		case j == 0:
			out[k] = values[0]
		case j >= len(times):
			out[k] = values[len(values)-1]
		default:
			t0, t1 := times[j-1], times[j]
			w := (t - t0) / (t1 - t0)
			out[k] = values[j-1] + w*(values[j]-values[j-1])
		}
	}
	return out
}
