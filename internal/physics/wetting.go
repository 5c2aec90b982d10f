package physics

import (
	"math"
	"sync/atomic"

	"github.com/san-kum/dropsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// WettingCorrection turns the normals of surface particles close to a wall
// towards the prescribed contact angle and re-derives curvature from the
// corrected field. It returns how many normals were changed.
//
// The distance that blends bulk and target normal is measured from the wall
// surface past the first liquid row, so the contact-line row takes the
// contact angle exactly and the correction fades out over one smoothing
// length.
func (p *Phase) WettingCorrection() int {
	if len(p.walls) == 0 {
		return 0
	}
	f := p.Fluid
	h := p.Kernel.H
	dp := p.Params.Spacing
	sin, cos := math.Sincos(p.Params.ContactAngle)

	var corrected atomic.Int64
	dynamo.Each(f.Len(), func(i int) {
		if !f.HasNormal[i] {
			return
		}
		nw, dist, ok := p.nearestWall(i)
		if !ok {
			return
		}
		r := math.Max(0, dist-dp)
		if r >= h {
			return
		}

		n := f.Normal[i]
		t := r2.Sub(n, r2.Scale(r2.Dot(n, nw), nw))
		if r2.Norm(t) < 1e-8 {
			return
		}
		target := r2.Add(r2.Scale(sin, unit(t)), r2.Scale(cos, nw))
		w := r / h
		blend := r2.Add(r2.Scale(w, n), r2.Scale(1-w, target))
		if r2.Norm(blend) < 1e-8 {
			blend = target
		}
		n = unit(blend)

		f.Normal[i] = n
		f.ColorGrad[i] = r2.Scale(-r2.Norm(f.ColorGrad[i]), n)
		corrected.Add(1)
	})

	if corrected.Load() > 0 {
		p.curvature()
	}
	return int(corrected.Load())
}

// nearestWall returns the normal of the closest wall particle to i and the
// wall-normal distance between the two.
func (p *Phase) nearestWall(i int) (r2.Vec, float64, bool) {
	best := math.Inf(1)
	var (
		normal r2.Vec
		dist   float64
	)
	for _, c := range p.walls {
		for _, n := range c.lists[i] {
			if n.R < best {
				best = n.R
				normal = c.wall.Normal[n.J]
				dist = n.R * r2.Dot(n.E, normal)
			}
		}
	}
	return normal, dist, !math.IsInf(best, 1)
}

// ContactAngle is the mean angle between the normal and the wall normal over
// surface particles in the contact-line row. ok is false when no particle
// touches the wall.
func (p *Phase) ContactAngle() (angle float64, ok bool) {
	f := p.Fluid
	sum, count := 0.0, 0
	for i := 0; i < f.Len(); i++ {
		if !f.HasNormal[i] {
			continue
		}
		nw, dist, found := p.nearestWall(i)
		if !found || dist > 1.5*p.Params.Spacing {
			continue
		}
		sum += math.Acos(math.Max(-1, math.Min(1, r2.Dot(f.Normal[i], nw))))
		count++
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// ApparentContactAngle measures the contact angle from the droplet's shape
// instead of its normals, so the wetting correction cannot feed into it. The
// height h of the phase above the wall and the half-width a of its
// contact-line row give the circular-cap angle 2 atan(h/a). ok is false when
// no particle touches a wall.
func (p *Phase) ApparentContactAngle() (angle float64, ok bool) {
	f := p.Fluid
	dp := p.Params.Spacing

	var (
		nw   r2.Vec
		row  []int
		dist []float64
	)
	for i := 0; i < f.Len(); i++ {
		n, d, found := p.nearestWall(i)
		if !found || d > 1.5*dp {
			continue
		}
		nw = r2.Add(nw, n)
		row = append(row, i)
		dist = append(dist, d)
	}
	if len(row) == 0 || r2.Norm(nw) == 0 {
		return 0, false
	}
	nw = unit(nw)
	t := r2.Vec{X: -nw.Y, Y: nw.X}

	// wall surface level along nw; wall particles sit half a spacing inside it
	base := 0.0
	lo, hi := math.Inf(1), math.Inf(-1)
	for k, i := range row {
		base += r2.Dot(f.Pos[i], nw) - (dist[k] - dp/2)
		s := r2.Dot(f.Pos[i], t)
		lo, hi = math.Min(lo, s), math.Max(hi, s)
	}
	base /= float64(len(row))

	top := math.Inf(-1)
	for i := 0; i < f.Len(); i++ {
		top = math.Max(top, r2.Dot(f.Pos[i], nw))
	}
	height := top - base + dp/2
	half := (hi-lo)/2 + dp/2
	return 2 * math.Atan2(height, half), true
}
