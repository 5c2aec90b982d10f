// Package kernel provides the smoothing kernel shared by every particle interaction.
package kernel

import "math"

// SmoothingRatio is the ratio of smoothing length to particle spacing.
const SmoothingRatio = 1.3

// WendlandC2 is the 2-D Wendland C2 kernel with compact support 2h.
type WendlandC2 struct {
	H      float64
	factor float64
}

func NewWendlandC2(spacing float64) *WendlandC2 {
	h := SmoothingRatio * spacing
	return &WendlandC2{H: h, factor: 7.0 / (4.0 * math.Pi * h * h)}
}

// Cutoff is the support radius.
func (k *WendlandC2) Cutoff() float64 { return 2.0 * k.H }

// W evaluates the kernel at distance r.
func (k *WendlandC2) W(r float64) float64 {
	q := r / k.H
	if q >= 2.0 {
		return 0
	}
	s := 1.0 - 0.5*q
	return k.factor * s * s * s * s * (1.0 + 2.0*q)
}

// DW is dW/dr, never positive.
func (k *WendlandC2) DW(r float64) float64 {
	q := r / k.H
	if q >= 2.0 {
		return 0
	}
	s := 1.0 - 0.5*q
	return -5.0 * q * s * s * s * k.factor / k.H
}

// W0 is the self contribution W(0).
func (k *WendlandC2) W0() float64 { return k.factor }

// LatticeSum returns Σ V W(r) over a complete square lattice of the given
// spacing, self included. It is the fully-immersed reference for number
// density and colour sums and is close to, but not exactly, one.
func (k *WendlandC2) LatticeSum(spacing float64) float64 {
	reach := int(math.Ceil(k.Cutoff()/spacing)) + 1
	vol := spacing * spacing
	sum := 0.0
	for i := -reach; i <= reach; i++ {
		for j := -reach; j <= reach; j++ {
			r := math.Hypot(float64(i)*spacing, float64(j)*spacing)
			sum += vol * k.W(r)
		}
	}
	return sum
}
