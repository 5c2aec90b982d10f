package physics

import "github.com/san-kum/dropsim/internal/dynamo"

// InitializeStep starts an outer step: the prior acceleration is reset to
// the phase's gravity and last step's interface geometry is cleared.
func (p *Phase) InitializeStep() {
	f := p.Fluid
	dynamo.Each(f.Len(), func(i int) {
		f.AccPrior[i] = f.Gravity
		f.ClearInterface(i)
	})
}
