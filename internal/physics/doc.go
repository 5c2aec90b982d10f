// Package physics implements the per-phase particle dynamics of a two-phase
// weakly-compressible liquid.
//
// A [Phase] bundles one fluid body, its neighbour relation and the Riemann
// solver used for pair fluxes. The same pipeline is instantiated once per
// liquid; the controller in package sim drives both through one outer step:
//
//   - [Phase.InitializeStep]: clear interface geometry, write gravity
//   - [Phase.SummateDensity]: kernel density summation and equation of state
//   - [Phase.ViscousAcceleration]: pairwise viscous force
//   - [Phase.DetectSurface], [Phase.ColorGradient], [Phase.RefineNormals]:
//     free-surface and interface reconstruction
//   - [Phase.WettingCorrection]: contact angle at the wall
//   - [Phase.SurfaceTension]: curvature force
//
// followed by an acoustic sub-cycle of [RelaxPressure] and [RelaxDensity]
// over both phases.
//
// Every stage runs per particle through [dynamo.Each]; a particle only writes
// its own slots, so no stage takes a lock.
package physics
