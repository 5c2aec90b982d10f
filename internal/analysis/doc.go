// Package analysis post-processes the diagnostics of a finished run.
//
//   - [PowerSpectrum], [DominantFrequency]: oscillation of a droplet's
//     centroid or kinetic energy
//   - [PhaseSeries.Summary]: mass drift, peak kinetic energy, final contact
//     angle
//   - [ClosestApproach]: when the two droplets came nearest each other
//
// Series are expected at the run's output interval; [Resample] puts
// irregular series (a resumed run) back on a uniform grid before any
// spectral analysis.
package analysis
