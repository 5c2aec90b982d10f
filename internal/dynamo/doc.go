// Package dynamo provides the shared primitives the simulation packages build on.
//
// The package is intentionally small:
//
//   - [ParallelFor] and [MaxReduce]: chunked data-parallel loops over particles
//   - [StageTimer]: optional wall-clock instrumentation around pipeline stages
//   - domain errors ([ErrInvalidConfig], [ErrDiverged], [ErrStepOrder]) and
//     [SimulationError], which carries the outer-step index of a fatal condition
//
// # Thread Safety
//
// ParallelFor assumes every index writes only to its own slots. Callers are
// responsible for not mutating data that other indices read during the same
// invocation.
package dynamo
