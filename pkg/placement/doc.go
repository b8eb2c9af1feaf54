// Package placement computes an initial placement of logical qubits onto a
// device.
//
// # Overview
//
// [Place] runs a monomorphism solver (see pkg/wsm) of the pattern graph into
// the augmented device graph under a wall-clock budget:
//
//  1. A quarter of the budget goes to the first pass against the augmented
//     graph. If it finds a complete solution, the rest of the budget refines
//     it.
//  2. If the first pass ends without a complete, conflict-free solution and
//     at least [MinTimeout] remains, a second pass runs against the complete
//     graph built by [CompleteTarget], where every injective mapping is a
//     solution.
//  3. The better of the two validated results is returned.
//
// Solver output is always passed through [Validate], which drops conflicting
// assignments and scores every gate, so the caller gets an injective
// placement together with quality statistics even when the search was cut
// short.
//
// # Errors
//
// Only three conditions are returned as errors: ARITHMETIC_OVERFLOW,
// INVALID_INPUT and INIT_TIMEOUT (solver initialisation used the whole first
// pass budget). Everything else yields a [Result], possibly a poor one.
package placement
