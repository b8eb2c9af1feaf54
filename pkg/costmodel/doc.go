// Package costmodel simulates token-swap routing on a device.
//
// A [Model] holds a placement of logical qubits (tokens) on device vertices.
// Applying a two-qubit gate asks a [PathOracle] for a path between the two
// tokens, finds the heaviest edge on it, and rotates the tokens on either
// side of that edge so that the two gate tokens end up adjacent across it.
// The gate is charged the heaviest edge weight once plus every other edge
// weight times the swap cost. Tokens are left where they moved.
//
// Oracles are cached so that the path from v to u is always the exact
// reverse of the path from u to v:
//
//	oracle := costmodel.BinaryTree(tree)
//	m := costmodel.New(oracle, costmodel.DefaultSwapCost)
//	if err := m.Initialise(start); err != nil { ... }
//	cost, err := m.ApplyAll(gates)
package costmodel
