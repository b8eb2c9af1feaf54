// Package pkg provides the libraries behind qplace, an initial qubit
// placement tool.
//
// # Overview
//
// A quantum circuit acts on logical qubits; a device offers physical qubits
// joined by couplers with a cost (weight). Before a circuit can run, every
// logical qubit needs a physical home, and two-qubit gates whose qubits are
// not adjacent must be routed with SWAP gates. qplace picks the starting
// placement that keeps that routing cheap.
//
// # Architecture
//
// The data flow through qplace:
//
//	circuit gates
//	     ↓
//	[timeslice] weighted pattern graph (who interacts with whom, how early)
//	     ↓
//	[augment]   device graph plus synthetic edges for short multi-hop paths
//	     ↓
//	[placement] weighted subgraph monomorphism search ([wsm])
//	     ↓
//	placement, statistics, rendering ([render/nodelink])
//
// [pipeline] runs the three stages with caching ([cache]), tracing and
// metrics ([observability]). [costmodel] estimates the swap cost of routing
// a circuit from a given placement.
//
// # Support packages
//
//   - [weight]: overflow-checked weight arithmetic
//   - [graph]: weighted undirected graphs and their file formats
//   - [circuit]: gate lists and their file formats
//   - [device]: generated device topologies (line, ring, grid, tree, complete)
//   - [errors]: coded errors shared by the CLI and the HTTP API
//   - [buildinfo]: version information set at link time
//
// [timeslice]: github.com/matzehuels/qplace/pkg/timeslice
// [augment]: github.com/matzehuels/qplace/pkg/augment
// [placement]: github.com/matzehuels/qplace/pkg/placement
// [wsm]: github.com/matzehuels/qplace/pkg/wsm
// [render/nodelink]: github.com/matzehuels/qplace/pkg/render/nodelink
// [pipeline]: github.com/matzehuels/qplace/pkg/pipeline
// [cache]: github.com/matzehuels/qplace/pkg/cache
// [observability]: github.com/matzehuels/qplace/pkg/observability
// [costmodel]: github.com/matzehuels/qplace/pkg/costmodel
// [weight]: github.com/matzehuels/qplace/pkg/weight
// [graph]: github.com/matzehuels/qplace/pkg/graph
// [circuit]: github.com/matzehuels/qplace/pkg/circuit
// [device]: github.com/matzehuels/qplace/pkg/device
// [errors]: github.com/matzehuels/qplace/pkg/errors
// [buildinfo]: github.com/matzehuels/qplace/pkg/buildinfo
package pkg
