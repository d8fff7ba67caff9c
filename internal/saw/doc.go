// Package saw implements self-avoiding random walks on a square 2D lattice.
//
// A Walker owns a Grid of visit marks and advances one lattice cell at a
// time using one of two stepping algorithms: plain non-reversing sampling
// with blind-alley rejection (Unweighted), or Rosenbluth-Rosenbluth biased
// sampling with importance weights (Weighted). Completed or trapped walks
// are reported as immutable TrialRecords for the aggregation layers in
// ensemble and scaling.
package saw
