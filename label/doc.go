// Package label implements the Label Algebra: the pure, side-effect-free
// functions that decide whether a node's security label is dominated by a
// principal's clearance, and that collect the set of tokens a write
// request body requires its author to hold.
package label
