// Package rewriter implements the Pipeline Rewriter: the core
// transformation that, given a resource's labelled paths, a principal,
// and a base aggregation plan, produces a rewritten plan whose execution
// annotates every labelled sub-tree with match booleans, prunes sub-trees
// the principal does not dominate, and strips the annotation metadata
// before the result reaches a client.
//
// The rewriter is pure and total: it never performs I/O and never fails
// on well-typed input. Stage bodies are plain map[string]any values that
// mirror MongoDB's aggregation language ($match, $addFields, $redact,
// $project) exactly as specified, including the string-valued "true"/
// "false" booleans the $setIsSubset tests operate on — an artifact of the
// aggregation language kept confined to this package.
package rewriter
