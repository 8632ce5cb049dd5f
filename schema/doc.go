// Package schema implements the Schema Registry: the tagged tree that
// describes a resource's document shape, the marker that identifies
// label-bearing sub-trees, and the pre-order walk that derives a
// resource's ordered list of labelled paths.
//
// The tree is modeled with explicit variants (Leaf, Object, List) rather
// than walked via untyped key lookups, per the "Schema discovery via type
// introspection" design note: a tagged tree makes the labelled-paths
// computation a straightforward pre-order traversal.
package schema
