// Package snapshot provides the recursive tree that aggregated metric state
// is rendered into.
//
// # Overview
//
// A Tree is an insertion-ordered collection of named fields. Each field holds
// a scalar leaf (integer, unsigned integer, float, boolean, text) or a nested
// Tree. Panels and instruments write their state into a Tree on demand; the
// tree is then serialized, walked by exporters, or inspected in tests.
//
// Field order is the order instruments were wired in, which keeps serialized
// output stable across snapshots. Setting a name that already exists replaces
// the value in place without moving the field.
//
// # Serialization
//
// Tree implements json.Marshaler, preserving field order:
//
//	tree := snapshot.NewTree()
//	tree.SetUint("hits", 42)
//	sub := snapshot.NewTree()
//	sub.SetFloat("rate", 0.5)
//	tree.SetTree("one_minute", sub)
//
//	data, _ := json.Marshal(tree) // {"hits":42,"one_minute":{"rate":0.5}}
//
// Non-finite floats serialize as null since JSON has no representation for
// them.
package snapshot
