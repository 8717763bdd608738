package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/c360/telemetrix/snapshot"
)

// RequireIntLeaf asserts that the tree holds a signed integer leaf with
// the given value at the given path.
func RequireIntLeaf(t testing.TB, tree *snapshot.Tree, want int64, path ...string) {
	t.Helper()

	item, ok := tree.At(path...)
	require.True(t, ok, "no leaf at %s", strings.Join(path, "/"))
	got, ok := item.AsInt()
	require.True(t, ok, "leaf at %s is %s, not int", strings.Join(path, "/"), item.Kind())
	require.Equal(t, want, got, "leaf at %s", strings.Join(path, "/"))
}

// RequireUintLeaf asserts that the tree holds an unsigned integer leaf
// with the given value at the given path.
func RequireUintLeaf(t testing.TB, tree *snapshot.Tree, want uint64, path ...string) {
	t.Helper()

	item, ok := tree.At(path...)
	require.True(t, ok, "no leaf at %s", strings.Join(path, "/"))
	got, ok := item.AsUint()
	require.True(t, ok, "leaf at %s is %s, not uint", strings.Join(path, "/"), item.Kind())
	require.Equal(t, want, got, "leaf at %s", strings.Join(path, "/"))
}

// Number resolves a numeric leaf of any kind and fails the test when the
// path is missing or not numeric.
func Number(t testing.TB, tree *snapshot.Tree, path ...string) float64 {
	t.Helper()

	item, ok := tree.At(path...)
	require.True(t, ok, "no leaf at %s", strings.Join(path, "/"))
	got, ok := item.Number()
	require.True(t, ok, "leaf at %s is %s, not numeric", strings.Join(path, "/"), item.Kind())
	return got
}
