// Package testutil provides shared test assertions.
package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertJSONEqual compares two JSON strings for equality, ignoring
// formatting.
func AssertJSONEqual(t *testing.T, expected, actual string, msgAndArgs ...any) {
	t.Helper()

	var expectedJSON, actualJSON any
	require.NoError(t, json.Unmarshal([]byte(expected), &expectedJSON), "expected JSON is invalid")
	require.NoError(t, json.Unmarshal([]byte(actual), &actualJSON), "actual JSON is invalid")

	assert.Equal(t, expectedJSON, actualJSON, msgAndArgs...)
}

// AssertPanics asserts that the function panics.
func AssertPanics(t *testing.T, f func(), msgAndArgs ...any) {
	t.Helper()
	assert.Panics(t, f, msgAndArgs...)
}
