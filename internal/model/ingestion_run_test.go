package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowIssues_ValueScan(t *testing.T) {
	issues := RowIssues{{Row: 5, Field: "work", Value: "abc", Message: "not a number"}}

	v, err := issues.Value()
	require.NoError(t, err)

	var decoded RowIssues
	require.NoError(t, decoded.Scan(v))
	assert.Equal(t, issues, decoded)

	require.NoError(t, decoded.Scan([]byte(`[]`)))
	assert.Empty(t, decoded)
}

func TestRowIssues_NilValue(t *testing.T) {
	var issues RowIssues
	v, err := issues.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var decoded RowIssues
	require.NoError(t, decoded.Scan(nil))
	assert.NotNil(t, decoded)
}
