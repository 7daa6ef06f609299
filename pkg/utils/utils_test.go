package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDigits(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "۱۲۰۰", expected: "1200"},
		{input: "٣٥", expected: "35"},
		{input: " 1,200 ", expected: "1200"},
		{input: "42", expected: "42"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeDigits(tt.input), tt.input)
	}
}

func TestGenerateCode(t *testing.T) {
	code := GenerateCode(12)
	require.Len(t, code, 12)
	for _, c := range code {
		assert.Contains(t, charset, string(c))
	}
	assert.NotEqual(t, code, GenerateCode(12))
}

func TestOptional(t *testing.T) {
	var body struct {
		Points      Optional[int]    `json:"points"`
		Description Optional[string] `json:"description"`
		CoreValueID Optional[string] `json:"core_value_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"points": 80, "core_value_id": null}`), &body))

	assert.True(t, body.Points.Present())
	assert.Equal(t, 80, body.Points.Value)
	assert.False(t, body.Description.Set)
	assert.True(t, body.CoreValueID.Set)
	assert.True(t, body.CoreValueID.Null)
	assert.False(t, body.CoreValueID.Present())
}
