package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"+15551234567":     "5551234567",
		"15551234567":      "5551234567",
		"(555) 123-4567":   "5551234567",
		"555.123.4567":     "5551234567",
		"5551234567":       "5551234567",
		"+49 151 23456789": "4915123456789",
		"":                 "",
	}

	for raw, want := range cases {
		assert.Equal(t, want, Normalize(raw), "input %q", raw)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"+15551234567", "(555) 123-4567", "5551234567", "12345"}
	for _, raw := range inputs {
		once := Normalize(raw)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%5551234567", LikePattern("+1 (555) 123-4567"))
}
