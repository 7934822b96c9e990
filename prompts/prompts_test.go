package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPersonaSystem(t *testing.T) {
	got := PersonaSystem("Elsie Tanner", "You keep the Gull Rock light.")

	assert.True(t, strings.HasPrefix(got, "You are Elsie Tanner."))
	assert.Contains(t, got, "You keep the Gull Rock light.")
	assert.NotContains(t, got, "{{")
}

func TestPersonaSystemWithoutInstruction(t *testing.T) {
	got := PersonaSystem("Elsie Tanner", "  ")

	assert.NotContains(t, got, "{{")
	assert.NotContains(t, got, "\n\n\n")
}
