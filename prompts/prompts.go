package prompts

import (
	_ "embed"
	"strings"
)

//go:embed persona_system.txt
var personaSystem string

// PersonaSystem renders the system instruction sent with remote requests.
// An empty instruction drops the paragraph entirely.
func PersonaSystem(name, instruction string) string {
	out := strings.NewReplacer(
		"{{name}}", name,
		"{{instruction}}", strings.TrimSpace(instruction),
	).Replace(personaSystem)
	if strings.TrimSpace(instruction) == "" {
		out = strings.Replace(out, "\n\n\n\n", "\n\n", 1)
	}
	return strings.TrimSpace(out)
}
