package classifier

import (
	"strings"

	"github.com/zoneheat/zoneheat/internal/zone"
)

const promptInstruction = `Respond with only the zone name (for example: "zone3 - ACES") and nothing else. Do not explain your reasoning.`

// buildPrompt embeds the query and the zone catalogue in a fixed instruction.
func buildPrompt(reg *zone.Registry, query string) string {
	var b strings.Builder
	b.WriteString("Given the following zones and their themes:\n")
	for _, z := range reg.All() {
		b.WriteString(z.ID)
		b.WriteString(" - ")
		b.WriteString(z.Theme)
		b.WriteByte('\n')
	}
	b.WriteString("\nWhich zone best matches this visitor interest: \"")
	b.WriteString(query)
	b.WriteString("\"?\n")
	b.WriteString(promptInstruction)
	return b.String()
}

// generateRequest is the request body of the generateContent call.
type generateRequest struct {
	Prompt          promptText `json:"prompt"`
	MaxOutputTokens int        `json:"maxOutputTokens"`
}

type promptText struct {
	Text string `json:"text"`
}
