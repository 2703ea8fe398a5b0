package generation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"fitreport/internal/articulation"
)

const systemInstruction = `You are a health data analyst writing short, factual reports from
daily fitness data. Use only the numbers you are given. Never invent
measurements. Answer with a single JSON object and nothing else.`

// BuildPrompt renders the prompt-input dictionary and the schema's output
// template into the user prompt. Keys are emitted in sorted order so the
// same inputs always yield the same prompt.
func BuildPrompt(inputs map[string]any, schema articulation.Schema) (string, error) {
	var sb strings.Builder

	sb.WriteString("// DATA\n")
	keys := make([]string, 0, len(inputs))
	for k := range inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		data, err := json.Marshal(inputs[k])
		if err != nil {
			return "", fmt.Errorf("failed to encode prompt input %q: %w", k, err)
		}
		fmt.Fprintf(&sb, "%s: %s\n", k, data)
	}

	sb.WriteString("\n// TASK\n")
	if schema.Description != "" {
		sb.WriteString(schema.Description)
		sb.WriteString("\n")
	}
	sb.WriteString("Fill in the template below. Replace every {{placeholder}} with the matching value from DATA ")
	sb.WriteString("and every \"...\" with your own analysis. Keep numbers as JSON numbers.\n")

	sb.WriteString("\n// OUTPUT TEMPLATE\n")
	sb.WriteString(schema.Template)
	sb.WriteString("\n")

	return sb.String(), nil
}
