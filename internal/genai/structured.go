package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// StripCodeFences removes markdown code-fence lines from a model
// response. Any line whose trimmed form starts with ``` is dropped;
// everything else is kept verbatim. Models frequently wrap JSON in
// ```json fences despite instructions not to.
func StripCodeFences(s string) string {
	lines := strings.Split(s, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// GenerateJSON runs a completion and decodes the fence-stripped
// response into out. Both the synthesizer and the fact-checker go
// through this single path so fence handling cannot diverge.
func GenerateJSON(ctx context.Context, client Client, system, prompt string, out any) error {
	if client == nil {
		return ErrNotConfigured
	}

	raw, err := client.Generate(ctx, system, prompt)
	if err != nil {
		return err
	}

	cleaned := StripCodeFences(raw)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("decoding model response: %w", err)
	}
	return nil
}
