package validation

import (
	"fmt"
	"strings"
)

// MaxPromptLength caps prompts at what the upstream model accepts; stored
// prompts themselves are arbitrary-length text.
const MaxPromptLength = 2048

// ValidatePrompt checks a prompt for generation requests
func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("prompt is required")
	}
	if len(prompt) > MaxPromptLength {
		return fmt.Errorf("prompt too long: maximum length is %d characters", MaxPromptLength)
	}
	return nil
}
