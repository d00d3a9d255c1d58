package usecase

import "strings"

// assemblePrompt merges the caller's messages into one prompt, one message per line.
func assemblePrompt(messages []string) string {
	return strings.Join(messages, "\n")
}
