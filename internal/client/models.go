package client

const (
	ProviderGroq       = "Groq"
	ProviderOpenRouter = "OpenRouter"
)

// Providers lists the selectable providers in display order.
func Providers() []string {
	return []string{ProviderGroq, ProviderOpenRouter}
}

// ModelsFor returns the models offered for provider in display order.
// The gateway's allow-list may accept more.
func ModelsFor(provider string) []string {
	switch provider {
	case ProviderGroq:
		return []string{"llama-3.3-70b-versatile", "mixtral-8x7b-32768"}
	case ProviderOpenRouter:
		return []string{"openrouter-llama-3.3-70b", "mixtral-8x7b-32768"}
	default:
		return nil
	}
}
