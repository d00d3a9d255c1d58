package domain

import "sort"

// Provider names an upstream source of language-model capability.
type Provider string

const (
	ProviderGroq       Provider = "Groq"
	ProviderOpenRouter Provider = "OpenRouter"
)

// Capability is the kind of external call a provider is served by.
type Capability int

const (
	CapabilityUnknown Capability = iota
	// CapabilityReasoning runs a tool-augmented agent loop.
	CapabilityReasoning
	// CapabilityDirect issues a single completion call with no tools.
	CapabilityDirect
)

func (c Capability) String() string {
	switch c {
	case CapabilityReasoning:
		return "reasoning"
	case CapabilityDirect:
		return "direct"
	default:
		return "unknown"
	}
}

// Capability returns the dispatch variant for p.
func (p Provider) Capability() Capability {
	switch p {
	case ProviderGroq:
		return CapabilityReasoning
	case ProviderOpenRouter:
		return CapabilityDirect
	default:
		return CapabilityUnknown
	}
}

// AllowList maps each provider to the model identifiers it accepts.
// It is built once at startup and only read afterwards.
type AllowList map[Provider]map[string]struct{}

// DefaultAllowList returns the fixed provider/model allow-list.
func DefaultAllowList() AllowList {
	return AllowList{
		ProviderGroq: set(
			"llama3-70b-8192",
			"mixtral-8x7b-32768",
			"llama-3.3-70b-versatile",
		),
		ProviderOpenRouter: set(
			"openrouter-llama-3.3-70b",
			"mixtral-8x7b-32768",
		),
	}
}

func (a AllowList) Has(p Provider) bool {
	_, ok := a[p]
	return ok
}

func (a AllowList) Allows(p Provider, model string) bool {
	models, ok := a[p]
	if !ok {
		return false
	}
	_, ok = models[model]
	return ok
}

// Providers returns the known providers sorted by name.
func (a AllowList) Providers() []string {
	out := make([]string, 0, len(a))
	for p := range a {
		out = append(out, string(p))
	}
	sort.Strings(out)
	return out
}

// Models returns the models allowed for p sorted by name, or nil for an unknown provider.
func (a AllowList) Models(p Provider) []string {
	models, ok := a[p]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(models))
	for m := range models {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

func set(items ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, it := range items {
		out[it] = struct{}{}
	}
	return out
}
