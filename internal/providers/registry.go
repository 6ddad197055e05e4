package providers

import (
	"github.com/prismhq/prism/internal/core"
	"github.com/prismhq/prism/internal/providers/claude"
	"github.com/prismhq/prism/internal/providers/gemini"
	"github.com/prismhq/prism/internal/providers/geminimonitoring"
	"github.com/prismhq/prism/internal/providers/openai"
)

func All() []core.Adapter {
	return []core.Adapter{
		claude.New(),
		gemini.New(),
		geminimonitoring.New(),
		openai.New(),
	}
}

// ByID indexes the registry by canonical provider id.
func ByID() map[core.ProviderID]core.Adapter {
	adapters := map[core.ProviderID]core.Adapter{}
	for _, a := range All() {
		adapters[a.ID()] = a
	}
	return adapters
}
