package providerbase

import "github.com/prismhq/prism/internal/core"

// Spec is the static description a provider package hands to New.
type Spec struct {
	ID   core.ProviderID
	Info core.ProviderInfo
}

// Base centralizes provider identity/metadata. Provider packages embed this
// and implement only Fetch().
type Base struct {
	spec Spec
}

func New(spec Spec) Base {
	normalized := spec
	if normalized.Info.Name == "" {
		normalized.Info.Name = string(normalized.ID)
	}
	return Base{spec: normalized}
}

func (b Base) ID() core.ProviderID { return b.spec.ID }

func (b Base) Describe() core.ProviderInfo { return b.spec.Info }
