package admin

import (
	"fmt"
	"sort"
	"sync"
)

// PanelHook lets packages register panels/providers during init().
type PanelHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []PanelHook
)

// RegisterPanelHook registers a hook executed against new registries.
func RegisterPanelHook(h PanelHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry implements PanelRegistry.
type Registry struct {
	mu          sync.RWMutex
	definitions map[Panel]PanelDefinition
	providers   map[Panel]Provider
}

// NewRegistry builds a registry with the default panels and providers.
// chartOpts configure the dashboard chart renderers. Callers run global
// hooks with ApplyHooks so their errors surface.
func NewRegistry(chartOpts ...EChartsProviderOption) *Registry {
	reg := NewEmptyRegistry()
	reg.registerDefaults(chartOpts...)
	return reg
}

// NewEmptyRegistry builds a registry without defaults.
func NewEmptyRegistry() *Registry {
	return &Registry{
		definitions: map[Panel]PanelDefinition{},
		providers:   map[Panel]Provider{},
	}
}

func (r *Registry) registerDefaults(chartOpts ...EChartsProviderOption) {
	for _, def := range DefaultPanelDefinitions() {
		_ = r.RegisterDefinition(def)
	}
	for panel, provider := range defaultProviders(chartOpts...) {
		_ = r.RegisterProvider(panel, provider)
	}
}

// ApplyHooks executes registered panel hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// RegisterDefinition stores panel metadata.
func (r *Registry) RegisterDefinition(def PanelDefinition) error {
	if !def.Panel.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPanel, def.Panel)
	}
	if def.Name == "" {
		def.Name = def.Panel.Label()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[def.Panel] = def
	return nil
}

// RegisterProvider associates a provider with a registered panel.
func (r *Registry) RegisterProvider(panel Panel, provider Provider) error {
	if provider == nil {
		return fmt.Errorf("admin: provider for %s cannot be nil", panel)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.definitions[panel]; !ok {
		return fmt.Errorf("admin: panel %s not registered", panel)
	}
	r.providers[panel] = provider
	return nil
}

// Definition fetches a panel definition.
func (r *Registry) Definition(panel Panel) (PanelDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[panel]
	return def, ok
}

// Provider fetches a panel provider.
func (r *Registry) Provider(panel Panel) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[panel]
	return provider, ok
}

// Definitions returns the registered panels in navigation order.
func (r *Registry) Definitions() []PanelDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]PanelDefinition, 0, len(r.definitions))
	for _, def := range r.definitions {
		defs = append(defs, def)
	}
	sort.SliceStable(defs, func(i, j int) bool {
		return defs[i].Position < defs[j].Position
	})
	return defs
}

// DefaultPanelDefinitions returns the four dashboard panels.
func DefaultPanelDefinitions() []PanelDefinition {
	defs := make([]PanelDefinition, 0, len(panelOrder))
	for i, panel := range panelOrder {
		defs = append(defs, PanelDefinition{
			Panel:    panel,
			Name:     panel.Label(),
			Position: i,
		})
	}
	defs[0].Description = "Library statistics and issuance charts."
	defs[1].Description = "Registered members."
	defs[2].Description = "Book catalog management."
	defs[3].Description = "Borrow and return ledger."
	return defs
}
