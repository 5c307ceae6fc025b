package admin

import "context"

// Provider fetches the data a panel renders.
type Provider interface {
	Fetch(ctx context.Context, meta PanelContext) (PanelData, error)
}

// ProviderFunc adapts a function into a Provider.
type ProviderFunc func(ctx context.Context, meta PanelContext) (PanelData, error)

// Fetch calls f.
func (f ProviderFunc) Fetch(ctx context.Context, meta PanelContext) (PanelData, error) {
	return f(ctx, meta)
}

// PanelContext contains what providers need to build a panel.
type PanelContext struct {
	Panel      Panel
	Viewer     ViewerContext
	Workspace  Workspace
	Seed       Seed
	Translator TranslationService
}

// PanelData is an opaque payload passed to templates.
type PanelData map[string]any
