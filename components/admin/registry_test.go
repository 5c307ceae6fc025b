package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryRegistersDefaults(t *testing.T) {
	reg := NewRegistry()
	defs := reg.Definitions()
	require.Len(t, defs, 4)
	for i, panel := range Panels() {
		assert.Equal(t, panel, defs[i].Panel)
		_, ok := reg.Provider(panel)
		assert.True(t, ok, "provider for %s", panel)
	}
}

func TestRegistryRejectsUnknownPanels(t *testing.T) {
	reg := NewEmptyRegistry()
	assert.ErrorIs(t, reg.RegisterDefinition(PanelDefinition{Panel: "reports"}), ErrUnknownPanel)
	assert.Error(t, reg.RegisterProvider(PanelBooks, ProviderFunc(func(context.Context, PanelContext) (PanelData, error) {
		return nil, nil
	})), "definition must exist first")
	assert.Error(t, reg.RegisterProvider(PanelBooks, nil))
}

func TestRegistryDefaultsName(t *testing.T) {
	reg := NewEmptyRegistry()
	require.NoError(t, reg.RegisterDefinition(PanelDefinition{Panel: PanelTransactions}))
	def, ok := reg.Definition(PanelTransactions)
	require.True(t, ok)
	assert.Equal(t, "Borrow/Return", def.Name)
}

func TestRegistryApplyHooksRunsOnceAndReturnsErrors(t *testing.T) {
	calls := 0
	RegisterPanelHook(func(reg *Registry) error {
		calls++
		return errors.New("hook failed")
	})
	t.Cleanup(func() {
		globalHookMu.Lock()
		globalHooks = globalHooks[:len(globalHooks)-1]
		globalHookMu.Unlock()
	})

	reg := NewRegistry()
	assert.Equal(t, 0, calls)

	err := reg.ApplyHooks()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hook failed")
	assert.Equal(t, 1, calls)
}
