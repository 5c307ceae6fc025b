// Package library exposes the library admin service to host applications.
package library

import (
	"context"
	"errors"
	"fmt"

	core "github.com/goliatone/go-library-admin/components/admin"
	activitypkg "github.com/goliatone/go-library-admin/pkg/activity"
)

// Service exposes the underlying components/admin.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// MenuBuilder ensures panel entries exist within a host admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures panel link metadata.
type MenuItem struct {
	Label    string
	Route    string
	Icon     string
	Position int
}

// Config wires the library service into an admin shell.
type Config struct {
	MenuCode       string
	MenuBuilder    MenuBuilder
	Service        *Service
	BasePath       string
	ActivityHooks  activitypkg.Hooks
	ActivityConfig activitypkg.Config
}

// Admin exposes helpers for admin shells hosting the library panels.
type Admin struct {
	cfg Config
}

var panelIcons = map[core.Panel]string{
	core.PanelDashboard:    "home",
	core.PanelUsers:        "users",
	core.PanelBooks:        "book",
	core.PanelTransactions: "repeat",
}

// New creates an Admin helper. When no service is given one is built from
// the activity settings.
func New(cfg Config) (*Admin, error) {
	if cfg.MenuCode == "" {
		cfg.MenuCode = "admin.main"
	}
	if cfg.BasePath == "" {
		cfg.BasePath = core.DefaultBasePath
	}
	if cfg.Service == nil {
		cfg.Service = NewService(Options{
			ActivityHooks:  cfg.ActivityHooks,
			ActivityConfig: cfg.ActivityConfig,
		})
	}
	return &Admin{cfg: cfg}, nil
}

// Service returns the configured library service.
func (a *Admin) Service() *Service {
	return a.cfg.Service
}

// MenuItems lists one entry per panel in navigation order.
func (a *Admin) MenuItems() []MenuItem {
	panels := core.Panels()
	items := make([]MenuItem, 0, len(panels))
	for idx, panel := range panels {
		items = append(items, MenuItem{
			Label:    panel.Label(),
			Route:    a.cfg.BasePath + "/dashboard?panel=" + string(panel),
			Icon:     panelIcons[panel],
			Position: idx,
		})
	}
	return items
}

// Bootstrap seeds menu entries for every panel.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if a.cfg.MenuBuilder == nil {
		return nil
	}
	var errs []error
	for _, item := range a.MenuItems() {
		if err := a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, item); err != nil {
			errs = append(errs, fmt.Errorf("library: menu item %s: %w", item.Label, err))
		}
	}
	return errors.Join(errs...)
}
