package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-library-admin/components/admin"
)

// RefreshCatalogInput emits a catalog event to refresh subscribers.
type RefreshCatalogInput struct {
	Event admin.CatalogEvent
}

type refreshNotifier interface {
	NotifyCatalogUpdated(ctx context.Context, event admin.CatalogEvent) error
}

// RefreshCatalogCommand triggers refresh hooks without forcing transports.
type RefreshCatalogCommand struct {
	service   refreshNotifier
	telemetry Telemetry
}

// NewRefreshCatalogCommand creates the command.
func NewRefreshCatalogCommand(service refreshNotifier, telemetry Telemetry) *RefreshCatalogCommand {
	return &RefreshCatalogCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshCatalogInput] = (*RefreshCatalogCommand)(nil)

// Execute notifies the service's refresh hook.
func (c *RefreshCatalogCommand) Execute(ctx context.Context, msg RefreshCatalogInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	if msg.Event.Reason == "" {
		msg.Event.Reason = "refresh"
	}
	if err := c.service.NotifyCatalogUpdated(ctx, msg.Event); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "library.command.refresh", map[string]any{
		"session_id": msg.Event.SessionID,
		"reason":     msg.Event.Reason,
	})
	return nil
}
