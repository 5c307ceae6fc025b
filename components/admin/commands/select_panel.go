package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-library-admin/components/admin"
)

// SelectPanelInput switches the visible panel of a session. Panel is the raw
// key as received from a transport.
type SelectPanelInput struct {
	SessionID string `json:"session_id"`
	Panel     string `json:"panel"`
}

type panelSelector interface {
	SelectPanel(ctx context.Context, sessionID string, panel admin.Panel) error
}

// SelectPanelCommand parses the panel key and forwards it to the service.
type SelectPanelCommand struct {
	service   panelSelector
	telemetry Telemetry
}

// NewSelectPanelCommand creates the command.
func NewSelectPanelCommand(service panelSelector, telemetry Telemetry) *SelectPanelCommand {
	return &SelectPanelCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SelectPanelInput] = (*SelectPanelCommand)(nil)

// Execute selects the panel. Unknown keys fail with admin.ErrUnknownPanel.
func (c *SelectPanelCommand) Execute(ctx context.Context, msg SelectPanelInput) error {
	if c.service == nil {
		return errors.New("select panel command requires service")
	}
	if msg.SessionID == "" {
		return admin.ErrMissingSession
	}
	panel, err := admin.ParsePanel(msg.Panel)
	if err != nil {
		return err
	}
	if err := c.service.SelectPanel(ctx, msg.SessionID, panel); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "library.command.select_panel", map[string]any{
		"session_id": msg.SessionID,
		"panel":      string(panel),
	})
	return nil
}
