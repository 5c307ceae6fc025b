package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-library-admin/components/admin"
)

// CancelEditInput discards the session's draft.
type CancelEditInput struct {
	SessionID string `json:"session_id"`
}

type editCanceller interface {
	CancelEdit(ctx context.Context, sessionID string) error
}

// CancelEditCommand resets the form.
type CancelEditCommand struct {
	service editCanceller
}

// NewCancelEditCommand creates the command.
func NewCancelEditCommand(service editCanceller) *CancelEditCommand {
	return &CancelEditCommand{service: service}
}

var _ gocommand.Commander[CancelEditInput] = (*CancelEditCommand)(nil)

// Execute resets the editor to idle.
func (c *CancelEditCommand) Execute(ctx context.Context, msg CancelEditInput) error {
	if c.service == nil {
		return errors.New("cancel edit command requires service")
	}
	if msg.SessionID == "" {
		return admin.ErrMissingSession
	}
	return c.service.CancelEdit(ctx, msg.SessionID)
}
