package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-library-admin/components/admin"
)

// BeginEditInput loads a book into the session's form.
type BeginEditInput struct {
	SessionID string      `json:"session_id"`
	BookID    int64       `json:"book_id"`
	Result    *admin.Book `json:"-"`
}

type editStarter interface {
	BeginEdit(ctx context.Context, sessionID string, id int64) (admin.Book, error)
}

// BeginEditCommand switches the form into edit mode.
type BeginEditCommand struct {
	service   editStarter
	telemetry Telemetry
}

// NewBeginEditCommand creates the command.
func NewBeginEditCommand(service editStarter, telemetry Telemetry) *BeginEditCommand {
	return &BeginEditCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[BeginEditInput] = (*BeginEditCommand)(nil)

// Execute begins editing. Unknown ids fail with admin.ErrBookNotFound.
func (c *BeginEditCommand) Execute(ctx context.Context, msg BeginEditInput) error {
	if c.service == nil {
		return errors.New("begin edit command requires service")
	}
	if msg.SessionID == "" {
		return admin.ErrMissingSession
	}
	book, err := c.service.BeginEdit(ctx, msg.SessionID, msg.BookID)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = book
	}
	c.telemetry.Record(ctx, "library.command.begin_edit", map[string]any{
		"session_id": msg.SessionID,
		"book_id":    msg.BookID,
	})
	return nil
}
