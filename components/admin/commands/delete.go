package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-library-admin/components/admin"
)

// DeleteBookInput removes a book. Nothing happens unless Confirmed is set.
type DeleteBookInput struct {
	SessionID string `json:"session_id"`
	BookID    int64  `json:"book_id"`
	Confirmed bool   `json:"confirmed"`
	// Removed reports whether a record was deleted when set.
	Removed *bool `json:"-"`
}

type bookDeleter interface {
	DeleteBook(ctx context.Context, sessionID string, id int64, confirmed bool) (bool, error)
}

// DeleteBookCommand removes a book from the session's catalog.
type DeleteBookCommand struct {
	service   bookDeleter
	telemetry Telemetry
}

// NewDeleteBookCommand creates the command.
func NewDeleteBookCommand(service bookDeleter, telemetry Telemetry) *DeleteBookCommand {
	return &DeleteBookCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeleteBookInput] = (*DeleteBookCommand)(nil)

// Execute deletes the book when confirmed.
func (c *DeleteBookCommand) Execute(ctx context.Context, msg DeleteBookInput) error {
	if c.service == nil {
		return errors.New("delete book command requires service")
	}
	if msg.SessionID == "" {
		return admin.ErrMissingSession
	}
	removed, err := c.service.DeleteBook(ctx, msg.SessionID, msg.BookID, msg.Confirmed)
	if err != nil {
		return err
	}
	if msg.Removed != nil {
		*msg.Removed = removed
	}
	c.telemetry.Record(ctx, "library.command.delete_book", map[string]any{
		"session_id": msg.SessionID,
		"book_id":    msg.BookID,
		"confirmed":  msg.Confirmed,
		"removed":    removed,
	})
	return nil
}
