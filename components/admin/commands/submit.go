package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-library-admin/components/admin"
)

// SubmitBookInput carries a book form submission. Actor fields are optional
// and only feed activity events.
type SubmitBookInput struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Category  string `json:"category"`
	Image     string `json:"image"`
	ActorID   string `json:"actor_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	// Result receives the saved book when set.
	Result *admin.Book `json:"-"`
}

// Draft returns the form values.
func (in SubmitBookInput) Draft() admin.Draft {
	return admin.Draft{
		Title:    in.Title,
		Author:   in.Author,
		Category: in.Category,
		Image:    in.Image,
	}
}

type bookSubmitter interface {
	SubmitBook(ctx context.Context, sessionID string, input admin.Draft) (admin.Book, error)
}

// SubmitBookCommand creates a book or updates the one being edited.
type SubmitBookCommand struct {
	service   bookSubmitter
	telemetry Telemetry
}

// NewSubmitBookCommand creates the command.
func NewSubmitBookCommand(service bookSubmitter, telemetry Telemetry) *SubmitBookCommand {
	return &SubmitBookCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SubmitBookInput] = (*SubmitBookCommand)(nil)

// Execute submits the draft on behalf of the session.
func (c *SubmitBookCommand) Execute(ctx context.Context, msg SubmitBookInput) error {
	if c.service == nil {
		return errors.New("submit book command requires service")
	}
	if msg.SessionID == "" {
		return admin.ErrMissingSession
	}
	ctx = admin.ContextWithActivity(ctx, admin.ActivityContext{
		ActorID: msg.ActorID,
		UserID:  msg.UserID,
	})
	book, err := c.service.SubmitBook(ctx, msg.SessionID, msg.Draft())
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = book
	}
	c.telemetry.Record(ctx, "library.command.submit_book", map[string]any{
		"session_id": msg.SessionID,
		"book_id":    book.ID,
	})
	return nil
}
