package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-library-admin/components/admin"
)

// UpdateDraftInput stores form values as they are typed.
type UpdateDraftInput struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Category  string `json:"category"`
	Image     string `json:"image"`
}

type draftUpdater interface {
	UpdateDraft(ctx context.Context, sessionID string, draft admin.Draft) error
}

// UpdateDraftCommand saves the draft without validating it.
type UpdateDraftCommand struct {
	service draftUpdater
}

// NewUpdateDraftCommand creates the command.
func NewUpdateDraftCommand(service draftUpdater) *UpdateDraftCommand {
	return &UpdateDraftCommand{service: service}
}

var _ gocommand.Commander[UpdateDraftInput] = (*UpdateDraftCommand)(nil)

// Execute stores the draft.
func (c *UpdateDraftCommand) Execute(ctx context.Context, msg UpdateDraftInput) error {
	if c.service == nil {
		return errors.New("update draft command requires service")
	}
	if msg.SessionID == "" {
		return admin.ErrMissingSession
	}
	return c.service.UpdateDraft(ctx, msg.SessionID, admin.Draft{
		Title:    msg.Title,
		Author:   msg.Author,
		Category: msg.Category,
		Image:    msg.Image,
	})
}
