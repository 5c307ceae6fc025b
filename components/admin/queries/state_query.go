package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-library-admin/components/admin"
)

// StateInput selects the session whose workspace is returned.
type StateInput struct {
	SessionID string `json:"session_id"`
}

// State is the JSON projection of a workspace.
type State struct {
	SessionID   string       `json:"session_id"`
	ActivePanel admin.Panel  `json:"active_panel"`
	Books       []admin.Book `json:"books"`
	Editor      admin.Editor `json:"editor"`
}

type workspaceService interface {
	Workspace(ctx context.Context, sessionID string) (admin.Workspace, error)
}

// StateQuery returns the raw workspace state without rendering panels.
type StateQuery struct {
	service workspaceService
}

// NewStateQuery builds the query.
func NewStateQuery(service workspaceService) *StateQuery {
	return &StateQuery{service: service}
}

var _ gocommand.Querier[StateInput, State] = (*StateQuery)(nil)

// Query loads the session's workspace.
func (q *StateQuery) Query(ctx context.Context, input StateInput) (State, error) {
	if q.service == nil {
		return State{}, errors.New("state query requires service")
	}
	ws, err := q.service.Workspace(ctx, input.SessionID)
	if err != nil {
		return State{}, err
	}
	books := ws.Catalog.Books
	if books == nil {
		books = []admin.Book{}
	}
	return State{
		SessionID:   ws.SessionID,
		ActivePanel: ws.Panel(),
		Books:       books,
		Editor:      ws.Catalog.Editor,
	}, nil
}
