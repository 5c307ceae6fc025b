package admin

import (
	"context"
	"time"
)

// WorkspaceStore keeps one workspace per browser session.
// Implementations must apply Update atomically: fn runs against a copy that is
// committed only when fn returns nil.
type WorkspaceStore interface {
	Load(ctx context.Context, sessionID string) (Workspace, error)
	Update(ctx context.Context, sessionID string, fn func(*Workspace) error) (Workspace, error)
	Delete(ctx context.Context, sessionID string) error
}

// PanelRegistry stores panel definitions and the providers that feed them.
type PanelRegistry interface {
	RegisterDefinition(def PanelDefinition) error
	RegisterProvider(panel Panel, provider Provider) error
	Definition(panel Panel) (PanelDefinition, bool)
	Provider(panel Panel) (Provider, bool)
	Definitions() []PanelDefinition
}

// RefreshHook notifies transports (WebSocket/SSE) about catalog changes.
type RefreshHook interface {
	CatalogUpdated(ctx context.Context, event CatalogEvent) error
}

// Book is a single catalog record.
type Book struct {
	ID       int64  `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Author   string `json:"author" yaml:"author"`
	Category string `json:"category" yaml:"category"`
	Image    string `json:"image,omitempty" yaml:"image,omitempty"`
}

// Draft holds the book form values.
type Draft struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Category string `json:"category"`
	Image    string `json:"image,omitempty"`
}

// IsZero reports whether every draft field is empty.
func (d Draft) IsZero() bool {
	return d == Draft{}
}

// EditorMode tags the state of the book form.
type EditorMode string

const (
	EditorIdle     EditorMode = "idle"
	EditorCreating EditorMode = "creating"
	EditorEditing  EditorMode = "editing"
)

// Editor is the single book form of a workspace. Target is only meaningful
// while Mode is EditorEditing.
type Editor struct {
	Mode   EditorMode `json:"mode"`
	Target int64      `json:"target,omitempty"`
	Draft  Draft      `json:"draft"`
}

// Editing reports whether the editor is bound to an existing record.
func (e Editor) Editing() bool {
	return e.Mode == EditorEditing
}

// Member is a row of the users table.
type Member struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
	Role  string `json:"role" yaml:"role"`
}

// Loan is a row of the borrow/return ledger. An empty Returned means the book
// is still out.
type Loan struct {
	User     string `json:"user" yaml:"user"`
	Book     string `json:"book" yaml:"book"`
	Borrowed string `json:"borrowed" yaml:"borrowed"`
	Returned string `json:"returned,omitempty" yaml:"returned,omitempty"`
}

// Open reports whether the loan has not been returned yet.
func (l Loan) Open() bool {
	return l.Returned == ""
}

// Stat is a dashboard tile.
type Stat struct {
	Label string `json:"label" yaml:"label"`
	Value int    `json:"value" yaml:"value"`
}

// MonthlyTrend is one point of the overview charts.
type MonthlyTrend struct {
	Month    string `json:"month" yaml:"month"`
	Books    int    `json:"books" yaml:"books"`
	Issued   int    `json:"issued" yaml:"issued"`
	Returned int    `json:"returned" yaml:"returned"`
}

// PanelDefinition describes one navigation entry.
type PanelDefinition struct {
	Panel         Panel
	Name          string
	Description   string
	NameLocalized map[string]string
	Position      int
}

// ViewerContext identifies the session (and locale) a view is resolved for.
type ViewerContext struct {
	SessionID string
	Locale    string
}

// CatalogEvent describes workspace changes that transports might care about.
type CatalogEvent struct {
	SessionID  string    `json:"session_id"`
	Reason     string    `json:"reason"`
	BookID     int64     `json:"book_id,omitempty"`
	Panel      Panel     `json:"panel,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
