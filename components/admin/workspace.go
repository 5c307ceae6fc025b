package admin

import "time"

// Workspace is the navigation and catalog state of one browser session.
type Workspace struct {
	SessionID   string    `json:"session_id"`
	ActivePanel Panel     `json:"active_panel"`
	Catalog     Catalog   `json:"catalog"`
	CreatedAt   time.Time `json:"created_at"`
	TouchedAt   time.Time `json:"touched_at"`
}

// NewWorkspace seeds a workspace on the default panel.
func NewWorkspace(sessionID string, seed Seed, now time.Time) Workspace {
	return Workspace{
		SessionID:   sessionID,
		ActivePanel: DefaultPanel,
		Catalog:     NewCatalog(seed.Books),
		CreatedAt:   now,
		TouchedAt:   now,
	}
}

// Clone returns a deep copy.
func (w Workspace) Clone() Workspace {
	out := w
	out.Catalog = w.Catalog.Clone()
	return out
}

// SelectPanel switches the visible panel. Selecting the active panel again is
// a no-op; the catalog is never touched. It reports whether the panel changed.
func (w *Workspace) SelectPanel(panel Panel) (bool, error) {
	if !panel.Valid() {
		return false, ErrUnknownPanel
	}
	if w.ActivePanel == panel {
		return false, nil
	}
	w.ActivePanel = panel
	return true, nil
}

// Panel returns the active panel, falling back to the default.
func (w Workspace) Panel() Panel {
	if w.ActivePanel.Valid() {
		return w.ActivePanel
	}
	return DefaultPanel
}
