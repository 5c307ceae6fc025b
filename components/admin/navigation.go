package admin

import (
	"fmt"
	"strings"
)

// Panel is the key of one of the mutually exclusive dashboard panels.
type Panel string

const (
	PanelDashboard    Panel = "dashboard"
	PanelUsers        Panel = "users"
	PanelBooks        Panel = "books"
	PanelTransactions Panel = "transactions"
)

// DefaultPanel is shown to a fresh workspace.
const DefaultPanel = PanelDashboard

var panelOrder = []Panel{PanelDashboard, PanelUsers, PanelBooks, PanelTransactions}

var panelLabels = map[Panel]string{
	PanelDashboard:    "Dashboard",
	PanelUsers:        "Users",
	PanelBooks:        "Books",
	PanelTransactions: "Borrow/Return",
}

// Panels returns the navigation order.
func Panels() []Panel {
	return append([]Panel(nil), panelOrder...)
}

// ParsePanel converts a raw key into a Panel.
func ParsePanel(raw string) (Panel, error) {
	p := Panel(strings.ToLower(strings.TrimSpace(raw)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPanel, raw)
	}
	return p, nil
}

// Valid reports whether p is one of the known panels.
func (p Panel) Valid() bool {
	_, ok := panelLabels[p]
	return ok
}

// Label is the default navigation label.
func (p Panel) Label() string {
	return panelLabels[p]
}

func (p Panel) String() string {
	return string(p)
}

// NavItem is a rendered navigation entry.
type NavItem struct {
	Panel  Panel  `json:"panel"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}
