package terminal

import (
	"time"

	"github.com/georgemunganga/hobex-pos/internal/modules/hobex"
	"github.com/google/uuid"
)

// Kind selects which payment terminal integration a configuration drives.
type Kind string

const (
	KindNone  Kind = "none"
	KindHobex Kind = "hobex"
)

// Mode picks the gateway address a Hobex terminal talks to.
type Mode string

const (
	ModeTesting    Mode = "testing"
	ModeProduction Mode = "production"
)

// Addresses maps each mode to its gateway base URL.
type Addresses map[Mode]string

// Terminal is one configured payment terminal.
type Terminal struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Kind       Kind      `json:"kind"`
	TID        string    `json:"tid,omitempty"`
	Mode       Mode      `json:"mode"`
	APIAddress string    `json:"api_address"`
	User       string    `json:"user,omitempty"`
	Password   string    `json:"-"`
	Token      string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsHobex reports whether the terminal is driven by the Hobex integration.
func (t *Terminal) IsHobex() bool {
	return t.Kind == KindHobex
}

// Connected reports whether the terminal holds a usable token.
func (t *Terminal) Connected() bool {
	return t.IsHobex() && t.Token != ""
}

// Endpoint returns where gateway calls for this terminal go.
func (t *Terminal) Endpoint() hobex.Endpoint {
	return hobex.Endpoint{BaseURL: t.APIAddress, Token: t.Token}
}

// View is the JSON shape returned to the POS, with the derived flag.
type View struct {
	*Terminal
	Connected bool `json:"connected"`
}

// NewView wraps t for rendering.
func NewView(t *Terminal) View {
	return View{Terminal: t, Connected: t.Connected()}
}

// ── Request DTOs ──────────────────────────────────────────────────────────────

// SaveTerminalRequest is the payload to create or update a terminal.
type SaveTerminalRequest struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	TID      string `json:"tid,omitempty"`
	Mode     string `json:"mode,omitempty"` // testing | production, defaults to production
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
}

// SweepReport summarises one scheduled token refresh pass.
type SweepReport struct {
	Refreshed int `json:"refreshed"`
	Failed    int `json:"failed"`
}
