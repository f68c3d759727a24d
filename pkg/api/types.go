package api

import (
	"time"

	"github.com/openagora/agora/pkg/ibis"
	"github.com/openagora/agora/pkg/layout"
)

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
}

// ErrorResponse wraps a user-safe error message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// LoginRequest carries user credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries a freshly issued token pair.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Role         string `json:"role"`
}

// RefreshRequest carries a refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// LayoutRequest optionally overrides the canvas for one computation.
type LayoutRequest struct {
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	// SavePositions persists final coordinates back onto the nodes so
	// subsequent runs are seeded from them.
	SavePositions bool `json:"savePositions,omitempty"`
}

// LayoutResponse is the computed layout plus run metadata.
type LayoutResponse struct {
	Positions map[string]layout.Position `json:"positions"`
	Zones     layout.Zones               `json:"zones"`
	NodeCount int                        `json:"nodeCount"`
	Duration  string                     `json:"duration"`
}

// GraphResponse bundles a deliberation's nodes and relationships.
type GraphResponse struct {
	Nodes         []*ibis.Node         `json:"nodes"`
	Relationships []*ibis.Relationship `json:"relationships"`
	Counts        ibis.CategoryCounts  `json:"counts"`
}
