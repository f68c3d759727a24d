package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/openagora/agora/pkg/layout"
	"github.com/openagora/agora/pkg/logging"
	"github.com/openagora/agora/pkg/pubsub"
)

// computeLayout runs the concentric layout for a deliberation,
// persists a snapshot, and broadcasts the result. Expensive for big
// graphs, so it is facilitator-gated; rapid re-triggers should be
// debounced by the caller.
func (s *Server) computeLayout(w http.ResponseWriter, r *http.Request, deliberationID string) {
	if !s.requireFacilitator(w, r) {
		return
	}

	var req LayoutRequest
	if r.ContentLength > 0 {
		if !s.decodeJSON(w, r, &req) {
			return
		}
	}

	if _, err := s.store.GetDeliberation(r.Context(), deliberationID); err != nil {
		s.respondStoreError(w, err, "get deliberation")
		return
	}

	nodes, err := s.store.ListNodes(r.Context(), deliberationID)
	if err != nil {
		s.respondStoreError(w, err, "list nodes")
		return
	}
	relationships, err := s.store.ListRelationships(r.Context(), deliberationID)
	if err != nil {
		s.respondStoreError(w, err, "list relationships")
		return
	}

	cfg := *s.layoutConfig
	if req.Width > 0 {
		cfg.Width = req.Width
	}
	if req.Height > 0 {
		cfg.Height = req.Height
	}

	start := time.Now()
	engine := layout.NewConcentricLayout(&cfg)
	result, err := engine.Compute(r.Context(), nodes, relationships)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.registry.RecordLayoutRun("cancelled", len(nodes), elapsed)
			s.respondError(w, http.StatusRequestTimeout, "layout cancelled")
			return
		}
		s.registry.RecordLayoutRun("error", len(nodes), elapsed)
		s.respondError(w, http.StatusInternalServerError, "layout failed")
		return
	}
	s.registry.RecordLayoutRun("ok", len(nodes), elapsed)
	if result.Overlapping > 0 {
		s.registry.LayoutFallbackPlacements.Add(float64(result.Overlapping))
	}

	s.logger.Info("layout computed",
		logging.DeliberationID(deliberationID),
		logging.NodeCount(len(nodes)),
		logging.Latency(elapsed),
	)

	if err := s.store.SaveSnapshot(r.Context(), deliberationID, result); err != nil {
		s.respondStoreError(w, err, "save snapshot")
		return
	}
	if req.SavePositions {
		if err := s.store.SavePositions(r.Context(), deliberationID, result.Positions); err != nil {
			s.respondStoreError(w, err, "save positions")
			return
		}
	}

	s.publish(pubsub.EventLayoutCompleted, deliberationID, result)

	s.respondJSON(w, http.StatusOK, LayoutResponse{
		Positions: result.Positions,
		Zones:     result.Zones,
		NodeCount: len(nodes),
		Duration:  elapsed.String(),
	})
}

// getLayout serves the most recent persisted snapshot.
func (s *Server) getLayout(w http.ResponseWriter, r *http.Request, deliberationID string) {
	result, err := s.store.LoadSnapshot(r.Context(), deliberationID)
	if err != nil {
		s.respondStoreError(w, err, "load snapshot")
		return
	}
	s.respondJSON(w, http.StatusOK, LayoutResponse{
		Positions: result.Positions,
		Zones:     result.Zones,
		NodeCount: len(result.Positions),
	})
}
