package api

import (
	"net/http"

	"github.com/openagora/agora/pkg/ibis"
	"github.com/openagora/agora/pkg/pubsub"
)

func (s *Server) handleDeliberations(w http.ResponseWriter, r *http.Request) {
	s.newMethodRouter(w, r).
		Get(func() { s.listDeliberations(w, r) }).
		Post(func() { s.createDeliberation(w, r) }).
		NotAllowed()
}

// handleDeliberationSubtree routes /deliberations/{id}[/...] requests.
func (s *Server) handleDeliberationSubtree(w http.ResponseWriter, r *http.Request) {
	segments := splitSubtree(r.URL.Path, "/deliberations/")
	if len(segments) == 0 || segments[0] == "" {
		s.respondError(w, http.StatusBadRequest, "missing deliberation id")
		return
	}
	id := segments[0]

	if len(segments) == 1 {
		s.newMethodRouter(w, r).
			Get(func() { s.getDeliberation(w, r, id) }).
			Delete(func() { s.archiveDeliberation(w, r, id) }).
			NotAllowed()
		return
	}

	switch segments[1] {
	case "graph":
		s.newMethodRouter(w, r).
			Get(func() { s.getGraph(w, r, id) }).
			NotAllowed()
	case "nodes":
		if len(segments) == 3 {
			s.newMethodRouter(w, r).
				Delete(func() { s.deleteNode(w, r, id, segments[2]) }).
				NotAllowed()
			return
		}
		s.newMethodRouter(w, r).
			Get(func() { s.listNodes(w, r, id) }).
			Post(func() { s.createNode(w, r, id) }).
			NotAllowed()
	case "relationships":
		if len(segments) == 3 {
			s.newMethodRouter(w, r).
				Delete(func() { s.deleteRelationship(w, r, id, segments[2]) }).
				NotAllowed()
			return
		}
		s.newMethodRouter(w, r).
			Get(func() { s.listRelationships(w, r, id) }).
			Post(func() { s.createRelationship(w, r, id) }).
			NotAllowed()
	case "layout":
		s.newMethodRouter(w, r).
			Get(func() { s.getLayout(w, r, id) }).
			Post(func() { s.computeLayout(w, r, id) }).
			NotAllowed()
	case "subscribe":
		s.handleSubscribe(w, r, id)
	default:
		s.respondError(w, http.StatusNotFound, "unknown resource")
	}
}

func (s *Server) listDeliberations(w http.ResponseWriter, r *http.Request) {
	deliberations, err := s.store.ListDeliberations(r.Context())
	if err != nil {
		s.respondStoreError(w, err, "list deliberations")
		return
	}
	s.respondJSON(w, http.StatusOK, deliberations)
}

func (s *Server) createDeliberation(w http.ResponseWriter, r *http.Request) {
	if !s.requireFacilitator(w, r) {
		return
	}

	var req ibis.DeliberationRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := ibis.ValidateDeliberationRequest(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	d := &ibis.Deliberation{Title: req.Title}
	if err := s.store.CreateDeliberation(r.Context(), d); err != nil {
		s.respondStoreError(w, err, "create deliberation")
		return
	}
	s.respondJSON(w, http.StatusCreated, d)
}

func (s *Server) getDeliberation(w http.ResponseWriter, r *http.Request, id string) {
	d, err := s.store.GetDeliberation(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, err, "get deliberation")
		return
	}
	s.respondJSON(w, http.StatusOK, d)
}

func (s *Server) archiveDeliberation(w http.ResponseWriter, r *http.Request, id string) {
	if !s.requireFacilitator(w, r) {
		return
	}
	if err := s.store.ArchiveDeliberation(r.Context(), id); err != nil {
		s.respondStoreError(w, err, "archive deliberation")
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := s.store.GetDeliberation(r.Context(), id); err != nil {
		s.respondStoreError(w, err, "get deliberation")
		return
	}

	nodes, err := s.store.ListNodes(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, err, "list nodes")
		return
	}
	relationships, err := s.store.ListRelationships(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, err, "list relationships")
		return
	}

	s.respondJSON(w, http.StatusOK, GraphResponse{
		Nodes:         nodes,
		Relationships: relationships,
		Counts:        ibis.CountByCategory(nodes),
	})
}

func (s *Server) publish(eventType pubsub.EventType, deliberationID string, payload any) {
	s.bus.Publish(pubsub.Event{
		Type:           eventType,
		DeliberationID: deliberationID,
		Payload:        payload,
	})
	s.registry.RecordEventPublished(string(eventType))
}
