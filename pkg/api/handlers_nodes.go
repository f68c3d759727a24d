package api

import (
	"net/http"

	"github.com/openagora/agora/pkg/ibis"
	"github.com/openagora/agora/pkg/pubsub"
)

func (s *Server) listNodes(w http.ResponseWriter, r *http.Request, deliberationID string) {
	nodes, err := s.store.ListNodes(r.Context(), deliberationID)
	if err != nil {
		s.respondStoreError(w, err, "list nodes")
		return
	}
	s.respondJSON(w, http.StatusOK, nodes)
}

func (s *Server) createNode(w http.ResponseWriter, r *http.Request, deliberationID string) {
	var req ibis.NodeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := ibis.ValidateNodeRequest(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	node := &ibis.Node{
		DeliberationID: deliberationID,
		Title:          req.Title,
		Category:       ibis.NormalizeCategory(req.Category),
		SavedX:         req.SavedX,
		SavedY:         req.SavedY,
		Embedding:      req.Embedding,
		ParentID:       req.ParentID,
	}
	if err := s.store.CreateNode(r.Context(), node); err != nil {
		s.respondStoreError(w, err, "create node")
		return
	}

	s.publish(pubsub.EventNodeCreated, deliberationID, node)
	s.respondJSON(w, http.StatusCreated, node)
}

func (s *Server) deleteNode(w http.ResponseWriter, r *http.Request, deliberationID, nodeID string) {
	if err := s.store.DeleteNode(r.Context(), nodeID); err != nil {
		s.respondStoreError(w, err, "delete node")
		return
	}
	s.publish(pubsub.EventNodeDeleted, deliberationID, map[string]string{"id": nodeID})
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) listRelationships(w http.ResponseWriter, r *http.Request, deliberationID string) {
	relationships, err := s.store.ListRelationships(r.Context(), deliberationID)
	if err != nil {
		s.respondStoreError(w, err, "list relationships")
		return
	}
	s.respondJSON(w, http.StatusOK, relationships)
}

func (s *Server) createRelationship(w http.ResponseWriter, r *http.Request, deliberationID string) {
	var req ibis.RelationshipRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := ibis.ValidateRelationshipRequest(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	kind, err := ibis.ParseKind(req.Kind)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rel := &ibis.Relationship{
		DeliberationID: deliberationID,
		SourceID:       req.SourceID,
		TargetID:       req.TargetID,
		Kind:           kind,
	}
	if err := s.store.CreateRelationship(r.Context(), rel); err != nil {
		s.respondStoreError(w, err, "create relationship")
		return
	}

	s.publish(pubsub.EventRelationshipCreated, deliberationID, rel)
	s.respondJSON(w, http.StatusCreated, rel)
}

func (s *Server) deleteRelationship(w http.ResponseWriter, r *http.Request, deliberationID, relID string) {
	if err := s.store.DeleteRelationship(r.Context(), relID); err != nil {
		s.respondStoreError(w, err, "delete relationship")
		return
	}
	s.publish(pubsub.EventRelationshipDeleted, deliberationID, map[string]string{"id": relID})
	s.respondJSON(w, http.StatusNoContent, nil)
}
