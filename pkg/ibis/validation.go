package ibis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate = validator.New()

	// Validation constants
	MaxTitleLength     = 500
	MaxEmbeddingLength = 4096
)

// NodeRequest represents a request to create or update a node.
type NodeRequest struct {
	Title     string    `json:"title" validate:"required,min=1,max=500"`
	Category  string    `json:"category" validate:"required"`
	SavedX    *float64  `json:"savedX" validate:"omitempty"`
	SavedY    *float64  `json:"savedY" validate:"omitempty"`
	Embedding []float32 `json:"embedding" validate:"omitempty,max=4096"`
	ParentID  string    `json:"parentId" validate:"omitempty,uuid4"`
}

// RelationshipRequest represents a request to create a relationship.
type RelationshipRequest struct {
	SourceID string `json:"sourceId" validate:"required,uuid4"`
	TargetID string `json:"targetId" validate:"required,uuid4"`
	Kind     string `json:"kind" validate:"required"`
}

// DeliberationRequest represents a request to create a deliberation.
type DeliberationRequest struct {
	Title string `json:"title" validate:"required,min=1,max=500"`
}

// ValidateNodeRequest validates a node creation/update request.
func ValidateNodeRequest(req *NodeRequest) error {
	if req == nil {
		return errors.New("node request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	if strings.TrimSpace(req.Title) == "" {
		return errors.New("Title: must contain at least one non-whitespace character")
	}
	// Category must be one of the recognized values or the explicit
	// uncategorized marker; arbitrary strings are rejected rather than
	// silently normalized at the API boundary.
	if NormalizeCategory(req.Category) == CategoryUncategorized && req.Category != string(CategoryUncategorized) {
		return fmt.Errorf("Category: %q is not a recognized category", req.Category)
	}
	// A saved coordinate must be a complete pair.
	if (req.SavedX == nil) != (req.SavedY == nil) {
		return errors.New("SavedX/SavedY: both coordinates must be provided together")
	}
	return nil
}

// ValidateRelationshipRequest validates a relationship creation request.
func ValidateRelationshipRequest(req *RelationshipRequest) error {
	if req == nil {
		return errors.New("relationship request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	if _, err := ParseKind(req.Kind); err != nil {
		return fmt.Errorf("Kind: %w", err)
	}
	if req.SourceID == req.TargetID {
		return errors.New("TargetID: relationship cannot reference the same node twice")
	}
	return nil
}

// ValidateDeliberationRequest validates a deliberation creation request.
func ValidateDeliberationRequest(req *DeliberationRequest) error {
	if req == nil {
		return errors.New("deliberation request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	if strings.TrimSpace(req.Title) == "" {
		return errors.New("Title: must contain at least one non-whitespace character")
	}
	return nil
}

// formatValidationError converts validator errors to readable messages.
func formatValidationError(err error) error {
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return err
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", fe.Field())
		case "min":
			return fmt.Errorf("%s: must be at least %s characters", fe.Field(), fe.Param())
		case "max":
			return fmt.Errorf("%s: exceeds maximum of %s", fe.Field(), fe.Param())
		case "uuid4":
			return fmt.Errorf("%s: must be a valid UUID", fe.Field())
		}
		return fmt.Errorf("%s: failed %s validation", fe.Field(), fe.Tag())
	}
	return err
}
