package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/versemark/versemark-server/internal/domain"
)

func (s *Server) registerColorRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getColorAssignment",
		Method:      http.MethodGet,
		Path:        "/api/v1/colors/{color}/assignment",
		Summary:     "Get color assignment",
		Description: "Returns the category labels of a palette color",
		Tags:        []string{"Colors"},
	}, s.handleGetColorAssignment)

	huma.Register(s.api, huma.Operation{
		OperationID: "setColorAssignment",
		Method:      http.MethodPut,
		Path:        "/api/v1/colors/{color}/assignment",
		Summary:     "Name color",
		Description: "Sets the category labels of a palette color from delimited text such as \"Faith, Hope\"",
		Tags:        []string{"Colors"},
	}, s.handleSetColorAssignment)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteColorAssignment",
		Method:        http.MethodDelete,
		Path:          "/api/v1/colors/{color}/assignment",
		Summary:       "Clear color",
		Description:   "Removes every category label from a color",
		Tags:          []string{"Colors"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteColorAssignment)
}

// === DTOs ===

// ColorInput identifies a palette color. The leading '#' is optional.
type ColorInput struct {
	Color string `path:"color" doc:"Hex color with or without '#'" example:"FFEB3B"`
}

// AssignmentResponse contains a color's labels in API responses.
type AssignmentResponse struct {
	Color     string    `json:"color" doc:"Normalized hex color"`
	Labels    []string  `json:"labels" doc:"Category labels"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// AssignmentOutput wraps an assignment for Huma.
type AssignmentOutput struct {
	Body AssignmentResponse
}

// SetAssignmentRequest is the request body for naming a color.
type SetAssignmentRequest struct {
	Label string `json:"label" doc:"Category names separated by , ; | / & + or CJK commas" example:"Faith, Hope"`
}

// SetAssignmentInput wraps the set assignment request for Huma.
type SetAssignmentInput struct {
	Color string `path:"color" doc:"Hex color with or without '#'"`
	Body  SetAssignmentRequest
}

// === Handlers ===

func (s *Server) handleGetColorAssignment(ctx context.Context, input *ColorInput) (*AssignmentOutput, error) {
	a, err := s.services.Categories.GetAssignment(ctx, input.Color)
	if err != nil {
		return nil, err
	}
	return &AssignmentOutput{Body: toAssignmentResponse(a)}, nil
}

func (s *Server) handleSetColorAssignment(ctx context.Context, input *SetAssignmentInput) (*AssignmentOutput, error) {
	a, err := s.services.Categories.SetLabel(ctx, input.Color, input.Body.Label)
	if err != nil {
		return nil, err
	}
	return &AssignmentOutput{Body: toAssignmentResponse(a)}, nil
}

func (s *Server) handleDeleteColorAssignment(ctx context.Context, input *ColorInput) (*struct{}, error) {
	if err := s.services.Categories.DeleteAssignment(ctx, input.Color); err != nil {
		return nil, err
	}
	return nil, nil
}

func toAssignmentResponse(a *domain.CategoryAssignment) AssignmentResponse {
	return AssignmentResponse{
		Color:     a.Color,
		Labels:    a.Labels,
		UpdatedAt: a.UpdatedAt,
	}
}
