package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/versemark/versemark-server/internal/service"
)

func (s *Server) registerHighlightRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createHighlight",
		Method:        http.MethodPost,
		Path:          "/api/v1/highlights",
		Summary:       "Create highlight",
		Description:   "Highlights a verse with a palette color",
		Tags:          []string{"Highlights"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateHighlight)

	huma.Register(s.api, huma.Operation{
		OperationID: "listHighlights",
		Method:      http.MethodGet,
		Path:        "/api/v1/highlights",
		Summary:     "List highlights",
		Description: "Returns all highlights, optionally filtered by color",
		Tags:        []string{"Highlights"},
	}, s.handleListHighlights)

	huma.Register(s.api, huma.Operation{
		OperationID: "getHighlight",
		Method:      http.MethodGet,
		Path:        "/api/v1/highlights/{id}",
		Summary:     "Get highlight",
		Description: "Returns a highlight by ID",
		Tags:        []string{"Highlights"},
	}, s.handleGetHighlight)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateHighlight",
		Method:      http.MethodPatch,
		Path:        "/api/v1/highlights/{id}",
		Summary:     "Update highlight",
		Description: "Changes a highlight's color or explicit label",
		Tags:        []string{"Highlights"},
	}, s.handleUpdateHighlight)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteHighlight",
		Method:        http.MethodDelete,
		Path:          "/api/v1/highlights/{id}",
		Summary:       "Delete highlight",
		Description:   "Deletes a highlight",
		Tags:          []string{"Highlights"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteHighlight)
}

// === DTOs ===

// CreateHighlightRequest is the request body for creating a highlight.
type CreateHighlightRequest struct {
	BookID  string  `json:"book_id" doc:"Book code" example:"JHN"`
	Chapter int     `json:"chapter" doc:"Chapter number" example:"3"`
	Verse   int     `json:"verse" doc:"Verse number" example:"16"`
	Version string  `json:"version" doc:"Bible version" example:"KJV"`
	Color   string  `json:"color" doc:"Palette color" example:"#FFEB3B"`
	Label   *string `json:"label,omitempty" doc:"Explicit category label"`
}

// CreateHighlightInput wraps the create highlight request for Huma.
type CreateHighlightInput struct {
	Body CreateHighlightRequest
}

// HighlightOutput wraps a highlight for Huma.
type HighlightOutput struct {
	Body HighlightResponse
}

// ListHighlightsInput contains parameters for listing highlights.
type ListHighlightsInput struct {
	Color string `query:"color" doc:"Only highlights of this color"`
}

// HighlightIDInput identifies a highlight.
type HighlightIDInput struct {
	ID string `path:"id" doc:"Highlight ID"`
}

// UpdateHighlightRequest is the request body for updating a highlight.
type UpdateHighlightRequest struct {
	Color *string `json:"color,omitempty" doc:"New palette color"`
	Label *string `json:"label,omitempty" doc:"New explicit label; empty string clears it"`
}

// UpdateHighlightInput wraps the update highlight request for Huma.
type UpdateHighlightInput struct {
	ID   string `path:"id" doc:"Highlight ID"`
	Body UpdateHighlightRequest
}

// === Handlers ===

func (s *Server) handleCreateHighlight(ctx context.Context, input *CreateHighlightInput) (*HighlightOutput, error) {
	h, err := s.services.Highlights.CreateHighlight(ctx, service.CreateHighlightRequest{
		BookID:  input.Body.BookID,
		Chapter: input.Body.Chapter,
		Verse:   input.Body.Verse,
		Version: input.Body.Version,
		Color:   input.Body.Color,
		Label:   input.Body.Label,
	})
	if err != nil {
		return nil, err
	}
	return &HighlightOutput{Body: toHighlightResponse(h)}, nil
}

func (s *Server) handleListHighlights(ctx context.Context, input *ListHighlightsInput) (*HighlightListOutput, error) {
	hs, err := s.services.Highlights.ListHighlights(ctx, input.Color)
	if err != nil {
		return nil, err
	}
	return &HighlightListOutput{Body: HighlightListResponse{Highlights: toHighlightResponses(hs)}}, nil
}

func (s *Server) handleGetHighlight(ctx context.Context, input *HighlightIDInput) (*HighlightOutput, error) {
	h, err := s.services.Highlights.GetHighlight(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &HighlightOutput{Body: toHighlightResponse(h)}, nil
}

func (s *Server) handleUpdateHighlight(ctx context.Context, input *UpdateHighlightInput) (*HighlightOutput, error) {
	h, err := s.services.Highlights.UpdateHighlight(ctx, input.ID, service.UpdateHighlightRequest{
		Color: input.Body.Color,
		Label: input.Body.Label,
	})
	if err != nil {
		return nil, err
	}
	return &HighlightOutput{Body: toHighlightResponse(h)}, nil
}

func (s *Server) handleDeleteHighlight(ctx context.Context, input *HighlightIDInput) (*struct{}, error) {
	if err := s.services.Highlights.DeleteHighlight(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}
