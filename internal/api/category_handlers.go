package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/versemark/versemark-server/internal/domain"
)

func (s *Server) registerCategoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Description: "Returns every category label in alphabetical order, with OTHER last when present",
		Tags:        []string{"Categories"},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCategoryHighlights",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/{name}/highlights",
		Summary:     "Get category highlights",
		Description: "Returns the highlights shown under a category, ordered by verse",
		Tags:        []string{"Categories"},
	}, s.handleGetCategoryHighlights)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCategory",
		Method:      http.MethodDelete,
		Path:        "/api/v1/categories/{name}",
		Summary:     "Delete category",
		Description: "Deletes the highlights of a category, keeping those claimed by a sibling category, and removes the label from its colors",
		Tags:        []string{"Categories"},
	}, s.handleDeleteCategory)
}

// === DTOs ===

// CategoryResponse contains category data in API responses.
type CategoryResponse struct {
	Name      string   `json:"name" doc:"Category name"`
	Synthetic bool     `json:"synthetic" doc:"True for the derived OTHER category"`
	Colors    []string `json:"colors" doc:"Colors in this category"`
}

// ListCategoriesResponse contains a list of categories.
type ListCategoriesResponse struct {
	Categories []CategoryResponse `json:"categories" doc:"Categories in display order"`
}

// ListCategoriesOutput wraps the list categories response for Huma.
type ListCategoriesOutput struct {
	Body ListCategoriesResponse
}

// CategoryNameInput identifies a category by name.
type CategoryNameInput struct {
	Name string `path:"name" doc:"Category name, or OTHER" minLength:"1"`
}

// HighlightListResponse contains a list of highlights.
type HighlightListResponse struct {
	Highlights []HighlightResponse `json:"highlights" doc:"Highlights ordered by verse"`
}

// HighlightListOutput wraps a highlight list for Huma.
type HighlightListOutput struct {
	Body HighlightListResponse
}

// DeleteReportResponse is the outcome of a category deletion.
type DeleteReportResponse struct {
	OperationID        string   `json:"operation_id" doc:"Deletion operation ID"`
	Category           string   `json:"category" doc:"Deleted category"`
	Colors             []string `json:"colors" doc:"Colors the category covered"`
	Candidates         int      `json:"candidates" doc:"Highlights in those colors"`
	Requested          int      `json:"requested" doc:"Highlights sent for deletion"`
	Deleted            int      `json:"deleted" doc:"Highlights confirmed deleted"`
	Failed             []string `json:"failed" doc:"Highlight IDs whose delete batch failed"`
	Protected          int      `json:"protected" doc:"Shared highlights kept for a sibling category"`
	AssignmentsRemoved int      `json:"assignments_removed" doc:"Colors left with no labels"`
	AssignmentsUpdated int      `json:"assignments_updated" doc:"Colors that kept other labels"`
	DurationMS         int64    `json:"duration_ms" doc:"Elapsed time in milliseconds"`
}

// DeleteReportOutput wraps the deletion report for Huma.
type DeleteReportOutput struct {
	Body DeleteReportResponse
}

// === Handlers ===

func (s *Server) handleListCategories(ctx context.Context, _ *struct{}) (*ListCategoriesOutput, error) {
	categories, err := s.services.Categories.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, CategoryResponse{Name: c.Name, Synthetic: c.Synthetic, Colors: c.Colors})
	}

	return &ListCategoriesOutput{Body: ListCategoriesResponse{Categories: resp}}, nil
}

func (s *Server) handleGetCategoryHighlights(ctx context.Context, input *CategoryNameInput) (*HighlightListOutput, error) {
	hs, err := s.services.Resolver.HighlightsForCategory(ctx, input.Name)
	if err != nil {
		return nil, err
	}

	return &HighlightListOutput{Body: HighlightListResponse{Highlights: toHighlightResponses(hs)}}, nil
}

func (s *Server) handleDeleteCategory(ctx context.Context, input *CategoryNameInput) (*DeleteReportOutput, error) {
	report, err := s.services.Deletion.DeleteCategory(ctx, input.Name)
	if err != nil {
		return nil, err
	}

	return &DeleteReportOutput{Body: DeleteReportResponse{
		OperationID:        report.OperationID,
		Category:           report.Category,
		Colors:             report.Colors,
		Candidates:         report.Candidates,
		Requested:          report.Requested,
		Deleted:            report.Deleted,
		Failed:             report.Failed,
		Protected:          report.Protected,
		AssignmentsRemoved: report.AssignmentsRemoved,
		AssignmentsUpdated: report.AssignmentsUpdated,
		DurationMS:         report.Duration.Milliseconds(),
	}}, nil
}

// HighlightResponse contains highlight data in API responses.
type HighlightResponse struct {
	ID        string    `json:"id" doc:"Highlight ID"`
	BookID    string    `json:"book_id" doc:"Book code, e.g. JHN"`
	Chapter   int       `json:"chapter" doc:"Chapter number"`
	Verse     int       `json:"verse" doc:"Verse number"`
	Version   string    `json:"version" doc:"Bible version, e.g. KJV"`
	Color     string    `json:"color" doc:"Highlight color"`
	Label     *string   `json:"label,omitempty" doc:"Explicit category label"`
	Text      *string   `json:"text,omitempty" doc:"Verse text, when it was looked up"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

func toHighlightResponse(h *domain.Highlight) HighlightResponse {
	return HighlightResponse{
		ID:        h.ID,
		BookID:    h.BookID,
		Chapter:   h.Chapter,
		Verse:     h.Verse,
		Version:   h.Version,
		Color:     h.Color,
		Label:     h.Label,
		Text:      h.Text,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

func toHighlightResponses(hs []*domain.Highlight) []HighlightResponse {
	out := make([]HighlightResponse, 0, len(hs))
	for _, h := range hs {
		out = append(out, toHighlightResponse(h))
	}
	return out
}
