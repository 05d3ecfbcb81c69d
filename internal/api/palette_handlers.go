package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerPaletteRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getPalette",
		Method:      http.MethodGet,
		Path:        "/api/v1/palette",
		Summary:     "Get palette",
		Description: "Returns the fixed highlight colors with their current labels",
		Tags:        []string{"Palette"},
	}, s.handleGetPalette)
}

// PaletteColorResponse is one palette entry in API responses.
type PaletteColorResponse struct {
	Hex         string   `json:"hex" doc:"Normalized hex color" example:"#FFEB3B"`
	DefaultName string   `json:"default_name" doc:"Built-in color name"`
	Labels      []string `json:"labels" doc:"Category labels assigned to this color"`
}

// PaletteResponse contains the palette.
type PaletteResponse struct {
	Colors []PaletteColorResponse `json:"colors" doc:"Palette colors in display order"`
}

// PaletteOutput wraps the palette response for Huma.
type PaletteOutput struct {
	Body PaletteResponse
}

func (s *Server) handleGetPalette(ctx context.Context, _ *struct{}) (*PaletteOutput, error) {
	byColor, err := s.services.Categories.LabelsByColor(ctx)
	if err != nil {
		return nil, err
	}

	palette := s.services.Categories.Palette()
	colors := make([]PaletteColorResponse, 0, len(palette))
	for _, c := range palette {
		labels := byColor[c.Hex]
		if labels == nil {
			labels = []string{}
		}
		colors = append(colors, PaletteColorResponse{
			Hex:         c.Hex,
			DefaultName: c.DefaultName,
			Labels:      labels,
		})
	}

	return &PaletteOutput{Body: PaletteResponse{Colors: colors}}, nil
}
