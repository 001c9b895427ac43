package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/habitoapp/habito-server/internal/search"
	"github.com/habitoapp/habito-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search",
		Description: "Full-text search over the user's habits, goals and notes. Accents are ignored.",
		Tags:        []string{"Search"},
		Security:    bearer,
	}, s.handleSearch)
}

// SearchInput contains search parameters.
type SearchInput struct {
	Query    string `query:"q" maxLength:"200" doc:"Search text; empty lists everything"`
	Types    string `query:"types" doc:"Comma-separated document types: habit, goal, note"`
	Category string `query:"category" doc:"Only habits in this category"`
	Limit    int    `query:"limit" minimum:"0" maximum:"100" doc:"Page size, 20 by default"`
	Offset   int    `query:"offset" minimum:"0" doc:"Results to skip"`
}

// SearchOutput wraps the search result for Huma.
type SearchOutput struct {
	Body *search.Result
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	req := service.SearchRequest{
		Query:    input.Query,
		Category: input.Category,
		Limit:    input.Limit,
		Offset:   input.Offset,
	}
	if input.Types != "" {
		req.Types = strings.Split(input.Types, ",")
	}
	res, err := s.services.Search.Search(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: res}, nil
}
