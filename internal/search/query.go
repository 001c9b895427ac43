package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// ErrNoUser is returned for a search without an owner. The index is shared,
// so every query is pinned to one user.
var ErrNoUser = errors.New("search: user id required")

// Params configures a search.
type Params struct {
	UserID   string
	Query    string
	Types    []DocType // empty means all
	Category string
	Limit    int
	Offset   int
}

// Result is a page of hits.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit is one matching entity.
type Hit struct {
	ID       string  `json:"id"`
	Type     DocType `json:"type"`
	Score    float64 `json:"score"`
	Title    string  `json:"title"`
	Snippet  string  `json:"snippet,omitempty"`
	Category string  `json:"category,omitempty"`
	Day      string  `json:"day,omitempty"`
}

const (
	defaultLimit = 20
	maxLimit     = 100
	snippetRunes = 160
)

// Search runs params against the user's documents.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	if params.UserID == "" {
		return nil, ErrNoUser
	}
	if params.Limit <= 0 {
		params.Limit = defaultLimit
	}
	params.Limit = min(params.Limit, maxLimit)
	params.Offset = max(params.Offset, 0)

	req := bleve.NewSearchRequestOptions(buildQuery(params), params.Limit, params.Offset, false)
	req.Fields = []string{"type", "entity_id", "title", "body", "category", "day"}
	if params.Query == "" {
		req.SortBy([]string{"-created_at"})
	}

	s.mu.RLock()
	res, err := s.index.SearchInContext(ctx, req)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	out := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		hit := Hit{Score: h.Score}
		hit.ID, _ = h.Fields["entity_id"].(string)
		if t, ok := h.Fields["type"].(string); ok {
			hit.Type = DocType(t)
		}
		hit.Title, _ = h.Fields["title"].(string)
		hit.Category, _ = h.Fields["category"].(string)
		hit.Day, _ = h.Fields["day"].(string)
		if body, ok := h.Fields["body"].(string); ok {
			hit.Snippet = snippet(body)
		}
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}

// buildQuery pins the user, applies filters and, when there is text,
// matches it against titles (boosted) and bodies with a little typo
// tolerance and prefix matching on the last word.
func buildQuery(params Params) query.Query {
	owner := bleve.NewTermQuery(params.UserID)
	owner.SetField("user_id")
	must := []query.Query{owner}

	if len(params.Types) > 0 {
		types := make([]query.Query, 0, len(params.Types))
		for _, t := range params.Types {
			tq := bleve.NewTermQuery(string(t))
			tq.SetField("type")
			types = append(types, tq)
		}
		must = append(must, bleve.NewDisjunctionQuery(types...))
	}

	if params.Category != "" {
		cq := bleve.NewTermQuery(params.Category)
		cq.SetField("category")
		must = append(must, cq)
	}

	if text := Fold(strings.TrimSpace(params.Query)); text != "" {
		title := bleve.NewMatchQuery(text)
		title.SetField("title_text")
		title.SetBoost(3)
		title.SetFuzziness(1)

		body := bleve.NewMatchQuery(text)
		body.SetField("body_text")
		body.SetFuzziness(1)

		should := []query.Query{title, body}
		words := strings.Fields(text)
		if last := words[len(words)-1]; len([]rune(last)) >= 2 {
			prefix := bleve.NewPrefixQuery(last)
			prefix.SetField("title_text")
			prefix.SetBoost(0.5)
			should = append(should, prefix)
		}
		must = append(must, bleve.NewDisjunctionQuery(should...))
	}

	return bleve.NewConjunctionQuery(must...)
}

func snippet(body string) string {
	r := []rune(body)
	if len(r) <= snippetRunes {
		return body
	}
	return strings.TrimSpace(string(r[:snippetRunes])) + "…"
}
