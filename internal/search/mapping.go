package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/pt"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve mapping.
//
// Raw title and body are stored for display only. Their folded copies
// (title_text, body_text) are what queries hit, analyzed with the
// Portuguese analyzer. user_id, type and category are keywords used as
// filters.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = pt.AnalyzerName

	doc := bleve.NewDocumentMapping()

	for _, field := range []string{"title", "body"} {
		stored := bleve.NewTextFieldMapping()
		stored.Index = false
		stored.Store = true
		doc.AddFieldMappingsAt(field, stored)
	}

	titleText := bleve.NewTextFieldMapping()
	titleText.Analyzer = pt.AnalyzerName
	titleText.Store = false
	titleText.IncludeTermVectors = true
	doc.AddFieldMappingsAt("title_text", titleText)

	bodyText := bleve.NewTextFieldMapping()
	bodyText.Analyzer = pt.AnalyzerName
	bodyText.Store = false
	doc.AddFieldMappingsAt("body_text", bodyText)

	for _, field := range []string{"type", "entity_id", "user_id", "category", "day"} {
		kw := bleve.NewTextFieldMapping()
		kw.Analyzer = keyword.Name
		kw.Store = true
		doc.AddFieldMappingsAt(field, kw)
	}

	created := bleve.NewNumericFieldMapping()
	created.Store = true
	doc.AddFieldMappingsAt("created_at", created)

	indexMapping.AddDocumentMapping("_default", doc)
	return indexMapping
}
