package services

import (
	"context"

	"github.com/GregMSThompson/findash-backend/pkg/logger"
)

// Searcher returns search results as plain text for a prompt.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// PlaceholderWebSearch stands in for a web search API.
type PlaceholderWebSearch struct{}

func (PlaceholderWebSearch) Search(ctx context.Context, query string) (string, error) {
	logger.FromContext(ctx).Debug("web search", "query", query)
	return `Search results for "` + query + `"`, nil
}

// PlaceholderContentSearch stands in for a document/content search backend.
type PlaceholderContentSearch struct{}

func (PlaceholderContentSearch) Search(ctx context.Context, query string) (string, error) {
	logger.FromContext(ctx).Debug("content search", "query", query)
	return `Placeholder search results for "` + query + `"`, nil
}
