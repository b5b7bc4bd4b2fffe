package model

import (
	"strings"
)

// ResourceType is a catalog resource category.
type ResourceType string

const (
	ResourceTypeArticle ResourceType = "article"
	ResourceTypeBook    ResourceType = "book"
	ResourceTypeJournal ResourceType = "journal"
	ResourceTypeThesis  ResourceType = "thesis"
)

// ResourceTypes lists the recognized resource categories.
var ResourceTypes = []ResourceType{
	ResourceTypeArticle,
	ResourceTypeBook,
	ResourceTypeJournal,
	ResourceTypeThesis,
}

// ParseResourceType normalizes a free-form type string against the fixed
// enumeration, case-insensitively. Unrecognized values report false.
func ParseResourceType(s string) (ResourceType, bool) {
	normalized := ResourceType(strings.ToLower(strings.TrimSpace(s)))
	for _, rt := range ResourceTypes {
		if normalized == rt {
			return rt, true
		}
	}
	return "", false
}

// SearchRequest describes one catalog search.
type SearchRequest struct {
	// Query is the free-text search, required.
	Query string `json:"query"`
	// ResourceType filters by category; empty means any type.
	ResourceType ResourceType `json:"resource_type,omitempty"`
	// DateFrom and DateTo are optional publication-year bounds.
	DateFrom *int `json:"date_from,omitempty"`
	DateTo   *int `json:"date_to,omitempty"`
	// Limit is the maximum number of records to return.
	Limit int `json:"limit"`
}

// Resource is a normalized catalog record.
type Resource struct {
	Title   string   `json:"title"`
	Authors []string `json:"authors,omitempty"`
	Year    string   `json:"year,omitempty"`
	Type    string   `json:"type,omitempty"`
	URL     string   `json:"url,omitempty"`
}

// SearchResult is an ordered page of resources plus the provider's total
// match count, which may exceed the page size.
type SearchResult struct {
	Resources    []Resource `json:"resources"`
	TotalMatched int        `json:"total_matched"`
}
