package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"

	"github.com/scholarbot/library-assistant/internal/library"
	"github.com/scholarbot/library-assistant/internal/model"
	"github.com/scholarbot/library-assistant/pkg/logger"
)

// SearchToolName is the name the model uses to invoke the catalog search.
const SearchToolName = "search_library_resources"

// Searcher runs catalog searches. *library.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, req model.SearchRequest) (*model.SearchResult, error)
}

// SearchTool exposes the library catalog search to the model. It validates
// raw arguments, delegates to the Searcher, and renders results or failure
// diagnostics as text the model can reason over.
type SearchTool struct {
	searcher     Searcher
	limitDefault int
	limitMax     int
	logger       *logger.Logger
}

// NewSearchTool creates the catalog search tool.
func NewSearchTool(searcher Searcher, limitDefault, limitMax int, log *logger.Logger) *SearchTool {
	if limitDefault <= 0 {
		limitDefault = 10
	}
	if limitMax <= 0 {
		limitMax = 50
	}
	return &SearchTool{
		searcher:     searcher,
		limitDefault: limitDefault,
		limitMax:     limitMax,
		logger:       log,
	}
}

// Name implements Tool.
func (t *SearchTool) Name() string { return SearchToolName }

// Description implements Tool.
func (t *SearchTool) Description() string {
	return "Search the university library for academic resources including articles, books, " +
		"journals, and dissertations. Filter by resource type and publication year range to refine results."
}

// Parameters implements Tool.
func (t *SearchTool) Parameters() jsonschema.Definition {
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"query": {
				Type:        jsonschema.String,
				Description: "Search keywords or phrases to find in library resources",
			},
			"resource_type": {
				Type:        jsonschema.String,
				Enum:        []string{"article", "book", "journal", "thesis"},
				Description: "Type of resource to search for; omit to search all types",
			},
			"date_from": {
				Type:        jsonschema.Integer,
				Description: "Start year for the date range filter, 4-digit year (e.g. 2020)",
			},
			"date_to": {
				Type:        jsonschema.Integer,
				Description: "End year for the date range filter, 4-digit year (e.g. 2024)",
			},
			"limit": {
				Type:        jsonschema.Integer,
				Description: fmt.Sprintf("Maximum number of results to return (1-%d)", t.limitMax),
			},
		},
		Required: []string{"query"},
	}
}

type searchArgs struct {
	Query        string `json:"query"`
	ResourceType string `json:"resource_type"`
	DateFrom     *int   `json:"date_from"`
	DateTo       *int   `json:"date_to"`
	Limit        int    `json:"limit"`
}

// Invoke implements Tool. Every failure path returns a corrective outcome;
// nothing below this layer reaches the model as a raised error.
func (t *SearchTool) Invoke(ctx context.Context, raw json.RawMessage) Outcome {
	var args searchArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return validationFailure(
			"The search arguments were not valid JSON (%v). Re-issue the call with a JSON object containing at least a \"query\" string.",
			err,
		)
	}

	req, outcome, ok := t.buildRequest(args)
	if !ok {
		return outcome
	}

	t.logger.Info("library search",
		zap.String("query", req.Query),
		zap.String("resource_type", string(req.ResourceType)),
		zap.Int("limit", req.Limit),
	)

	result, err := t.searcher.Search(ctx, req)
	if err != nil {
		return t.describeFailure(err)
	}

	if len(result.Resources) == 0 {
		return Outcome{Content: fmt.Sprintf(
			"No resources found for query %q. Suggest broader search terms, or relax the filters: drop the date range or remove the resource type restriction.",
			req.Query,
		)}
	}

	return Outcome{Content: formatResult(req, result)}
}

// buildRequest validates and normalizes raw arguments into a SearchRequest.
func (t *SearchTool) buildRequest(args searchArgs) (model.SearchRequest, Outcome, bool) {
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return model.SearchRequest{}, validationFailure(
			"The \"query\" argument is missing or empty. Ask the user what topic they want to research before searching.",
		), false
	}

	req := model.SearchRequest{
		Query:    query,
		DateFrom: args.DateFrom,
		DateTo:   args.DateTo,
		Limit:    args.Limit,
	}

	// Unrecognized types are treated as absent rather than erroring.
	if rt, ok := model.ParseResourceType(args.ResourceType); ok {
		req.ResourceType = rt
	}

	if req.Limit <= 0 {
		req.Limit = t.limitDefault
	}
	if req.Limit > t.limitMax {
		req.Limit = t.limitMax
	}

	return req, Outcome{}, true
}

// describeFailure converts an upstream error into a short diagnostic the
// model can relay or act on.
func (t *SearchTool) describeFailure(err error) Outcome {
	var upstream *library.UpstreamError
	if !errors.As(err, &upstream) {
		t.logger.Error("library search failed", zap.Error(err))
		return upstreamFailure("The library search failed unexpectedly. Apologize and ask the user to try again.")
	}

	t.logger.Warn("library search unavailable",
		zap.String("kind", string(upstream.Kind)),
		zap.String("detail", upstream.Detail),
	)

	switch upstream.Kind {
	case library.KindTimeout, library.KindServerError, library.KindRateLimited:
		return upstreamFailure(
			"The library search is temporarily unavailable. Apologize to the user and suggest trying again in a few minutes.",
		)
	case library.KindClientError:
		return upstreamFailure(
			"The library rejected the search request. Try broader terms or fewer filters.",
		)
	default:
		return upstreamFailure(
			"The library returned an unreadable response. Apologize to the user and suggest trying again later.",
		)
	}
}

// formatResult renders up to limit records into a compact text block.
func formatResult(req model.SearchRequest, result *model.SearchResult) string {
	shown := len(result.Resources)
	if shown > req.Limit {
		shown = req.Limit
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d resources (showing %d):\n", result.TotalMatched, shown)

	for i, res := range result.Resources[:shown] {
		fmt.Fprintf(&b, "\n%d. **%s**", i+1, res.Title)
		if len(res.Authors) > 0 {
			fmt.Fprintf(&b, "\n   Authors: %s", strings.Join(res.Authors, "; "))
		}
		if res.Year != "" {
			fmt.Fprintf(&b, "\n   Year: %s", res.Year)
		}
		if res.Type != "" {
			fmt.Fprintf(&b, "\n   Type: %s", res.Type)
		}
		if res.URL != "" {
			fmt.Fprintf(&b, "\n   URL: %s", res.URL)
		}
		b.WriteString("\n")
	}

	return b.String()
}
