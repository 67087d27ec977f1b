// Package enrich derives Type/Location/Confidence metadata for an
// organisation from its website URL via the model, memoized on disk.
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"ost-labs/orgmeta/internal/ai"
	"ost-labs/orgmeta/internal/cache"
	"ost-labs/orgmeta/internal/models"
	"ost-labs/orgmeta/internal/prompt"
)

// Enricher classifies website URLs, consulting the disk cache before every
// paid model call.
type Enricher struct {
	cache  *cache.Cache
	client *ai.Client
	logger *log.Logger
}

// New builds an Enricher around a cache and a model client.
func New(c *cache.Cache, client *ai.Client) *Enricher {
	return &Enricher{
		cache:  c,
		client: client,
		logger: log.New(os.Stdout, "ENRICH: ", log.LstdFlags),
	}
}

// SetLogger replaces the default stdout logger.
func (e *Enricher) SetLogger(l *log.Logger) {
	e.logger = l
}

// Classify returns the enrichment result for a URL. A cached result is
// returned without calling the model, unless it recorded an exception, in
// which case the URL is retried. Failures never abort the batch: they come
// back as a result holding only "exception" and "url". Whatever the
// outcome, the result is inserted into the cache if the key is still free.
func (e *Enricher) Classify(ctx context.Context, url string) models.Result {
	cached, err := e.cache.Get(url)
	if err != nil {
		e.logger.Printf("cache lookup failed for %s: %v", url, err)
	}
	if cached != nil {
		if _, failed := cached.Exception(); !failed {
			return cached
		}
	}

	out := e.classify(ctx, url)
	out["url"] = url
	if err := e.cache.Add(url, out); err != nil {
		e.logger.Printf("cache write failed for %s: %v", url, err)
	}
	return out
}

func (e *Enricher) classify(ctx context.Context, url string) models.Result {
	rendered, err := prompt.Render(prompt.OrganisationMetadata, prompt.Vars{Website: url})
	if err != nil {
		return models.Result{"exception": err.Error()}
	}

	raw, err := e.client.Complete(ctx, rendered)
	if err != nil {
		var apiErr *ai.APIError
		if errors.As(err, &apiErr) &&
			(apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
			e.logger.Printf("WARNING: model error (due to user permissions %v)", err)
		}
		return models.Result{"exception": err.Error()}
	}

	parsed, err := Parse(raw)
	if err != nil {
		return models.Result{"exception": err.Error()}
	}
	return parsed
}

// CleanResponse strips the wrapping the model tends to add around its JSON:
// newlines, triple-backtick fences and the ```json language marker.
func CleanResponse(raw string) string {
	s := strings.ReplaceAll(raw, "\n", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.ReplaceAll(s, "json{", "{")
	return s
}

// Parse cleans a raw model response and decodes it as a JSON object.
// Best-effort only: inline comments or truncated output fail here.
func Parse(raw string) (models.Result, error) {
	var out models.Result
	if err := json.Unmarshal([]byte(CleanResponse(raw)), &out); err != nil {
		return nil, fmt.Errorf("failed to parse model output: %w", err)
	}
	return out, nil
}
