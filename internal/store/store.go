// Package store persists market areas. Three implementations exist:
// postgres for direct database writes, sqlite for local single-file use,
// and an HTTP client for the upstream market area API.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/marketarea"
)

// Store is the persistence collaborator of the import pipeline.
type Store interface {
	// CreateMarketArea persists a draft and returns the stored record
	// with its assigned id and order.
	CreateMarketArea(ctx context.Context, draft *marketarea.Draft) (*marketarea.MarketArea, error)

	// GetMarketArea fetches one market area by id.
	GetMarketArea(ctx context.Context, id string) (*marketarea.MarketArea, error)

	// ListMarketAreas returns a project's market areas in display order.
	ListMarketAreas(ctx context.Context, projectID string) ([]marketarea.MarketArea, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// RejectionError is returned when the backing service refuses a draft,
// carrying the raw response body for message extraction.
type RejectionError struct {
	Status int
	Body   string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("store: create rejected (status %d)", e.Status)
}

// Message extracts the human-readable rejection reason. Priority: a plain
// body string, then the detail, message, and error keys of a JSON body,
// then the raw JSON itself.
func (e *RejectionError) Message() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return e.Error()
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return body
	}
	for _, key := range []string{"detail", "message", "error"} {
		if s, ok := payload[key].(string); ok && s != "" {
			return s
		}
	}
	return body
}

// RejectionMessage renders any persistence error for an import report:
// rejection bodies get the extraction chain, everything else its message.
func RejectionMessage(err error) string {
	var re *RejectionError
	if errors.As(err, &re) {
		return re.Message()
	}
	return err.Error()
}
