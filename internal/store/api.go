package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/marketarea"
)

// APIStore implements Store against the upstream market area HTTP API.
type APIStore struct {
	baseURL string
	token   string
	client  *http.Client
}

// APIOptions configures the API-backed store.
type APIOptions struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// NewAPI builds an APIStore. BaseURL is required.
func NewAPI(opts APIOptions) (*APIStore, error) {
	if opts.BaseURL == "" {
		return nil, eris.New("api: base URL is required")
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &APIStore{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// createPayload is the wire shape the API accepts for a new market area.
type createPayload struct {
	MAType          string                    `json:"ma_type"`
	Name            string                    `json:"name"`
	ShortName       string                    `json:"short_name"`
	StyleSettings   marketarea.StyleSettings  `json:"style_settings"`
	Project         string                    `json:"project"`
	ProjectID       string                    `json:"project_id"`
	Description     string                    `json:"description,omitempty"`
	Locations       []marketarea.Location     `json:"locations,omitempty"`
	RadiusPoints    []marketarea.Point        `json:"radius_points,omitempty"`
	DriveTimePoints []marketarea.Point        `json:"drive_time_points,omitempty"`
}

func (s *APIStore) CreateMarketArea(ctx context.Context, draft *marketarea.Draft) (*marketarea.MarketArea, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	payload := createPayload{
		MAType:          string(draft.Kind),
		Name:            draft.Name,
		ShortName:       draft.ShortName,
		StyleSettings:   draft.Style,
		Project:         draft.ProjectID,
		ProjectID:       draft.ProjectID,
		Description:     draft.Description,
		Locations:       draft.Locations,
		RadiusPoints:    draft.RadiusPoints,
		DriveTimePoints: draft.DriveTimePoints,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "api: marshal market area")
	}

	endpoint := fmt.Sprintf("%s/api/projects/%s/market-areas/", s.baseURL, draft.ProjectID)
	resp, err := s.do(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, eris.Wrap(err, "api: read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RejectionError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var created marketarea.MarketArea
	if err := json.Unmarshal(respBody, &created); err != nil {
		return nil, eris.Wrap(err, "api: decode created market area")
	}
	if created.ID == "" {
		return nil, eris.New("api: response carries no id")
	}
	return &created, nil
}

func (s *APIStore) GetMarketArea(ctx context.Context, id string) (*marketarea.MarketArea, error) {
	endpoint := fmt.Sprintf("%s/api/market-areas/%s/", s.baseURL, id)
	resp, err := s.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("api: get market area %s: status %d", id, resp.StatusCode)
	}

	var ma marketarea.MarketArea
	if err := json.NewDecoder(resp.Body).Decode(&ma); err != nil {
		return nil, eris.Wrap(err, "api: decode market area")
	}
	return &ma, nil
}

func (s *APIStore) ListMarketAreas(ctx context.Context, projectID string) ([]marketarea.MarketArea, error) {
	endpoint := fmt.Sprintf("%s/api/projects/%s/market-areas/", s.baseURL, projectID)
	resp, err := s.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("api: list market areas: status %d", resp.StatusCode)
	}

	var areas []marketarea.MarketArea
	if err := json.NewDecoder(resp.Body).Decode(&areas); err != nil {
		return nil, eris.Wrap(err, "api: decode market areas")
	}
	return areas, nil
}

// Migrate is a no-op; the remote API owns its schema.
func (s *APIStore) Migrate(context.Context) error { return nil }

func (s *APIStore) Close() error { return nil }

func (s *APIStore) do(ctx context.Context, method, endpoint string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, eris.Wrap(err, "api: build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "api: %s %s", method, endpoint)
	}
	return resp, nil
}
