package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"eduadmin-backend/shared/utils/sequence"
)

// ErrSuperseded is returned by List when a newer List call was issued while the
// request was in flight. The stale page must not be rendered.
var ErrSuperseded = errors.New("directory listing superseded by a newer request")

// DirectoryClient talks to the organization service. List calls follow
// last-request-wins: only the response to the newest call is delivered.
type DirectoryClient struct {
	baseURL    string
	operator   string
	httpClient *http.Client
	seq        sequence.Sequencer
}

// NewDirectoryClient creates a client for the organization service at baseURL.
// operator is sent with every write as the audit name.
func NewDirectoryClient(baseURL, operator string) *DirectoryClient {
	return &DirectoryClient{
		baseURL:  baseURL,
		operator: operator,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a refusal or failure reported by the service
type APIError struct {
	Status    int    `json:"-"`
	Message   string `json:"error"`
	Code      string `json:"code"`
	Field     string `json:"field,omitempty"`
	Dependent string `json:"dependent,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("organization service: %s (%s, status %d)", e.Message, e.Code, e.Status)
}

type DependentCounts struct {
	Majors   int64 `json:"majors_count"`
	Classes  int64 `json:"classes_count"`
	Students int64 `json:"students_count"`
}

type Organization struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	ParentID     *uuid.UUID      `json:"parent_id"`
	Level        int             `json:"level"`
	PaletteIndex int             `json:"palette_index"`
	Direct       DependentCounts `json:"direct"`
	Totals       DependentCounts `json:"totals"`
	Creator      string          `json:"creator"`
	Updater      string          `json:"updater"`
}

type TreeNode struct {
	Organization
	Expanded bool       `json:"expanded"`
	Children []TreeNode `json:"children"`
}

// ListQuery selects one page of the flattened directory
type ListQuery struct {
	Skip   int
	Limit  int
	Search string
}

type ListPage struct {
	Items []Organization `json:"items"`
	Total int            `json:"total"`
	Tree  []TreeNode     `json:"tree"`
	Seq   *uint64        `json:"seq,omitempty"`
}

type envelope[T any] struct {
	Success  bool     `json:"success"`
	Data     T        `json:"data"`
	Warnings []string `json:"warnings,omitempty"`
}

// List fetches a page of the directory. If another List call starts before this one
// returns, this call yields ErrSuperseded.
func (dc *DirectoryClient) List(ctx context.Context, q ListQuery) (*ListPage, error) {
	seq := dc.seq.Next()

	params := url.Values{}
	params.Set("skip", strconv.Itoa(q.Skip))
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	params.Set("seq", strconv.FormatUint(seq, 10))

	var out envelope[ListPage]
	if err := dc.do(ctx, http.MethodGet, "/api/organizations?"+params.Encode(), nil, http.StatusOK, &out); err != nil {
		if !dc.seq.Current(seq) {
			return nil, ErrSuperseded
		}
		return nil, err
	}

	if !dc.seq.Current(seq) || (out.Data.Seq != nil && *out.Data.Seq != seq) {
		return nil, ErrSuperseded
	}
	return &out.Data, nil
}

// Options fetches parent picker entries, leaving out exclude and its subtree
func (dc *DirectoryClient) Options(ctx context.Context, exclude *uuid.UUID) ([]Organization, error) {
	path := "/api/organizations/options"
	if exclude != nil {
		path += "?exclude=" + exclude.String()
	}
	var out envelope[[]Organization]
	if err := dc.do(ctx, http.MethodGet, path, nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Create adds an organization and returns it with any policy warnings
func (dc *DirectoryClient) Create(ctx context.Context, name string, parentID *uuid.UUID) (*Organization, []string, error) {
	payload := map[string]any{"name": name, "parent_id": parentID}
	var out envelope[Organization]
	if err := dc.do(ctx, http.MethodPost, "/api/organizations", payload, http.StatusCreated, &out); err != nil {
		return nil, nil, err
	}
	return &out.Data, out.Warnings, nil
}

// Move reparents id under parentID, or to the top level when parentID is nil
func (dc *DirectoryClient) Move(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) (*Organization, error) {
	payload := map[string]any{"parent_id": parentID}
	if parentID == nil {
		payload = map[string]any{"clear_parent": true}
	}
	var out envelope[Organization]
	if err := dc.do(ctx, http.MethodPut, "/api/organizations/"+id.String(), payload, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Delete removes id
func (dc *DirectoryClient) Delete(ctx context.Context, id uuid.UUID) error {
	return dc.do(ctx, http.MethodDelete, "/api/organizations/"+id.String(), nil, http.StatusOK, nil)
}

func (dc *DirectoryClient) do(ctx context.Context, method, path string, payload any, want int, out any) error {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, dc.baseURL+path, &body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if dc.operator != "" {
		req.Header.Set("X-Operator", dc.operator)
	}

	resp, err := dc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Code == "" {
			apiErr.Code = "unexpected_status"
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
