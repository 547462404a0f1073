package clients

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listServer answers GET /api/organizations with one item named after the search
// term. Requests searching for "slow" wait for release.
func listServer(t *testing.T, arrived chan<- struct{}, release <-chan struct{}) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("search") == "slow" {
			arrived <- struct{}{}
			<-release
		}
		seq, err := strconv.ParseUint(q.Get("seq"), 10, 64)
		assert.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"items": []map[string]any{{"id": uuid.New(), "name": q.Get("search"), "level": 0}},
				"total": 1,
				"tree":  []any{},
				"seq":   seq,
			},
		})
	}))
}

func TestDirectoryClient_ListReturnsPage(t *testing.T) {
	srv := listServer(t, nil, nil)
	defer srv.Close()

	page, err := NewDirectoryClient(srv.URL, "registrar").List(context.Background(), ListQuery{Limit: 10, Search: "Dept"})

	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Dept", page.Items[0].Name)
	assert.Equal(t, 1, page.Total)
}

func TestDirectoryClient_LastRequestWins(t *testing.T) {
	arrived := make(chan struct{})
	release := make(chan struct{})
	srv := listServer(t, arrived, release)
	defer srv.Close()

	client := NewDirectoryClient(srv.URL, "")
	ctx := context.Background()

	type result struct {
		page *ListPage
		err  error
	}
	slow := make(chan result, 1)
	go func() {
		page, err := client.List(ctx, ListQuery{Search: "slow"})
		slow <- result{page, err}
	}()
	<-arrived

	page, err := client.List(ctx, ListQuery{Search: "fast"})
	require.NoError(t, err)
	assert.Equal(t, "fast", page.Items[0].Name)

	close(release)
	stale := <-slow
	assert.Nil(t, stale.page)
	assert.ErrorIs(t, stale.err, ErrSuperseded)
}

func TestDirectoryClient_DecodesRefusal(t *testing.T) {
	var operator string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		operator = r.Header.Get("X-Operator")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":   false,
			"error":     "cannot delete: majors are attached",
			"code":      "has_dependents",
			"dependent": "majors",
		})
	}))
	defer srv.Close()

	err := NewDirectoryClient(srv.URL, "registrar").Delete(context.Background(), uuid.New())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "has_dependents", apiErr.Code)
	assert.Equal(t, "majors", apiErr.Dependent)
	assert.Equal(t, "registrar", operator)
}

func TestDirectoryClient_MoveToTopLevelClearsParent(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"name": "Dept A", "level": 0}})
	}))
	defer srv.Close()

	org, err := NewDirectoryClient(srv.URL, "").Move(context.Background(), uuid.New(), nil)

	require.NoError(t, err)
	assert.Equal(t, 0, org.Level)
	assert.Equal(t, map[string]any{"clear_parent": true}, body)
}
