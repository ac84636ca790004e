package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/graphein/graphein/internal/api"
	"github.com/graphein/graphein/internal/models"
)

func TestGraphAddUnits_OK(t *testing.T) {
	t.Parallel()

	svc := &mockGraphSvc{
		addUnitsFn: func(_ context.Context, graphID string, unitIDs []string) (*models.KnowledgeGraph, int, error) {
			if graphID != "g1" || len(unitIDs) != 2 {
				t.Errorf("unexpected args: %q %v", graphID, unitIDs)
			}

			return &models.KnowledgeGraph{ID: graphID, IncludedUnits: unitIDs, EntityCount: 2}, 2, nil
		},
	}

	r := newTestRouter()
	h := api.NewGraphHandler(svc, testLogger())
	r.POST("/graphs/:id/units", h.AddUnits)

	w := doRequest(r, http.MethodPost, "/graphs/g1/units", `{"unit_ids":["a","b"]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Added int `json:"added"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if resp.Added != 2 {
		t.Errorf("expected 2 added, got %d", resp.Added)
	}
}

func TestGraphAddUnits_EmptyBody(t *testing.T) {
	t.Parallel()

	r := newTestRouter()
	h := api.NewGraphHandler(&mockGraphSvc{}, testLogger())
	r.POST("/graphs/:id/units", h.AddUnits)

	w := doRequest(r, http.MethodPost, "/graphs/g1/units", `{}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGraphAddUnits_MissingUnit(t *testing.T) {
	t.Parallel()

	svc := &mockGraphSvc{
		addUnitsFn: func(_ context.Context, _ string, _ []string) (*models.KnowledgeGraph, int, error) {
			return nil, 0, models.ErrUnitNotFound
		},
	}

	r := newTestRouter()
	h := api.NewGraphHandler(svc, testLogger())
	r.POST("/graphs/:id/units", h.AddUnits)

	w := doRequest(r, http.MethodPost, "/graphs/g1/units", `{"unit_ids":["ghost"]}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGraphVisual_PassesRootsAndDepth(t *testing.T) {
	t.Parallel()

	svc := &mockGraphSvc{
		visualFn: func(_ context.Context, graphID string, rootIDs []string, maxDepth int) (*models.VisualData, error) {
			if graphID != "g1" || maxDepth != 3 {
				t.Errorf("unexpected args: %q %d", graphID, maxDepth)
			}
			if len(rootIDs) != 2 || rootIDs[0] != "a" || rootIDs[1] != "b" {
				t.Errorf("expected roots [a b], got %v", rootIDs)
			}

			return &models.VisualData{
				Nodes: []models.VisualNode{{ID: "a"}},
			}, nil
		},
	}

	r := newTestRouter()
	h := api.NewGraphHandler(svc, testLogger())
	r.GET("/graphs/:id/visual", h.Visual)

	w := doRequest(r, http.MethodGet, "/graphs/g1/visual?roots=a,b&depth=3", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGraphVisual_DepthZeroPreserved(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		query     string
		wantDepth int
	}{
		{name: "explicit zero", query: "?depth=0", wantDepth: 0},
		{name: "absent selects default", query: "", wantDepth: -1},
		{name: "negative selects default", query: "?depth=-2", wantDepth: -1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockGraphSvc{
				visualFn: func(_ context.Context, _ string, _ []string, maxDepth int) (*models.VisualData, error) {
					if maxDepth != tc.wantDepth {
						t.Errorf("expected depth %d, got %d", tc.wantDepth, maxDepth)
					}

					return &models.VisualData{Nodes: []models.VisualNode{{ID: "a"}}}, nil
				},
			}

			r := newTestRouter()
			h := api.NewGraphHandler(svc, testLogger())
			r.GET("/graphs/:id/visual", h.Visual)

			w := doRequest(r, http.MethodGet, "/graphs/g1/visual"+tc.query, "")

			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestGraphVisual_EmptyGraph(t *testing.T) {
	t.Parallel()

	svc := &mockGraphSvc{
		visualFn: func(_ context.Context, _ string, _ []string, _ int) (*models.VisualData, error) {
			return nil, models.ErrGraphEmpty
		},
	}

	r := newTestRouter()
	h := api.NewGraphHandler(svc, testLogger())
	r.GET("/graphs/:id/visual", h.Visual)

	w := doRequest(r, http.MethodGet, "/graphs/g1/visual", "")

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGraphCreate_MissingOwner(t *testing.T) {
	t.Parallel()

	svc := &mockGraphSvc{
		createFn: func(_ context.Context, _ models.KnowledgeGraph) (*models.KnowledgeGraph, error) {
			return nil, models.ErrMissingOwner
		},
	}

	r := newTestRouter()
	h := api.NewGraphHandler(svc, testLogger())
	r.POST("/graphs", h.Create)

	w := doRequest(r, http.MethodPost, "/graphs", `{"name":"My Graph"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGraphList_PublicFilter(t *testing.T) {
	t.Parallel()

	var gotFilter models.GraphFilter

	svc := &mockGraphSvc{
		listFn: func(_ context.Context, filter models.GraphFilter, _, _ int) ([]models.KnowledgeGraph, int64, error) {
			gotFilter = filter

			return nil, 0, nil
		},
	}

	r := newTestRouter()
	h := api.NewGraphHandler(svc, testLogger())
	r.GET("/graphs", h.List)

	w := doRequest(r, http.MethodGet, "/graphs?owner_id=alice&is_public=true", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if gotFilter.OwnerID != "alice" {
		t.Errorf("expected owner filter, got %+v", gotFilter)
	}
	if gotFilter.IsPublic == nil || !*gotFilter.IsPublic {
		t.Errorf("expected is_public=true filter, got %+v", gotFilter.IsPublic)
	}
}

func TestGraphStats_NotFound(t *testing.T) {
	t.Parallel()

	svc := &mockGraphSvc{
		statsFn: func(_ context.Context, _ string) (*models.GraphStats, error) {
			return nil, models.ErrGraphNotFound
		},
	}

	r := newTestRouter()
	h := api.NewGraphHandler(svc, testLogger())
	r.GET("/graphs/:id/stats", h.Stats)

	w := doRequest(r, http.MethodGet, "/graphs/missing/stats", "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}
