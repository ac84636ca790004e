package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/graphein/graphein/internal/api"
	"github.com/graphein/graphein/internal/models"
	"github.com/graphein/graphein/internal/store"
)

func TestUnitCreate_Valid(t *testing.T) {
	t.Parallel()

	svc := &mockUnitSvc{
		createFn: func(_ context.Context, unit models.KnowledgeUnit) (*models.KnowledgeUnit, error) {
			unit.ID = "u1"
			unit.CreatedAt = time.Now()
			unit.UpdatedAt = time.Now()

			return &unit, nil
		},
	}

	r := newTestRouter()
	h := api.NewUnitHandler(svc, testLogger())
	r.POST("/units", h.Create)

	w := doRequest(r, http.MethodPost, "/units", `{"title":"Plate Tectonics","content":"Continental drift.","unit_type":"concept"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var unit models.KnowledgeUnit
	if err := json.Unmarshal(w.Body.Bytes(), &unit); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if unit.ID != "u1" {
		t.Errorf("expected id 'u1', got %q", unit.ID)
	}
	if unit.Title != "Plate Tectonics" {
		t.Errorf("expected title to round-trip, got %q", unit.Title)
	}
}

func TestUnitCreate_Duplicate(t *testing.T) {
	t.Parallel()

	svc := &mockUnitSvc{
		createFn: func(_ context.Context, _ models.KnowledgeUnit) (*models.KnowledgeUnit, error) {
			return nil, &models.DuplicateError{Entity: "unit", ExistingID: "u-existing"}
		},
	}

	r := newTestRouter()
	h := api.NewUnitHandler(svc, testLogger())
	r.POST("/units", h.Create)

	w := doRequest(r, http.MethodPost, "/units", `{"title":"Plate Tectonics"}`)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if resp["existing_id"] != "u-existing" {
		t.Errorf("expected existing_id in response, got %v", resp)
	}
}

func TestUnitCreate_MissingTitle(t *testing.T) {
	t.Parallel()

	svc := &mockUnitSvc{
		createFn: func(_ context.Context, _ models.KnowledgeUnit) (*models.KnowledgeUnit, error) {
			return nil, models.ErrMissingTitle
		},
	}

	r := newTestRouter()
	h := api.NewUnitHandler(svc, testLogger())
	r.POST("/units", h.Create)

	w := doRequest(r, http.MethodPost, "/units", `{"content":"no title"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUnitGet_Found(t *testing.T) {
	t.Parallel()

	svc := &mockUnitSvc{
		getFn: func(_ context.Context, unitID string) (*models.KnowledgeUnit, error) {
			return &models.KnowledgeUnit{ID: unitID, Title: "Gravity"}, nil
		},
	}

	r := newTestRouter()
	h := api.NewUnitHandler(svc, testLogger())
	r.GET("/units/:id", h.Get)

	w := doRequest(r, http.MethodGet, "/units/u1", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var unit models.KnowledgeUnit
	if err := json.Unmarshal(w.Body.Bytes(), &unit); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if unit.ID != "u1" {
		t.Errorf("expected id 'u1', got %q", unit.ID)
	}
}

func TestUnitGet_NotFound(t *testing.T) {
	t.Parallel()

	svc := &mockUnitSvc{
		getFn: func(_ context.Context, _ string) (*models.KnowledgeUnit, error) {
			return nil, models.ErrUnitNotFound
		},
	}

	r := newTestRouter()
	h := api.NewUnitHandler(svc, testLogger())
	r.GET("/units/:id", h.Get)

	w := doRequest(r, http.MethodGet, "/units/missing", "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUnitList_PassesFilters(t *testing.T) {
	t.Parallel()

	var gotFilter models.UnitFilter
	var gotLimit int

	svc := &mockUnitSvc{
		listFn: func(_ context.Context, filter models.UnitFilter, limit, _ int) ([]models.KnowledgeUnit, int64, error) {
			gotFilter = filter
			gotLimit = limit

			return []models.KnowledgeUnit{{ID: "u1"}}, 1, nil
		},
	}

	r := newTestRouter()
	h := api.NewUnitHandler(svc, testLogger())
	r.GET("/units", h.List)

	w := doRequest(r, http.MethodGet, "/units?type=concept&tag=physics&domain=science&limit=10", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if gotFilter.UnitType != "concept" || gotFilter.Tag != "physics" || gotFilter.Domain != "science" {
		t.Errorf("filter not passed through: %+v", gotFilter)
	}
	if gotLimit != 10 {
		t.Errorf("expected limit 10, got %d", gotLimit)
	}
}

func TestUnitSearch_RequiresQuery(t *testing.T) {
	t.Parallel()

	r := newTestRouter()
	h := api.NewUnitHandler(&mockUnitSvc{}, testLogger())
	r.GET("/search", h.Search)

	w := doRequest(r, http.MethodGet, "/search", "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUnitSearch_ReturnsScoredResults(t *testing.T) {
	t.Parallel()

	svc := &mockUnitSvc{
		searchFn: func(_ context.Context, text string, _ models.UnitFilter, _ int) ([]store.SearchResult, error) {
			if text != "gravity" {
				t.Errorf("expected query 'gravity', got %q", text)
			}

			return []store.SearchResult{
				{Unit: models.KnowledgeUnit{ID: "u1", Title: "Gravity"}, Score: 0.9},
			}, nil
		},
	}

	r := newTestRouter()
	h := api.NewUnitHandler(svc, testLogger())
	r.GET("/search", h.Search)

	w := doRequest(r, http.MethodGet, "/search?q=gravity", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if resp.Count != 1 {
		t.Errorf("expected count 1, got %d", resp.Count)
	}
}

func TestUnitMerge_SelfReference(t *testing.T) {
	t.Parallel()

	svc := &mockUnitSvc{
		mergeFn: func(_ context.Context, _ string, _ []string) (*models.KnowledgeUnit, error) {
			return nil, models.ErrSelfReference
		},
	}

	r := newTestRouter()
	h := api.NewUnitHandler(svc, testLogger())
	r.POST("/units/:id/merge", h.Merge)

	w := doRequest(r, http.MethodPost, "/units/u1/merge", `{"source_ids":["u1"]}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUnitMerge_OK(t *testing.T) {
	t.Parallel()

	svc := &mockUnitSvc{
		mergeFn: func(_ context.Context, targetID string, sourceIDs []string) (*models.KnowledgeUnit, error) {
			if len(sourceIDs) != 2 {
				t.Errorf("expected 2 source ids, got %d", len(sourceIDs))
			}

			return &models.KnowledgeUnit{ID: targetID, MergedUnits: sourceIDs}, nil
		},
	}

	r := newTestRouter()
	h := api.NewUnitHandler(svc, testLogger())
	r.POST("/units/:id/merge", h.Merge)

	w := doRequest(r, http.MethodPost, "/units/target/merge", `{"source_ids":["a","b"]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUnitDelete_OK(t *testing.T) {
	t.Parallel()

	svc := &mockUnitSvc{
		deleteFn: func(_ context.Context, unitID string) error {
			if unitID != "u1" {
				t.Errorf("expected id 'u1', got %q", unitID)
			}

			return nil
		},
	}

	r := newTestRouter()
	h := api.NewUnitHandler(svc, testLogger())
	r.DELETE("/units/:id", h.Delete)

	w := doRequest(r, http.MethodDelete, "/units/u1", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}
