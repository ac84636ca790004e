package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/graphein/graphein/internal/models"
)

func TestUnitCreateNormalizes(t *testing.T) {
	var stored models.KnowledgeUnit

	mock := &mockUnitStore{
		createUnit: func(_ context.Context, unit models.KnowledgeUnit) (*models.KnowledgeUnit, error) {
			stored = unit
			unit.ID = "unit-1"
			return &unit, nil
		},
	}

	sink := &mockEventSink{}
	s := NewUnitService(mock, sink, testLogger())

	created, err := s.Create(context.Background(), models.KnowledgeUnit{Title: "Plate Tectonics"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored.CanonicalName != "plate_tectonics" {
		t.Errorf("expected canonical name derived, got %q", stored.CanonicalName)
	}

	if stored.UnitType != "note" || stored.Status.State != models.StateDraft {
		t.Errorf("expected defaults applied, got %+v", stored)
	}

	if created.ID != "unit-1" {
		t.Errorf("expected created unit returned, got %+v", created)
	}

	if len(sink.events) != 1 || sink.events[0] != "unit.created" {
		t.Errorf("expected unit.created event, got %v", sink.events)
	}
}

func TestUnitCreateLongTitleTruncated(t *testing.T) {
	mock := &mockUnitStore{
		createUnit: func(_ context.Context, unit models.KnowledgeUnit) (*models.KnowledgeUnit, error) {
			if len(unit.Title) > 100 {
				t.Errorf("title not truncated: %d chars", len(unit.Title))
			}
			if !strings.HasSuffix(unit.Title, "...") {
				t.Errorf("expected ellipsis suffix, got %q", unit.Title)
			}
			return &unit, nil
		},
	}

	s := NewUnitService(mock, nil, testLogger())

	_, err := s.Create(context.Background(), models.KnowledgeUnit{Title: strings.Repeat("t", 150)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUnitCreateMissingTitle(t *testing.T) {
	s := NewUnitService(&mockUnitStore{}, nil, testLogger())

	_, err := s.Create(context.Background(), models.KnowledgeUnit{Content: "body only"})

	if !errors.Is(err, models.ErrMissingTitle) {
		t.Errorf("expected missing title error, got %v", err)
	}
}

func TestUnitGetBumpsViewCount(t *testing.T) {
	bumped := make(chan string, 1)

	mock := &mockUnitStore{
		getUnit: func(_ context.Context, unitID string) (*models.KnowledgeUnit, error) {
			return &models.KnowledgeUnit{ID: unitID}, nil
		},
		incrementViewCount: func(_ context.Context, unitID string) error {
			bumped <- unitID
			return nil
		},
	}

	s := NewUnitService(mock, nil, testLogger())

	unit, err := s.Get(context.Background(), "unit-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if unit.ID != "unit-1" {
		t.Errorf("unexpected unit: %+v", unit)
	}

	select {
	case id := <-bumped:
		if id != "unit-1" {
			t.Errorf("bumped wrong unit: %q", id)
		}
	case <-time.After(time.Second):
		t.Error("view count bump never happened")
	}
}

func TestUnitGetBumpFailureIgnored(t *testing.T) {
	bumped := make(chan struct{}, 1)

	mock := &mockUnitStore{
		getUnit: func(_ context.Context, unitID string) (*models.KnowledgeUnit, error) {
			return &models.KnowledgeUnit{ID: unitID}, nil
		},
		incrementViewCount: func(_ context.Context, _ string) error {
			bumped <- struct{}{}
			return errors.New("write failed")
		},
	}

	s := NewUnitService(mock, nil, testLogger())

	if _, err := s.Get(context.Background(), "unit-1"); err != nil {
		t.Fatalf("bump failure must not surface: %v", err)
	}

	<-bumped
}

func TestUnitMerge(t *testing.T) {
	units := map[string]*models.KnowledgeUnit{
		"target": {ID: "target", Title: "Target", Content: "target body", Tags: []string{"shared"}},
		"src-1":  {ID: "src-1", Title: "Source One", Content: "source body", Tags: []string{"extra"}},
	}

	var sourceUpdates []models.UpdateUnitRequest
	var targetUpdate *models.UpdateUnitRequest

	mock := &mockUnitStore{
		getUnit: func(_ context.Context, unitID string) (*models.KnowledgeUnit, error) {
			u, ok := units[unitID]
			if !ok {
				return nil, models.ErrUnitNotFound
			}
			return u, nil
		},
		updateUnit: func(_ context.Context, unitID string, req models.UpdateUnitRequest) (*models.KnowledgeUnit, error) {
			if unitID == "target" {
				targetUpdate = &req
			} else {
				sourceUpdates = append(sourceUpdates, req)
			}
			return units[unitID], nil
		},
	}

	s := NewUnitService(mock, nil, testLogger())

	if _, err := s.Merge(context.Background(), "target", []string{"src-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sourceUpdates) != 1 {
		t.Fatalf("expected 1 source update, got %d", len(sourceUpdates))
	}

	src := sourceUpdates[0]

	if src.Status == nil || src.Status.State != models.StateMerged || !src.Status.IsDuplicate {
		t.Errorf("expected source marked merged, got %+v", src.Status)
	}

	if src.MergedInto == nil || *src.MergedInto != "target" {
		t.Errorf("expected merged_into target, got %v", src.MergedInto)
	}

	if targetUpdate == nil {
		t.Fatal("target never updated")
	}

	if !strings.Contains(*targetUpdate.Content, "source body") {
		t.Errorf("expected source content appended, got %q", *targetUpdate.Content)
	}

	if len(targetUpdate.Tags) != 2 {
		t.Errorf("expected tags unioned, got %v", targetUpdate.Tags)
	}

	found := false
	for _, a := range targetUpdate.Aliases {
		if a == "Source One" {
			found = true
		}
	}

	if !found {
		t.Errorf("expected source title in aliases, got %v", targetUpdate.Aliases)
	}
}

func TestUnitMergeSelfRejected(t *testing.T) {
	mock := &mockUnitStore{
		getUnit: func(_ context.Context, unitID string) (*models.KnowledgeUnit, error) {
			return &models.KnowledgeUnit{ID: unitID}, nil
		},
	}

	s := NewUnitService(mock, nil, testLogger())

	_, err := s.Merge(context.Background(), "unit-1", []string{"unit-1"})

	if !errors.Is(err, models.ErrSelfReference) {
		t.Errorf("expected self reference error, got %v", err)
	}
}
