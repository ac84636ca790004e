package service

import (
	"context"
	"errors"
	"testing"

	"github.com/graphein/graphein/internal/models"
)

func TestTripleCreatePublishesEvent(t *testing.T) {
	mock := &mockTripleStore{
		createTriple: func(_ context.Context, triple models.SemanticTriple) (*models.SemanticTriple, error) {
			triple.ID = "triple-1"
			return &triple, nil
		},
	}

	sink := &mockEventSink{}
	s := NewTripleService(mock, sink, testLogger())

	created, err := s.Create(context.Background(), models.SemanticTriple{
		SubjectID: "a", Predicate: "causes", ObjectID: "b",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.ID != "triple-1" {
		t.Errorf("unexpected triple: %+v", created)
	}

	if len(sink.events) != 1 || sink.events[0] != "triple.created" {
		t.Errorf("expected triple.created event, got %v", sink.events)
	}
}

func TestTripleCreateErrorPassesThrough(t *testing.T) {
	dup := &models.DuplicateError{Entity: "triple", ExistingID: "existing-1"}

	mock := &mockTripleStore{
		createTriple: func(_ context.Context, _ models.SemanticTriple) (*models.SemanticTriple, error) {
			return nil, dup
		},
	}

	sink := &mockEventSink{}
	s := NewTripleService(mock, sink, testLogger())

	_, err := s.Create(context.Background(), models.SemanticTriple{
		SubjectID: "a", Predicate: "causes", ObjectID: "b",
	})

	var gotDup *models.DuplicateError
	if !errors.As(err, &gotDup) || gotDup.ExistingID != "existing-1" {
		t.Errorf("expected duplicate error with existing id, got %v", err)
	}

	if !errors.Is(err, models.ErrDuplicateKey) {
		t.Errorf("duplicate error must match ErrDuplicateKey")
	}

	if len(sink.events) != 0 {
		t.Errorf("no event expected on failure, got %v", sink.events)
	}
}

func TestTripleDeleteEvent(t *testing.T) {
	mock := &mockTripleStore{
		deleteTriple: func(_ context.Context, tripleID string) error {
			if tripleID != "triple-1" {
				t.Errorf("unexpected triple id %q", tripleID)
			}
			return nil
		},
	}

	sink := &mockEventSink{}
	s := NewTripleService(mock, sink, testLogger())

	if err := s.Delete(context.Background(), "triple-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sink.events) != 1 || sink.events[0] != "triple.deleted" {
		t.Errorf("expected triple.deleted event, got %v", sink.events)
	}
}

func TestFindPathPassesDepth(t *testing.T) {
	mock := &mockTripleStore{
		findPath: func(_ context.Context, startID, endID string, maxDepth int) ([]models.PathStep, error) {
			if startID != "a" || endID != "b" || maxDepth != 4 {
				t.Errorf("unexpected arguments: %s %s %d", startID, endID, maxDepth)
			}
			return []models.PathStep{{TripleID: "t1", Direction: models.DirectionOutgoing}}, nil
		},
	}

	s := NewTripleService(mock, nil, testLogger())

	path, err := s.FindPath(context.Background(), "a", "b", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(path) != 1 || path[0].TripleID != "t1" {
		t.Errorf("unexpected path: %+v", path)
	}
}

func TestGraphAddUnitsNoEventWhenNothingAdded(t *testing.T) {
	mock := &mockGraphStore{
		addUnits: func(_ context.Context, graphID string, _ []string) (*models.KnowledgeGraph, int, error) {
			return &models.KnowledgeGraph{ID: graphID}, 0, nil
		},
	}

	sink := &mockEventSink{}
	s := NewGraphService(mock, sink, testLogger())

	_, added, err := s.AddUnits(context.Background(), "g1", []string{"u1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if added != 0 {
		t.Errorf("expected 0 added, got %d", added)
	}

	if len(sink.events) != 0 {
		t.Errorf("idempotent add must not publish, got %v", sink.events)
	}
}
