package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/graphein/graphein/internal/dbpool"
	"github.com/graphein/graphein/internal/models"
	"github.com/graphein/graphein/internal/store"
)

// testEnv holds shared test infrastructure (single pool across all tests).
type testEnv struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

var sharedEnv *testEnv

func getTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if sharedEnv != nil {
		return sharedEnv
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	pool, err := dbpool.NewPool(context.Background(), dbURL)
	if err != nil {
		t.Fatalf("connecting to test DB: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	sharedEnv = &testEnv{pool: pool, log: log}

	return sharedEnv
}

// setupStores creates the three stores over the shared pool.
func setupStores(t *testing.T) (*store.UnitStore, *store.TripleStore, *store.GraphStore) {
	t.Helper()

	env := getTestEnv(t)
	base := store.Base{Pool: env.pool, Log: env.log}

	return store.NewUnitStore(base), store.NewTripleStore(base), store.NewGraphStore(base)
}

// cleanupUnits removes test units after the test; their triples go with
// them through the cascade.
func cleanupUnits(t *testing.T, ids ...string) {
	t.Helper()

	env := getTestEnv(t)

	t.Cleanup(func() {
		env.pool.Exec(context.Background(), "DELETE FROM kg_units WHERE id = ANY($1)", ids) //nolint:errcheck // best-effort cleanup
	})
}

func cleanupGraphs(t *testing.T, ids ...string) {
	t.Helper()

	env := getTestEnv(t)

	t.Cleanup(func() {
		env.pool.Exec(context.Background(), "DELETE FROM kg_graphs WHERE id = ANY($1)", ids) //nolint:errcheck // best-effort cleanup
	})
}

// mustCreateUnit inserts a unit with a unique canonical name so tests do not
// collide on shared data.
func mustCreateUnit(t *testing.T, us *store.UnitStore, title string) *models.KnowledgeUnit {
	t.Helper()

	u := models.KnowledgeUnit{Title: title, Content: "body for " + title, UnitType: "concept"}
	u.Normalize(time.Now())
	u.CanonicalName = u.CanonicalName + "_" + uuid.New().String()[:8]

	created, err := us.CreateUnit(context.Background(), u)
	if err != nil {
		t.Fatalf("CreateUnit(%q): %v", title, err)
	}

	cleanupUnits(t, created.ID)

	return created
}

func mustCreateTriple(t *testing.T, ts *store.TripleStore, subjectID, predicate, objectID string) *models.SemanticTriple {
	t.Helper()

	created, err := ts.CreateTriple(context.Background(), models.SemanticTriple{
		SubjectID: subjectID,
		Predicate: predicate,
		ObjectID:  objectID,
	})
	if err != nil {
		t.Fatalf("CreateTriple(%s %s %s): %v", subjectID, predicate, objectID, err)
	}

	return created
}

func mustCreateGraph(t *testing.T, gs *store.GraphStore, name string, unitIDs, tripleIDs []string) *models.KnowledgeGraph {
	t.Helper()

	g, err := gs.CreateGraph(context.Background(), models.KnowledgeGraph{
		Name:            name + "-" + uuid.New().String()[:8],
		OwnerID:         "store-test",
		IncludedUnits:   unitIDs,
		IncludedTriples: tripleIDs,
	})
	if err != nil {
		t.Fatalf("CreateGraph(%q): %v", name, err)
	}

	cleanupGraphs(t, g.ID)

	return g
}
