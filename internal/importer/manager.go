package importer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/graphein/graphein/internal/extract"
	"github.com/graphein/graphein/internal/models"
	"github.com/graphein/graphein/internal/store"
)

// UnitWriter persists extracted unit drafts.
type UnitWriter interface {
	BulkInsertUnits(ctx context.Context, units []models.KnowledgeUnit) ([]models.KnowledgeUnit, []store.BulkSkip, error)
}

// TripleWriter persists extracted relations.
type TripleWriter interface {
	BulkInsertTriples(ctx context.Context, triples []models.SemanticTriple) ([]models.SemanticTriple, []store.BulkSkip, error)
}

// GraphWriter creates the per-import graph and fills its membership.
type GraphWriter interface {
	CreateGraph(ctx context.Context, graph models.KnowledgeGraph) (*models.KnowledgeGraph, error)
	AddUnits(ctx context.Context, graphID string, unitIDs []string) (*models.KnowledgeGraph, int, error)
	AddTriples(ctx context.Context, graphID string, tripleIDs []string) (*models.KnowledgeGraph, int, error)
}

// UnitSource extracts and refines unit drafts from text.
type UnitSource interface {
	ExtractFromText(ctx context.Context, text string, source models.Source) ([]models.KnowledgeUnit, error)
	Enhance(ctx context.Context, units []models.KnowledgeUnit) []models.KnowledgeUnit
}

// RelationSource extracts relations between persisted units.
type RelationSource interface {
	ExtractRelations(ctx context.Context, units []models.KnowledgeUnit, maxPairs int) ([]models.SemanticTriple, error)
}

// Notifier receives import progress events.
type Notifier interface {
	ImportProgress(job models.ImportJob)
}

// Pipeline progress checkpoints, in order.
const (
	progressParsed          = 5
	progressUnitsExtracted  = 20
	progressEnhanced        = 40
	progressUnitsStored     = 60
	progressRelationsFound  = 75
	progressRelationsStored = 85
	progressGraphCreated    = 95
	progressDone            = 100
)

// Manager owns the import job registry and runs the pipeline. Jobs are held
// in memory only; a restart forgets them.
type Manager struct {
	units     UnitWriter
	triples   TripleWriter
	graphs    GraphWriter
	extractor UnitSource
	relations RelationSource
	notifier  Notifier
	log       *logrus.Logger

	mu        sync.RWMutex
	jobs      map[string]*models.ImportJob
	hashes    map[string]string // ownerID+"/"+hash -> job id
	cancels   map[string]context.CancelFunc
	importers map[string]Importer
}

// NewManager wires an import manager. notifier may be nil.
func NewManager(units UnitWriter, triples TripleWriter, graphs GraphWriter,
	extractor UnitSource, relations RelationSource, notifier Notifier, log *logrus.Logger) *Manager {
	m := &Manager{
		units:     units,
		triples:   triples,
		graphs:    graphs,
		extractor: extractor,
		relations: relations,
		notifier:  notifier,
		log:       log,
		jobs:      make(map[string]*models.ImportJob),
		hashes:    make(map[string]string),
		cancels:   make(map[string]context.CancelFunc),
		importers: make(map[string]Importer),
	}

	m.Register(NewTxtImporter())
	m.Register(NewMarkdownImporter())

	return m
}

// Register adds an importer for its claimed extensions.
func (m *Manager) Register(imp Importer) {
	for _, ext := range imp.Extensions() {
		m.importers[strings.ToLower(ext)] = imp
	}
}

// StartImport registers a job for the upload and starts the pipeline in the
// background. Re-uploading identical content for the same owner returns the
// earlier job wrapped in a duplicate error.
func (m *Manager) StartImport(fileName string, content []byte, ownerID string, opts models.ImportOptions) (*models.ImportJob, error) {
	ext := fileType(fileName)

	imp, ok := m.importers[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	hash := FileHash(content)
	hashKey := ownerID + "/" + hash

	m.mu.Lock()

	if existingID, dup := m.hashes[hashKey]; dup {
		existing := *m.jobs[existingID]
		m.mu.Unlock()

		return &existing, &models.DuplicateError{Entity: "import", ExistingID: existingID}
	}

	now := time.Now()
	job := &models.ImportJob{
		ID:        uuid.New().String(),
		FileName:  fileName,
		FileType:  ext,
		FileSize:  len(content),
		FileHash:  hash,
		OwnerID:   ownerID,
		Status:    models.ImportPending,
		Options:   opts,
		CreatedAt: now,
		UpdatedAt: now,
	}

	ctx, cancel := context.WithCancel(context.Background())

	m.jobs[job.ID] = job
	m.hashes[hashKey] = job.ID
	m.cancels[job.ID] = cancel
	snapshot := *job

	m.mu.Unlock()

	go m.run(ctx, job.ID, imp, fileName, content, ownerID, opts)

	return &snapshot, nil
}

// run executes the pipeline for one job. Every failure path ends in a
// terminal failed status on the job record.
func (m *Manager) run(ctx context.Context, jobID string, imp Importer, fileName string, content []byte, ownerID string, opts models.ImportOptions) {
	defer m.clearCancel(jobID)

	m.setStatus(jobID, models.ImportProcessing, 0)

	doc, err := imp.Parse(fileName, content)
	if err != nil {
		m.fail(jobID, fmt.Errorf("parsing document: %w", err))
		return
	}

	m.setStatus(jobID, models.ImportProcessing, progressParsed)

	drafts, err := m.extractUnits(ctx, jobID, doc)
	if err != nil {
		m.fail(jobID, err)
		return
	}

	m.setStatus(jobID, models.ImportProcessing, progressUnitsExtracted)

	if !opts.SkipEnhancement {
		drafts = m.extractor.Enhance(ctx, drafts)
	}

	if err := ctx.Err(); err != nil {
		m.fail(jobID, err)
		return
	}

	m.setStatus(jobID, models.ImportProcessing, progressEnhanced)

	for i := range drafts {
		if drafts[i].ID == "" {
			drafts[i].ID = uuid.New().String()
		}
	}

	created, skipped, err := m.units.BulkInsertUnits(ctx, drafts)
	if err != nil {
		m.fail(jobID, fmt.Errorf("storing units: %w", err))
		return
	}

	units := remapSkipped(drafts, created, skipped)

	m.updateJob(jobID, func(job *models.ImportJob) {
		job.UnitCount = len(created)
		job.Progress = progressUnitsStored
	})

	var storedTriples []models.SemanticTriple

	if !opts.SkipRelations && len(units) > 1 {
		found, err := m.relations.ExtractRelations(ctx, units, opts.MaxPairs)
		if err != nil {
			m.fail(jobID, fmt.Errorf("extracting relations: %w", err))
			return
		}

		m.setStatus(jobID, models.ImportProcessing, progressRelationsFound)

		storedTriples, _, err = m.triples.BulkInsertTriples(ctx, found)
		if err != nil {
			m.fail(jobID, fmt.Errorf("storing relations: %w", err))
			return
		}
	}

	m.updateJob(jobID, func(job *models.ImportJob) {
		job.RelationCount = len(storedTriples)
		job.Progress = progressRelationsStored
	})

	graphID, err := m.buildGraph(ctx, doc, ownerID, jobID, units, storedTriples)
	if err != nil {
		m.fail(jobID, fmt.Errorf("building graph: %w", err))
		return
	}

	m.updateJob(jobID, func(job *models.ImportJob) {
		job.GraphID = graphID
		job.Progress = progressGraphCreated
	})

	m.updateJob(jobID, func(job *models.ImportJob) {
		now := time.Now()
		job.Status = models.ImportCompleted
		job.Progress = progressDone
		job.ProcessingEnd = &now
	})

	m.log.WithFields(logrus.Fields{
		"import_id": jobID,
		"file":      fileName,
		"units":     len(created),
		"relations": len(storedTriples),
	}).Info("import completed")
}

// extractUnits runs unit extraction per section and deduplicates across the
// whole document.
func (m *Manager) extractUnits(ctx context.Context, jobID string, doc *Document) ([]models.KnowledgeUnit, error) {
	all := make([]models.KnowledgeUnit, 0, len(doc.Sections)*4)

	for _, sec := range doc.Sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text := sec.Content
		if sec.Title != "" {
			text = sec.Title + "\n\n" + text
		}

		units, err := m.extractor.ExtractFromText(ctx, text, models.Source{
			FileName: doc.Title,
			ImportID: jobID,
			Position: sec.Position,
			Section:  sec.Title,
		})
		if err != nil {
			return nil, fmt.Errorf("extracting units from section %d: %w", sec.Position, err)
		}

		for i := range units {
			units[i].Tags = mergeTags(units[i].Tags, sec.Tags, doc.Tags)

			if units[i].Knowledge.Importance == 3 && sec.Importance != 0 {
				units[i].Knowledge.Importance = sec.Importance
			}
		}

		all = append(all, units...)
	}

	return extract.Deduplicate(all, nil), nil
}

// buildGraph creates the per-import graph and fills its membership.
func (m *Manager) buildGraph(ctx context.Context, doc *Document, ownerID, jobID string, units []models.KnowledgeUnit, triples []models.SemanticTriple) (string, error) {
	if len(units) == 0 {
		return "", nil
	}

	graph, err := m.graphs.CreateGraph(ctx, models.KnowledgeGraph{
		Name:        fmt.Sprintf("Import: %s", doc.Title),
		Description: fmt.Sprintf("Knowledge graph built from %s", doc.Title),
		OwnerID:     ownerID,
		Metadata:    map[string]any{"import_id": jobID},
	})
	if err != nil {
		return "", err
	}

	unitIDs := make([]string, 0, len(units))
	for _, u := range units {
		unitIDs = append(unitIDs, u.ID)
	}

	if _, _, err := m.graphs.AddUnits(ctx, graph.ID, unitIDs); err != nil {
		return "", err
	}

	if len(triples) > 0 {
		tripleIDs := make([]string, 0, len(triples))
		for _, t := range triples {
			tripleIDs = append(tripleIDs, t.ID)
		}

		if _, _, err := m.graphs.AddTriples(ctx, graph.ID, tripleIDs); err != nil {
			return "", err
		}
	}

	return graph.ID, nil
}

// GetJob returns a snapshot of one job.
func (m *Manager) GetJob(jobID string) (*models.ImportJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return nil, models.ErrImportNotFound
	}

	snapshot := *job

	return &snapshot, nil
}

// ListJobs returns the owner's jobs, newest first. An empty ownerID lists
// every job.
func (m *Manager) ListJobs(ownerID string) []models.ImportJob {
	m.mu.RLock()
	defer m.mu.RUnlock()

	jobs := make([]models.ImportJob, 0, len(m.jobs))

	for _, job := range m.jobs {
		if ownerID != "" && job.OwnerID != ownerID {
			continue
		}

		jobs = append(jobs, *job)
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})

	return jobs
}

// Cancel requests cancellation of a running job. Cancellation is advisory;
// the pipeline stops at its next checkpoint, and work already persisted
// stays persisted.
func (m *Manager) Cancel(jobID string) (*models.ImportJob, error) {
	m.mu.Lock()

	job, ok := m.jobs[jobID]
	if !ok {
		m.mu.Unlock()
		return nil, models.ErrImportNotFound
	}

	if job.Terminal() {
		snapshot := *job
		m.mu.Unlock()

		return &snapshot, nil
	}

	job.Status = models.ImportCancelled
	job.UpdatedAt = time.Now()

	cancel := m.cancels[jobID]
	snapshot := *job

	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	m.notify(snapshot)

	return &snapshot, nil
}

// DeleteJob removes a terminal job from the registry, freeing its hash for
// re-import.
func (m *Manager) DeleteJob(jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return models.ErrImportNotFound
	}

	if !job.Terminal() {
		return fmt.Errorf("import %s is still running", jobID)
	}

	delete(m.jobs, jobID)
	delete(m.hashes, job.OwnerID+"/"+job.FileHash)
	delete(m.cancels, jobID)

	return nil
}

// setStatus updates a job's status and progress.
func (m *Manager) setStatus(jobID, status string, progress int) {
	m.updateJob(jobID, func(job *models.ImportJob) {
		job.Status = status
		job.Progress = progress
	})
}

// fail marks a job failed. A job already cancelled keeps its status.
func (m *Manager) fail(jobID string, err error) {
	m.updateJob(jobID, func(job *models.ImportJob) {
		now := time.Now()
		job.ProcessingEnd = &now
		job.Status = models.ImportFailed
		job.Error = err.Error()
	})

	m.log.WithFields(logrus.Fields{
		"import_id": jobID,
		"error":     err.Error(),
	}).Error("import failed")
}

// updateJob mutates a job under the lock and notifies listeners. A job that
// reached a terminal state no longer changes; the pipeline goroutine may
// still be winding down after a cancel.
func (m *Manager) updateJob(jobID string, mutate func(job *models.ImportJob)) {
	m.mu.Lock()

	job, ok := m.jobs[jobID]
	if !ok || job.Terminal() {
		m.mu.Unlock()
		return
	}

	mutate(job)
	job.UpdatedAt = time.Now()
	snapshot := *job

	m.mu.Unlock()

	m.notify(snapshot)
}

func (m *Manager) notify(job models.ImportJob) {
	if m.notifier != nil {
		m.notifier.ImportProgress(job)
	}
}

func (m *Manager) clearCancel(jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.cancels, jobID)
}

// remapSkipped builds the final unit list after persistence: created units
// keep their rows; drafts skipped as duplicates are swapped to the stored
// unit's identity so relations point at real rows.
func remapSkipped(drafts, created []models.KnowledgeUnit, skipped []store.BulkSkip) []models.KnowledgeUnit {
	units := make([]models.KnowledgeUnit, 0, len(drafts))
	units = append(units, created...)

	for _, skip := range skipped {
		if skip.ExistingID == "" || skip.Index >= len(drafts) {
			continue
		}

		u := drafts[skip.Index]
		u.ID = skip.ExistingID
		units = append(units, u)
	}

	return units
}

// mergeTags unions tag lists, lower-cased.
func mergeTags(lists ...[]string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, 8)

	for _, list := range lists {
		for _, tag := range list {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" || seen[tag] {
				continue
			}

			seen[tag] = true
			out = append(out, tag)
		}
	}

	return out
}
