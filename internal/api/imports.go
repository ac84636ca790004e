package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/graphein/graphein/internal/importer"
	"github.com/graphein/graphein/internal/metrics"
	"github.com/graphein/graphein/internal/models"
)

// ImportHandler serves document import endpoints.
type ImportHandler struct {
	svc          ImportService
	log          *logrus.Logger
	maxSize      int64
	defaultPairs int
}

// NewImportHandler creates an ImportHandler with the given service, logger,
// maximum accepted upload size in bytes, and the default relation pair budget
// applied when an upload does not set its own.
func NewImportHandler(svc ImportService, log *logrus.Logger, maxSize int64, defaultPairs int) *ImportHandler {
	return &ImportHandler{svc: svc, log: log, maxSize: maxSize, defaultPairs: defaultPairs}
}

// Upload handles POST /api/v1/imports. The document is sent as a multipart
// form with the file under "file"; import options ride along as form values.
func (h *ImportHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "file is required")

		return
	}

	if header.Size > h.maxSize {
		respondError(c, http.StatusRequestEntityTooLarge, ErrCodeValidationError,
			"file exceeds maximum size of "+strconv.FormatInt(h.maxSize, 10)+" bytes")

		return
	}

	ownerID := strings.TrimSpace(c.PostForm("owner_id"))
	if ownerID == "" {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "owner_id is required")

		return
	}

	file, err := header.Open()
	if err != nil {
		h.log.WithError(err).Error("opening uploaded file")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}
	defer file.Close() //nolint:errcheck

	content, err := io.ReadAll(io.LimitReader(file, h.maxSize+1))
	if err != nil {
		h.log.WithError(err).Error("reading uploaded file")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}
	if int64(len(content)) > h.maxSize {
		respondError(c, http.StatusRequestEntityTooLarge, ErrCodeValidationError, "file exceeds maximum size")

		return
	}

	opts := models.ImportOptions{
		SkipEnhancement: c.PostForm("skip_enhancement") == "true",
		SkipRelations:   c.PostForm("skip_relations") == "true",
	}
	if v, convErr := strconv.Atoi(c.PostForm("max_pairs")); convErr == nil && v > 0 {
		opts.MaxPairs = v
	}
	if opts.MaxPairs == 0 {
		opts.MaxPairs = h.defaultPairs
	}

	job, err := h.svc.StartImport(header.Filename, content, ownerID, opts)
	if err != nil {
		var dup *models.DuplicateError
		if errors.As(err, &dup) {
			c.JSON(http.StatusConflict, gin.H{
				"error":       ErrCodeConflict,
				"message":     "identical file already imported",
				"existing_id": dup.ExistingID,
			})

			return
		}

		if errors.Is(err, importer.ErrUnsupportedFormat) {
			respondError(c, http.StatusUnsupportedMediaType, ErrCodeValidationError, err.Error())

			return
		}

		h.log.WithError(err).Error("starting import")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	metrics.ImportsTotal.WithLabelValues("started").Inc()
	h.log.WithFields(logrus.Fields{
		"action": "import.start", "import_id": job.ID, "file": job.FileName, "owner_id": ownerID,
	}).Info("audit")

	c.JSON(http.StatusAccepted, job)
}

// Get handles GET /api/v1/imports/:id.
func (h *ImportHandler) Get(c *gin.Context) {
	jobID := c.Param("id")
	if err := validatePathID(jobID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	job, err := h.svc.GetJob(jobID)
	if err != nil {
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "import not found")

		return
	}

	c.JSON(http.StatusOK, job)
}

// List handles GET /api/v1/imports.
func (h *ImportHandler) List(c *gin.Context) {
	jobs := h.svc.ListJobs(c.Query("owner_id"))

	c.JSON(http.StatusOK, gin.H{"imports": jobs, "count": len(jobs)})
}

// Cancel handles POST /api/v1/imports/:id/cancel. Cancellation is advisory:
// the pipeline stops at its next checkpoint, and steps already persisted stay.
func (h *ImportHandler) Cancel(c *gin.Context) {
	jobID := c.Param("id")
	if err := validatePathID(jobID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	job, err := h.svc.Cancel(jobID)
	if err != nil {
		if errors.Is(err, models.ErrImportNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "import not found")

			return
		}

		h.log.WithError(err).Error("cancelling import")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	h.log.WithFields(logrus.Fields{"action": "import.cancel", "import_id": jobID, "status": job.Status}).Info("audit")

	c.JSON(http.StatusOK, job)
}

// Delete handles DELETE /api/v1/imports/:id.
func (h *ImportHandler) Delete(c *gin.Context) {
	jobID := c.Param("id")
	if err := validatePathID(jobID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	if err := h.svc.DeleteJob(jobID); err != nil {
		if errors.Is(err, models.ErrImportNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "import not found")

			return
		}

		respondError(c, http.StatusConflict, ErrCodeConflict, err.Error())

		return
	}

	h.log.WithFields(logrus.Fields{"action": "import.delete", "import_id": jobID}).Info("audit")

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
