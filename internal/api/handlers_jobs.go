package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/kwiktwik/video-editor/internal/model"
	"github.com/kwiktwik/video-editor/internal/store"

	"github.com/gin-gonic/gin"
)

// jobStatusResponse is the job view returned to API consumers; the retained
// request stays internal.
type jobStatusResponse struct {
	ID        string   `json:"id"`
	Status    string   `json:"status"`
	Progress  float64  `json:"progress"`
	Logs      []string `json:"logs"`
	OutputURL string   `json:"output_url,omitempty"`
}

func jobView(j model.Job) jobStatusResponse {
	return jobStatusResponse{
		ID:        j.ID,
		Status:    string(j.Status),
		Progress:  j.Progress,
		Logs:      j.Logs,
		OutputURL: j.OutputURL,
	}
}

func (s *Server) startExport(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	var req model.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid export payload", false, nil)
		return
	}
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), false, nil)
		return
	}
	job := s.store.Create(req)
	writeData(c, http.StatusCreated, gin.H{"job_id": job.ID})
}

func (s *Server) getJob(c *gin.Context) {
	job, err := s.store.Get(c.Param("job_id"))
	if err != nil {
		writeError(c, http.StatusNotFound, "JOB_NOT_FOUND", "Job not found", false, nil)
		return
	}
	writeData(c, http.StatusOK, jobView(job))
}

func (s *Server) listJobs(c *gin.Context) {
	jobs := s.store.ListAll()
	out := make([]jobStatusResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, jobView(j))
	}
	writeData(c, http.StatusOK, out)
}

func (s *Server) jobStats(c *gin.Context) {
	writeData(c, http.StatusOK, s.store.Stats())
}

func (s *Server) cancelJob(c *gin.Context) {
	err := s.store.Cancel(c.Param("job_id"))
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(c, http.StatusNotFound, "JOB_NOT_FOUND", "Job not found", false, nil)
	case errors.Is(err, store.ErrNotPending):
		writeError(c, http.StatusBadRequest, "NOT_PENDING", "Can only cancel pending jobs", false, nil)
	case err != nil:
		writeError(c, http.StatusInternalServerError, "CANCEL_FAILED", "Failed to cancel job", false, nil)
	default:
		writeData(c, http.StatusOK, gin.H{"message": "Job cancelled"})
	}
}

func (s *Server) downloadExport(c *gin.Context) {
	name := c.Param("filename")
	if name == "" || name != filepath.Base(name) {
		writeError(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename", false, nil)
		return
	}
	path := s.files.ExportPath(name)
	if _, err := os.Stat(path); err != nil {
		writeError(c, http.StatusNotFound, "FILE_NOT_FOUND", "File not found", false, nil)
		return
	}
	c.FileAttachment(path, name)
}
