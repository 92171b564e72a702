package api

import (
	"log/slog"

	"github.com/kwiktwik/video-editor/internal/auth"
	"github.com/kwiktwik/video-editor/internal/storage"
	"github.com/kwiktwik/video-editor/internal/store"

	"github.com/gin-gonic/gin"
)

type Server struct {
	auth  *auth.Service
	store *store.JobStore
	files *storage.Local
	log   *slog.Logger
}

func NewServer(authSvc *auth.Service, st *store.JobStore, files *storage.Local, logger *slog.Logger) *Server {
	return &Server{
		auth:  authSvc,
		store: st,
		files: files,
		log:   logger,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	r.Use(RequestLogMiddleware(s.log))

	v1 := r.Group("/api/v1")
	v1.GET("/healthz", func(c *gin.Context) {
		writeData(c, 200, gin.H{"status": "ok"})
	})

	v1.POST("/auth/login", s.login)

	authed := v1.Group("")
	authed.Use(AuthMiddleware(s.auth))
	{
		authed.POST("/export", s.startExport)
		authed.GET("/jobs", s.listJobs)
		authed.GET("/jobs/stats", s.jobStats)
		authed.GET("/jobs/:job_id", s.getJob)
		authed.POST("/jobs/:job_id/cancel", s.cancelJob)
		authed.GET("/download/:filename", s.downloadExport)
	}

	return r
}
