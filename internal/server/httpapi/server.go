// Package httpapi is the HTTP boundary. It extracts the caller identity
// from bearer tokens, dispatches to the services, and translates the error
// taxonomy into transport status codes. No business rule lives here.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"filevault/internal/logging"
	"filevault/internal/server/services"
)

// Server wires the gin router to the service layer.
type Server struct {
	address   string
	files     *services.FileService
	sharing   *services.SharingService
	listings  *services.ListingService
	logger    logging.Logger
	jwtSecret []byte
	cors      string
}

// NewServer constructs the HTTP server.
func NewServer(address string, logger logging.Logger, fs *services.FileService,
	ss *services.SharingService, ls *services.ListingService, secretKey string, corsOrigin string) *Server {
	return &Server{
		address:   address,
		files:     fs,
		sharing:   ss,
		listings:  ls,
		logger:    logger.With("module", "http_server"),
		jwtSecret: []byte(secretKey),
		cors:      corsOrigin,
	}
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{s.cors},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "OK"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api", s.authMiddleware())
	{
		api.GET("/files/my", s.showMyFiles)
		api.GET("/files/shared-with-me", s.showSharedWithMe)
		api.GET("/files/all", s.showAllFiles)
		api.POST("/files", s.uploadFile)
		api.GET("/files/:id/download", s.downloadFile)
		api.GET("/files/:id/edit-info", s.fileEditInfo)
		api.GET("/files/:id/access/:permission", s.accessList)
		api.PUT("/files/:id", s.editFile)
		api.DELETE("/files/:id", s.deleteFile)

		api.GET("/share-requests", s.showShareRequests)
		api.POST("/share-requests", s.requestShare)
		api.POST("/share-requests/:id/approve", s.approveRequest)

		api.POST("/shares", s.shareWithDepartment)
		api.PATCH("/shares/:id", s.updateAccess)
		api.DELETE("/shares/:id", s.revokeAccess)

		api.GET("/departments", s.listDepartments)
		api.GET("/users", s.listUsers)
	}

	return r
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
