package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/manzanit0/whereabouts/pkg/claude"
	"github.com/manzanit0/whereabouts/pkg/env"
	"github.com/manzanit0/whereabouts/pkg/exif"
	"github.com/manzanit0/whereabouts/pkg/geocode"
	"github.com/manzanit0/whereabouts/pkg/locate"
	"github.com/manzanit0/whereabouts/pkg/logger"
	"github.com/manzanit0/whereabouts/pkg/middleware"
	"github.com/manzanit0/whereabouts/pkg/whttp"
)

const ServiceName = "whereabouts"

func init() {
	logger.InitGlobalSlog(ServiceName)
}

var allowedExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

func main() {
	cfg := env.ClaudeConfig()
	if !cfg.Configured() {
		slog.Warn("Claude API key not configured; uploads will be answered with a configuration error")
	}

	maxUploadBytes, err := env.MaxUploadBytes()
	if err != nil {
		panic(err)
	}

	claudeClient := claude.NewClient(whttp.NewLoggingClient(), cfg)
	geocoder := geocode.NewOpenstreetmapClient()

	r := gin.New()
	r.Use(middleware.TraceID())
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	r.POST("/analyze", analyzeController(claudeClient, geocoder, maxUploadBytes))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var port string
	if port = os.Getenv("PORT"); port == "" {
		port = "8080"
	}

	srv := &http.Server{Addr: fmt.Sprintf(":%s", port), Handler: r}
	go func() {
		slog.Info(fmt.Sprintf("serving HTTP on :%s", port))

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server shutdown abruptly", "error", err.Error())
		} else {
			slog.Info("server shutdown gracefully")
		}

		stop()
	}()

	<-ctx.Done()
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err.Error())
	}

	slog.Info("server exited")
}

type analyzeResponse struct {
	Success  bool           `json:"success"`
	Metadata photoMetadata  `json:"metadata"`
	Location *locate.Result `json:"location"`
}

type photoMetadata struct {
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	CameraMake  string   `json:"cameraMake,omitempty"`
	CameraModel string   `json:"cameraModel,omitempty"`
	DateTaken   string   `json:"dateTaken,omitempty"`
}

func analyzeController(claudeClient claude.Client, geocoder geocode.Client, maxUploadBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("photo")
		if err != nil || file.Size == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no photo uploaded"})
			return
		}

		if file.Size > maxUploadBytes {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("file is too large. Maximum: %dMB", maxUploadBytes/1024/1024),
			})
			return
		}

		if !allowedExtension(file.Filename) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("file type not supported. Allowed: %s", strings.Join(allowedExtensions, ", ")),
			})
			return
		}

		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to process photo: %s", err.Error())})
			return
		}

		defer f.Close()

		image, err := io.ReadAll(f)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to process photo: %s", err.Error())})
			return
		}

		ctx := c.Request.Context()

		meta := exif.Extract(image)
		result := claudeClient.AnalyzeLocation(ctx, image, meta)
		result = locate.Reconcile(meta, result)
		enrichLocation(ctx, geocoder, result)

		c.JSON(http.StatusOK, analyzeResponse{
			Success: true,
			Metadata: photoMetadata{
				Latitude:    meta.Latitude,
				Longitude:   meta.Longitude,
				CameraMake:  meta.CameraMake,
				CameraModel: meta.CameraModel,
				DateTaken:   formatDateTaken(meta),
			},
			Location: result,
		})
	}
}

func allowedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range allowedExtensions {
		if ext == allowed {
			return true
		}
	}

	return false
}

// enrichLocation fills in missing place names by reverse geocoding the
// estimate's coordinates. Best-effort: a geocoding hiccup never degrades the
// answer we already have.
func enrichLocation(ctx context.Context, geocoder geocode.Client, r *locate.Result) {
	if r.Latitude == nil || r.Longitude == nil {
		return
	}

	if r.City != "" && r.Country != "" {
		return
	}

	loc, err := geocoder.ReverseGeocode(*r.Latitude, *r.Longitude)
	if err != nil {
		slog.WarnContext(ctx, "failed to reverse geocode estimate", "error", err.Error())
		return
	}

	if r.City == "" {
		r.City = loc.City
	}

	if r.Country == "" {
		r.Country = loc.Country
	}

	if r.LocationName == "" {
		r.LocationName = loc.Name
	}
}

func formatDateTaken(meta *exif.Metadata) string {
	if meta.DateTaken.IsZero() {
		return ""
	}

	return meta.DateTaken.Format("2006-01-02 15:04:05")
}
