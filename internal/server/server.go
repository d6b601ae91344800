// Package server exposes the conversion engine over HTTP for a local UI.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Borbofruto/Ruki/internal/catalog"
	"github.com/Borbofruto/Ruki/internal/convert"
	"github.com/Borbofruto/Ruki/internal/detect"
	"github.com/Borbofruto/Ruki/internal/logging"
)

// Server routes API requests to an Engine.
type Server struct {
	router chi.Router
	engine *convert.Engine
	logger *slog.Logger
}

// New builds a Server. A nil logger discards.
func New(engine *convert.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{
		router: chi.NewRouter(),
		engine: engine,
		logger: logger,
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Get("/catalog/{brand}/models", s.handleModels)
		r.Post("/detect", s.handleDetect)
		r.Post("/convert", s.handleConvert)
	})
}

// BrandView is one brand as the UI sees it.
type BrandView struct {
	Name         string               `json:"name"`
	DefaultModel string               `json:"default_model"`
	Models       []string             `json:"models"`
	Conversions  []catalog.Conversion `json:"conversions"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	cat := s.engine.Catalog()
	brands := make([]BrandView, 0, len(cat.Brands()))
	for _, name := range cat.Brands() {
		b, _ := cat.Brand(name)
		brands = append(brands, BrandView{
			Name:         name,
			DefaultModel: b.DefaultModel,
			Models:       cat.ListModels(name),
			Conversions:  cat.Conversions(name),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"brands": brands})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	brand := chi.URLParam(r, "brand")
	models := s.engine.Catalog().ListModels(brand)
	if models == nil {
		writeError(s.logger, w, http.StatusNotFound, fmt.Errorf("unknown brand %q", brand))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"brand": brand, "models": models})
}

type detectRequest struct {
	Brand string `json:"brand"`
	Path  string `json:"path"`
}

// DetectResponse reports the model found in a file. DetectedModel is empty
// when nothing matched.
type DetectResponse struct {
	Path          string `json:"path"`
	Dir           string `json:"dir"`
	DetectedModel string `json:"detected_model"`
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(s.logger, w, http.StatusBadRequest, err)
		return
	}
	path := strings.TrimSpace(req.Path)
	if path == "" {
		writeError(s.logger, w, http.StatusBadRequest, errors.New("path is required"))
		return
	}
	writeJSON(w, http.StatusOK, DetectResponse{
		Path:          path,
		Dir:           filepath.Dir(path),
		DetectedModel: detect.FromFile(path, s.engine.Catalog(), req.Brand),
	})
}

// handleConvert always answers 200 with the Result; success is reported in
// the body, matching the CLI.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convert.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(s.logger, w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.OutputDir) == "" {
		req.OutputDir = filepath.Dir(req.InputPath)
	}
	writeJSON(w, http.StatusOK, s.engine.Convert(r.Context(), req))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(logger *slog.Logger, w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
