// Package server exposes the plane pipelines over HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vearutop/exrplanes"
)

// ContentTypeEXR is used for OpenEXR request and response bodies.
const ContentTypeEXR = "image/x-exr"

// Config configures Server.
type Config struct {
	Version string
	// Toggle selects the compression of encoded files, consulted per request.
	Toggle exrplanes.ToggleFunc
	Logger *slog.Logger
	// MaxBodyBytes limits request bodies, 256 MiB if zero.
	MaxBodyBytes int64
	// Timeout bounds request handling, 60s if zero.
	Timeout time.Duration
	// MaxPixels bounds decoded images, 64 Mpx if zero.
	MaxPixels int
}

// Server serves health, info, decode and encode endpoints.
type Server struct {
	cfg       Config
	startTime time.Time
}

// NewServer creates a new server instance.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Toggle == nil {
		cfg.Toggle = exrplanes.EnvToggle
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 256 << 20
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxPixels <= 0 {
		cfg.MaxPixels = 1 << 26
	}
	return &Server{cfg: cfg, startTime: time.Now()}
}

// Router returns the HTTP handler with middleware and routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Timeout))

	r.Get("/health", s.health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/info", s.info)
		r.Post("/decode", s.decode)
		r.Post("/encode", s.encode)
	})

	return r
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Uptime  int    `json:"uptime"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: s.cfg.Version,
		Uptime:  int(time.Since(s.startTime).Seconds()),
	})
}

func (s *Server) info(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	info, err := exrplanes.Inspect(bytes.NewReader(body))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, info)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	img, err := exrplanes.Decode(bytes.NewReader(body), func(o *exrplanes.ReadOptions) {
		o.Logger = s.cfg.Logger
		o.MaxPixels = s.cfg.MaxPixels
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, img)
}

func (s *Server) encode(w http.ResponseWriter, r *http.Request) {
	var img exrplanes.Image
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err := dec.Decode(&img); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeErrorCode(w, r, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", err.Error())
			return
		}
		s.writeErrorCode(w, r, http.StatusBadRequest, "INVALID_JSON", "invalid JSON in request body")
		return
	}

	// Encoding needs a seekable sink for the offset table.
	f, err := os.CreateTemp("", "exrplanes-*.exr")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	}()

	err = exrplanes.Encode(f, &img, func(o *exrplanes.WriteOptions) {
		o.Toggle = s.cfg.Toggle
		o.Logger = s.cfg.Logger
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", ContentTypeEXR)
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		s.cfg.Logger.Error("write response", "error", err)
	}
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeErrorCode(w, r, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", err.Error())
		} else {
			s.writeErrorCode(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		}
		return nil, false
	}
	if len(body) == 0 {
		s.writeErrorCode(w, r, http.StatusBadRequest, "INVALID_BODY", "empty request body")
		return nil, false
	}
	return body, true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		decErr *exrplanes.DecodeError
		encErr *exrplanes.EncodeError
	)
	switch {
	case errors.Is(err, exrplanes.ErrDimensionMismatch):
		s.writeErrorCode(w, r, http.StatusUnprocessableEntity, "DIMENSION_MISMATCH", err.Error())
	case errors.Is(err, exrplanes.ErrMissingRequiredChannel):
		s.writeErrorCode(w, r, http.StatusUnprocessableEntity, "MISSING_CHANNEL", err.Error())
	case errors.Is(err, exrplanes.ErrImageTooLarge):
		s.writeErrorCode(w, r, http.StatusRequestEntityTooLarge, "IMAGE_TOO_LARGE", err.Error())
	case errors.Is(err, exrplanes.ErrInvalidGeometry):
		s.writeErrorCode(w, r, http.StatusUnprocessableEntity, "INVALID_GEOMETRY", err.Error())
	case errors.As(err, &decErr):
		s.writeErrorCode(w, r, http.StatusBadRequest, "DECODE_ERROR", err.Error())
	case errors.As(err, &encErr):
		s.cfg.Logger.Error("encode", "error", err)
		s.writeErrorCode(w, r, http.StatusInternalServerError, "ENCODE_ERROR", err.Error())
	default:
		s.cfg.Logger.Error("request failed", "error", err)
		s.writeErrorCode(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func (s *Server) writeErrorCode(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	s.writeJSON(w, r, status, ErrorResponse{
		Error:     code,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.cfg.Logger.Error("encode response", "path", r.URL.Path, "error", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorResponse{
			Error:     "RESPONSE_ENCODING",
			Message:   fmt.Sprintf("encode response: %v", err),
			RequestID: middleware.GetReqID(r.Context()),
		})
	}
	body = append(body, '\n')

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		s.cfg.Logger.Error("write response", "path", r.URL.Path, "error", err)
	}
}
