package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/diyagk01/blii-pdf-service/internal/capability"
	"github.com/diyagk01/blii-pdf-service/internal/extract"
	"github.com/diyagk01/blii-pdf-service/internal/fetch"
	"github.com/diyagk01/blii-pdf-service/internal/models"
	"github.com/diyagk01/blii-pdf-service/internal/pipeline"
	"github.com/diyagk01/blii-pdf-service/pkg/utils"
	"go.uber.org/zap"
)

// multipartMemory is how much of an upload is buffered in memory before spilling to disk.
const multipartMemory = 32 << 20

type extractRequest struct {
	PDFURL          string `json:"pdf_url"`
	FilePath        string `json:"file_path"`
	Filename        string `json:"filename"`
	GeneratePreview *bool  `json:"generate_preview"`
}

func (req *extractRequest) ref() string {
	if strings.TrimSpace(req.PDFURL) != "" {
		return req.PDFURL
	}
	return req.FilePath
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": utils.ServiceName,
		"status":  "running",
		"version": s.version,
		"endpoints": map[string]string{
			"/health":       "Health check and backend availability",
			"/capabilities": "Extraction backends usable in this process",
			"/extract":      "Extract text from a document (POST JSON with pdf_url or file_path)",
			"/upload":       "Upload and extract a document (POST multipart/form-data field \"file\")",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	caps := s.extractor.Capabilities()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":               "healthy",
		"service":              utils.ServiceName,
		"version":              s.version,
		"capabilities":         caps,
		"native_available":     caps[capability.NativeText],
		"ocr_available":        caps[capability.OCR],
		"structural_available": caps[capability.Structural],
		"preview_available":    caps[capability.Preview],
	})
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.extractor.Capabilities())
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ref := req.ref()
	if strings.TrimSpace(ref) == "" {
		s.respondError(w, http.StatusBadRequest, fetch.ErrMissingReference.Error())
		return
	}
	logger := s.logger.With(zap.String("request_id", RequestID(r.Context())))
	logger.Debug("extract request", zap.String("ref", utils.Truncate(ref, 200)), zap.String("filename", req.Filename))

	doc, err := s.resolver.Resolve(r.Context(), ref, req.Filename)
	if err != nil {
		logger.Warn("resolve failed", zap.Error(err))
		s.respondError(w, resolveStatus(err), err.Error())
		return
	}
	opts := pipeline.Options{GeneratePreview: req.GeneratePreview == nil || *req.GeneratePreview}
	s.respondEnvelope(w, s.extractor.Extract(r.Context(), doc, opts))
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.config != nil && s.config.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			s.respondError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", s.config.MaxUploadBytes))
			return
		}
		s.respondError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()
	if header.Filename == "" {
		s.respondError(w, http.StatusBadRequest, "No file selected")
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	if len(data) == 0 {
		s.respondError(w, http.StatusBadRequest, "uploaded file is empty")
		return
	}
	doc := models.NewDocument(header.Filename, data)
	if !extract.IsPDF(doc.Data) && !supported(doc.Ext()) {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("unsupported file type %q", doc.Ext()))
		return
	}

	generatePreview := true
	if v := r.FormValue("generate_preview"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "generate_preview must be a boolean")
			return
		}
		generatePreview = b
	}
	s.logger.Debug("upload request",
		zap.String("request_id", RequestID(r.Context())),
		zap.String("filename", doc.Filename),
		zap.Int("bytes", len(data)))
	s.respondEnvelope(w, s.extractor.Extract(r.Context(), doc, pipeline.Options{GeneratePreview: generatePreview}))
}

func supported(ext string) bool {
	for _, e := range extract.SupportedExtensions() {
		if e == ext {
			return true
		}
	}
	return false
}

// resolveStatus maps a resolver error to an HTTP status: a missing local file
// is 404, anything else the caller can fix is 400.
func resolveStatus(err error) int {
	if errors.Is(err, fetch.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func (s *Server) respondEnvelope(w http.ResponseWriter, env *models.Envelope) {
	status := http.StatusOK
	if !env.Success {
		status = http.StatusInternalServerError
	}
	s.respondJSON(w, status, env)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, models.NewFailureEnvelope(message))
}
