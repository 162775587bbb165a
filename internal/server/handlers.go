package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/goliatone/go-memora/pkg/albums"
	"github.com/goliatone/go-memora/pkg/formdata"
	"github.com/goliatone/go-memora/pkg/wizard"
)

func (s *Server) routes() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /api/flows", s.handleStart)
	api.HandleFunc("GET /api/flows/{id}", s.withFlow(s.handleGet))
	api.HandleFunc("DELETE /api/flows/{id}", s.handleAbandon)
	api.HandleFunc("PATCH /api/flows/{id}/fields", s.withFlow(s.handlePatch))
	api.HandleFunc("POST /api/flows/{id}/files", s.withFlow(s.handleAddFiles))
	api.HandleFunc("DELETE /api/flows/{id}/files/{fileId}", s.withFlow(s.handleRemoveFile))
	api.HandleFunc("POST /api/flows/{id}/advance", s.withFlow(s.handleAdvance))
	api.HandleFunc("POST /api/flows/{id}/retreat", s.withFlow(s.handleRetreat))
	api.HandleFunc("POST /api/flows/{id}/jump", s.withFlow(s.handleJump))
	api.HandleFunc("GET /api/flows/{id}/review", s.withFlow(s.handleReview))
	api.HandleFunc("POST /api/flows/{id}/submit", s.withFlow(s.handleSubmit))
	api.HandleFunc("GET /api/albums", s.handleListAlbums)
	api.HandleFunc("GET /api/albums/{id}", s.handleGetAlbum)
	api.HandleFunc("GET /api/catalog", s.handleCatalog)

	mux := http.NewServeMux()
	mux.Handle("/api/", s.validator.Wrap(api))
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(contract)
	})
	return mux
}

type flowHandler func(w http.ResponseWriter, r *http.Request, live *Live)

func (s *Server) withFlow(next flowHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		live, err := s.manager.Get(r.PathValue("id"))
		if err != nil {
			s.fail(w, err)
			return
		}
		next(w, r, live)
	}
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	live, err := s.manager.Start(body.Kind, bearerToken(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeData(w, http.StatusCreated, viewOf(live))
}

func (s *Server) handleGet(w http.ResponseWriter, _ *http.Request, live *Live) {
	writeData(w, http.StatusOK, viewOf(live))
}

func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Discard(r.PathValue("id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request, live *Live) {
	var patch FieldPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := live.Patch(patch); err != nil {
		s.fail(w, err)
		return
	}
	writeData(w, http.StatusOK, viewOf(live))
}

func (s *Server) handleAddFiles(w http.ResponseWriter, r *http.Request, live *Live) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "files field is required")
		return
	}

	files := make([]formdata.File, 0, len(headers))
	for _, header := range headers {
		file, err := readUpload(header)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		files = append(files, file)
	}

	rejected, err := live.AddFiles(files...)
	if err != nil {
		s.fail(w, err)
		return
	}

	view := intakeView{Flow: viewOf(live)}
	for _, item := range rejected {
		s.recorder.IntakeRejected(live.Name(), rejectionReason(item.Message))
		view.Rejected = append(view.Rejected, rejectedFile{FileName: item.FileName, Error: item.Message})
	}
	s.logger.Debug("files received", "flow_id", live.ID(), "accepted", len(files)-len(rejected), "rejected", len(rejected))
	writeData(w, http.StatusOK, view)
}

func (s *Server) handleRemoveFile(w http.ResponseWriter, r *http.Request, live *Live) {
	if err := live.RemoveFile(r.PathValue("fileId")); err != nil {
		s.fail(w, err)
		return
	}
	writeData(w, http.StatusOK, viewOf(live))
}

func (s *Server) handleAdvance(w http.ResponseWriter, _ *http.Request, live *Live) {
	result, err := live.Advance()
	if err != nil {
		s.fail(w, err)
		return
	}
	status := http.StatusOK
	if !result.Valid {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, envelope{Success: result.Valid, Data: gateView{Flow: viewOf(live), Result: result}, Error: result.Error})
}

func (s *Server) handleRetreat(w http.ResponseWriter, _ *http.Request, live *Live) {
	if err := live.Retreat(); err != nil {
		s.fail(w, err)
		return
	}
	writeData(w, http.StatusOK, viewOf(live))
}

func (s *Server) handleJump(w http.ResponseWriter, r *http.Request, live *Live) {
	var body struct {
		Step int `json:"step"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := live.JumpTo(body.Step); err != nil {
		s.fail(w, err)
		return
	}
	writeData(w, http.StatusOK, viewOf(live))
}

func (s *Server) handleReview(w http.ResponseWriter, _ *http.Request, live *Live) {
	text, err := live.Review()
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, text)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request, live *Live) {
	outcome, err := live.Submit(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if !outcome.Success {
		writeJSON(w, http.StatusUnprocessableEntity, envelope{Success: false, Data: viewOf(live), Error: outcome.Error})
		return
	}
	writeData(w, http.StatusOK, viewOf(live))
}

func (s *Server) handleListAlbums(w http.ResponseWriter, r *http.Request) {
	list, err := s.albums.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	views := make([]albumView, 0, len(list))
	for _, a := range list {
		views = append(views, albumViewOf(a))
	}
	writeData(w, http.StatusOK, views)
}

func (s *Server) handleGetAlbum(w http.ResponseWriter, r *http.Request) {
	a, err := s.albums.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	if strings.EqualFold(r.URL.Query().Get("format"), "text") && s.summary != nil {
		text, err := s.summary.AlbumDetail(a)
		if err != nil {
			s.fail(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, text)
		return
	}
	writeData(w, http.StatusOK, albumViewOf(a))
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, map[string]any{
		"styles":            s.catalog.Styles(),
		"serviceCategories": s.catalog.ServiceCategories(),
	})
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	var stepErr *wizard.StepError
	if errors.As(err, &stepErr) {
		message = stepErr.Message
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		message = "internal error"
	}
	writeError(w, status, message)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrFlowNotFound),
		errors.Is(err, albums.ErrNotFound),
		errors.Is(err, formdata.ErrFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnknownKind),
		errors.Is(err, ErrFieldNotInFlow),
		errors.Is(err, ErrUnknownOption),
		errors.Is(err, wizard.ErrStepNotVisited),
		errors.Is(err, wizard.ErrStepOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, wizard.ErrSubmissionPending),
		errors.Is(err, wizard.ErrCompleted),
		errors.Is(err, wizard.ErrAbandoned),
		errors.Is(err, wizard.ErrNotFinalStep):
		return http.StatusConflict
	case errors.Is(err, wizard.ErrStepInvalid):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func readUpload(header *multipart.FileHeader) (formdata.File, error) {
	src, err := header.Open()
	if err != nil {
		return formdata.File{}, fmt.Errorf("open %s: %w", header.Filename, err)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return formdata.File{}, fmt.Errorf("read %s: %w", header.Filename, err)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = formdata.DetectContentType(header.Filename, head[:n])
	}
	return formdata.File{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: contentType,
	}, nil
}

func rejectionReason(message string) string {
	switch {
	case message == formdata.MessageInvalidType:
		return "type"
	case message == formdata.MessageDuplicate:
		return "duplicate"
	case message == formdata.MessageNoPreview:
		return "preview"
	case strings.HasPrefix(message, "File too large"):
		return "size"
	default:
		return "count"
	}
}

func bearerToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
