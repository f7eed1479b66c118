package server

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/spektr-org/skillscope/engine"
	"github.com/spektr-org/skillscope/helpers"
	"github.com/spektr-org/skillscope/logger"
	"github.com/spektr-org/skillscope/schema"
)

// UploadResponse is returned after a successful upload.
type UploadResponse struct {
	ID       string   `json:"id"`
	Filename string   `json:"filename"`
	Records  int      `json:"records"`
	Evicted  []string `json:"evicted,omitempty"`
}

// ScalesResponse lists the level scales.
type ScalesResponse struct {
	LinguisticDomain string              `json:"linguistic_domain"`
	Scales           []engine.LevelScale `json:"scales"`
}

// ViewInfo describes one report view.
type ViewInfo struct {
	View     engine.ViewKind `json:"view"`
	Title    string          `json:"title"`
	Filename string          `json:"csv_filename"`
}

// handleScales handles GET /api/scales
func (s *Server) handleScales(w http.ResponseWriter, r *http.Request) {
	linguistic := s.config.LinguisticDomain
	if linguistic == "" {
		linguistic = engine.DefaultLinguisticDomain
	}
	s.writeJSONResponse(r.Context(), w, http.StatusOK, ScalesResponse{
		LinguisticDomain: linguistic,
		Scales:           []engine.LevelScale{engine.LinguisticScale, engine.GenericScale},
	})
}

// handleListViews handles GET /api/views
func (s *Server) handleListViews(w http.ResponseWriter, r *http.Request) {
	views := make([]ViewInfo, 0, len(engine.ViewKinds))
	for _, kind := range engine.ViewKinds {
		views = append(views, ViewInfo{
			View:     kind,
			Title:    engine.BuildTitle(engine.ViewSpec{View: kind}),
			Filename: helpers.ExportFilename(kind),
		})
	}
	s.writeJSONResponse(r.Context(), w, http.StatusOK, views)
}

// handleListDatasets handles GET /api/datasets
func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(r.Context(), w, http.StatusOK, s.store.List())
}

// handleUpload handles POST /api/datasets (multipart field "file")
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tooLarge := "upload exceeds " + strconv.FormatInt(s.config.MaxUploadBytes, 10) + " bytes"
	if r.ContentLength > s.config.MaxUploadBytes {
		s.writeErrorResponse(ctx, w, http.StatusRequestEntityTooLarge, tooLarge, nil)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeErrorResponse(ctx, w, http.StatusRequestEntityTooLarge, tooLarge, err)
			return
		}
		s.writeErrorResponse(ctx, w, http.StatusBadRequest, "invalid multipart upload", err)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeErrorResponse(ctx, w, http.StatusBadRequest, `missing form file "file"`, err)
		return
	}
	defer func() { _ = file.Close() }()

	records, err := helpers.LoadReader(ctx, file, header.Filename, s.config.Schema)
	if err != nil {
		s.writeLoadError(w, r, err)
		return
	}

	ds, evicted := s.store.Add(header.Filename, records)
	logger.G(ctx).WithFields(map[string]any{
		"dataset": ds.ID,
		"records": ds.Records,
		"evicted": len(evicted),
	}).Info("dataset stored")

	s.writeJSONResponse(ctx, w, http.StatusCreated, UploadResponse{
		ID:       ds.ID,
		Filename: ds.Filename,
		Records:  ds.Records,
		Evicted:  evicted,
	})
}

// writeLoadError maps loader failures onto 422 responses.
func (s *Server) writeLoadError(w http.ResponseWriter, r *http.Request, err error) {
	var schemaErr *schema.SchemaError
	var loadErr *helpers.LoadError
	switch {
	case errors.As(err, &schemaErr), errors.As(err, &loadErr):
		s.writeErrorResponse(r.Context(), w, http.StatusUnprocessableEntity, err.Error(), err)
	default:
		s.writeErrorResponse(r.Context(), w, http.StatusInternalServerError, "failed to load dataset", err)
	}
}

// handleGetDataset handles GET /api/datasets/{id}
func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	s.writeJSONResponse(r.Context(), w, http.StatusOK, ds)
}

// handleDeleteDataset handles DELETE /api/datasets/{id}
func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.store.Delete(id) {
		s.writeErrorResponse(r.Context(), w, http.StatusNotFound, "dataset not found: "+id, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleOptions handles GET /api/datasets/{id}/options?domain=
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	s.writeJSONResponse(r.Context(), w, http.StatusOK, engine.BuildCatalog(ds.View(), filtersFromQuery(r)))
}

// handleView handles GET /api/datasets/{id}/views/{view}
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	result, ok := s.execute(w, r)
	if !ok {
		return
	}
	s.writeJSONResponse(r.Context(), w, http.StatusOK, result)
}

// handleViewCSV handles GET /api/datasets/{id}/views/{view}.csv
func (s *Server) handleViewCSV(w http.ResponseWriter, r *http.Request) {
	result, ok := s.execute(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+helpers.ExportFilename(result.View)+`"`)
	if err := helpers.WriteTableCSV(w, result.TableData); err != nil {
		logger.G(r.Context()).WithError(err).Error("failed to write CSV export")
	}
}

// execute runs the view named in the route over the dataset. It writes
// the error response itself and returns false on failure.
func (s *Server) execute(w http.ResponseWriter, r *http.Request) (*engine.Result, bool) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return nil, false
	}

	name := mux.Vars(r)["view"]
	kind, known := engine.ParseViewKind(name)
	if !known {
		s.writeErrorResponse(r.Context(), w, http.StatusBadRequest, "unknown view: "+name, nil)
		return nil, false
	}

	spec := engine.ViewSpec{
		View:    kind,
		Filters: filtersFromQuery(r),
		Title:   r.URL.Query().Get("title"),
	}
	result, err := engine.Execute(r.Context(), spec, ds.View(), s.config.EngineOptions...)
	if err != nil {
		s.writeErrorResponse(r.Context(), w, http.StatusInternalServerError, "failed to compute view", err)
		return nil, false
	}
	return result, true
}

func (s *Server) dataset(w http.ResponseWriter, r *http.Request) (*Dataset, bool) {
	id := mux.Vars(r)["id"]
	ds, ok := s.store.Get(id)
	if !ok {
		s.writeErrorResponse(r.Context(), w, http.StatusNotFound, "dataset not found: "+id, nil)
		return nil, false
	}
	return ds, true
}

func filtersFromQuery(r *http.Request) engine.Filters {
	q := r.URL.Query()
	return engine.Filters{
		Domain:       q.Get("domain"),
		Competency:   q.Get("competency"),
		Collaborator: q.Get("collaborator"),
		Department:   q.Get("department"),
	}
}
