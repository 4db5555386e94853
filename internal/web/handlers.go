package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chiraglokhande04/Data-Cleaning-Agent/internal/core"
	"github.com/chiraglokhande04/Data-Cleaning-Agent/internal/logging"
)

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpload ingests a CSV file: parse, infer schema, scan for issues,
// persist the raw bytes and the assembled record.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Ingest.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		s.respondError(w, r, badRequest("file too large or invalid form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, badRequest("no file provided"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Ingest.Timeout)
	defer cancel()

	rec, err := s.pipeline.Ingest(ctx, data, header.Filename, header.Size)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	url, err := s.blobs.Put(rec.ID, rec.Filename, data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	rec.StorageURL = url

	if err := s.store.Save(ctx, rec); err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("dataset ingested",
		"dataset_id", rec.ID,
		"filename", rec.Filename,
		"rows", rec.RowCount,
		"columns", len(rec.Schema),
		"issues", len(rec.Issues),
	)

	writeJSON(w, http.StatusCreated, rec)
}

// handleListDatasets returns summaries of all datasets.
func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.List(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// loadDataset fetches the record addressed by the route, or writes the
// error response and returns nil.
func (s *Server) loadDataset(w http.ResponseWriter, r *http.Request) *core.DatasetRecord {
	id := chi.URLParam(r, "datasetID")
	rec, err := s.store.Load(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return nil
	}
	return rec
}

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	if rec := s.loadDataset(w, r); rec != nil {
		writeJSON(w, http.StatusOK, rec)
	}
}

func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	if rec := s.loadDataset(w, r); rec != nil {
		writeJSON(w, http.StatusOK, rec.Schema)
	}
}

func (s *Server) handleGetIssues(w http.ResponseWriter, r *http.Request) {
	if rec := s.loadDataset(w, r); rec != nil {
		writeJSON(w, http.StatusOK, rec.Issues)
	}
}

func (s *Server) handleGetPreview(w http.ResponseWriter, r *http.Request) {
	if rec := s.loadDataset(w, r); rec != nil {
		writeJSON(w, http.StatusOK, rec.Preview)
	}
}

func (s *Server) handleGetTransformations(w http.ResponseWriter, r *http.Request) {
	if rec := s.loadDataset(w, r); rec != nil {
		writeJSON(w, http.StatusOK, rec.Transformations)
	}
}

func (s *Server) handleGetProvenance(w http.ResponseWriter, r *http.Request) {
	if rec := s.loadDataset(w, r); rec != nil {
		writeJSON(w, http.StatusOK, rec.Provenance)
	}
}

// handleDownloadRaw streams the stored original file back to the client.
func (s *Server) handleDownloadRaw(w http.ResponseWriter, r *http.Request) {
	rec := s.loadDataset(w, r)
	if rec == nil {
		return
	}

	rc, err := s.blobs.Open(rec.StorageURL)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+rec.Filename+`"`)
	io.Copy(w, rc)
}

// transformationRequest is the append payload for the transformation ledger.
type transformationRequest struct {
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
	Timestamp  time.Time      `json:"timestamp"`
	Actor      string         `json:"actor"`
}

// handleAppendTransformation appends to the transformation ledger and
// records a matching provenance event.
func (s *Server) handleAppendTransformation(w http.ResponseWriter, r *http.Request) {
	var req transformationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, badRequest("invalid JSON body"))
		return
	}
	if req.Name == "" {
		s.respondError(w, r, badRequest("transformation name is required"))
		return
	}

	id := chi.URLParam(r, "datasetID")
	rec, err := s.store.Update(r.Context(), id, func(rec *core.DatasetRecord) error {
		if err := rec.Transformations.Append(core.Transformation{
			Name:       req.Name,
			Parameters: req.Parameters,
			Timestamp:  req.Timestamp,
		}); err != nil {
			return err
		}
		return rec.Provenance.Append(core.ProvenanceEvent{
			Actor:   actorOr(req.Actor, core.SystemActor),
			Action:  "transform",
			Details: map[string]any{"transformation": req.Name},
		})
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, rec.Transformations)
}

// provenanceRequest is the append payload for the provenance ledger.
type provenanceRequest struct {
	Actor     string         `json:"actor"`
	Action    string         `json:"action"`
	Timestamp time.Time      `json:"timestamp"`
	Details   map[string]any `json:"details"`
}

func (s *Server) handleAppendProvenance(w http.ResponseWriter, r *http.Request) {
	var req provenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, badRequest("invalid JSON body"))
		return
	}
	if req.Actor == "" || req.Action == "" {
		s.respondError(w, r, badRequest("actor and action are required"))
		return
	}

	id := chi.URLParam(r, "datasetID")
	rec, err := s.store.Update(r.Context(), id, func(rec *core.DatasetRecord) error {
		return rec.Provenance.Append(core.ProvenanceEvent{
			Actor:     req.Actor,
			Action:    req.Action,
			Timestamp: req.Timestamp,
			Details:   req.Details,
		})
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, rec.Provenance)
}

// statusRequest is the payload for a lifecycle status change.
type statusRequest struct {
	Status core.Status `json:"status"`
	Actor  string      `json:"actor"`
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, badRequest("invalid JSON body"))
		return
	}
	if !core.ValidStatus(req.Status) {
		s.respondError(w, r, badRequest("status must be one of: raw, cleaned, validated"))
		return
	}

	id := chi.URLParam(r, "datasetID")
	rec, err := s.store.Update(r.Context(), id, func(rec *core.DatasetRecord) error {
		old := rec.Status
		rec.Status = req.Status
		return rec.Provenance.Append(core.ProvenanceEvent{
			Actor:   actorOr(req.Actor, core.SystemActor),
			Action:  "status_change",
			Details: map[string]any{"from": string(old), "to": string(req.Status)},
		})
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// notesRequest is the payload for replacing a dataset's notes.
type notesRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) handleUpdateNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, badRequest("invalid JSON body"))
		return
	}

	id := chi.URLParam(r, "datasetID")
	rec, err := s.store.Update(r.Context(), id, func(rec *core.DatasetRecord) error {
		rec.Notes = req.Notes
		return nil
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "datasetID")
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// actorOr returns the actor, or the fallback when empty.
func actorOr(actor, fallback string) string {
	if actor == "" {
		return fallback
	}
	return actor
}
