package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/CompanyPortal/internal/core"
)

// maxJSONBody bounds single-submission request bodies.
const maxJSONBody = 64 << 10

type submitRequest struct {
	Name    string `json:"name"`
	Website string `json:"website"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSubmit stages one company for the caller.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, err)
			return
		}
		respondError(w, r, errors.Join(errInvalidJSON, err))
		return
	}

	id := identity(r)
	snap := s.cache.Get(r.Context(), id.Submitter)
	res, err := s.service.Submit(r.Context(), id, snap, req.Name, req.Website)
	if err != nil {
		respondError(w, r, err)
		return
	}

	status := http.StatusCreated
	if !res.Stored {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}

// handleList returns the caller's records, or every record for admins.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	recs, err := s.service.List(r.Context(), identity(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if recs == nil {
		recs = []core.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(recs),
		"records": recs,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "id")
	if err := s.service.Delete(r.Context(), identity(r), recordID); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// readUpload parses the multipart "file" field into bulk candidates.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]core.Candidate, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, errors.Join(errNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errors.Join(errNoFile, err)
	}
	defer file.Close()

	return core.ParseBulkFile(header.Filename, file)
}

// handleBulkAnalyze previews the classification of every row without writing.
func (s *Server) handleBulkAnalyze(w http.ResponseWriter, r *http.Request) {
	rows, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	id := identity(r)
	snap := s.cache.Get(r.Context(), id.Submitter)
	preview, err := s.service.AnalyzeBulk(r.Context(), id, snap, rows)
	if err != nil {
		respondError(w, r, err)
		return
	}

	counts := make(map[core.Status]int)
	skipped := 0
	for _, row := range preview {
		if row.Skipped {
			skipped++
			continue
		}
		counts[row.Decision.Status]++
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total":    len(preview),
		"skipped":  skipped,
		"byStatus": counts,
		"rows":     preview,
	})
}

// bulkErrorResponse reports a bulk confirm that stopped part way. Rows before
// the failing one stay staged under BatchID.
type bulkErrorResponse struct {
	ErrorResponse
	Inserted int    `json:"inserted"`
	BatchID  string `json:"batchId"`
}

// handleBulkConfirm stages every row of the uploaded file. Rows are staged
// one at a time; a failure keeps the rows already staged.
func (s *Server) handleBulkConfirm(w http.ResponseWriter, r *http.Request) {
	rows, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	id := identity(r)
	snap := s.cache.Get(r.Context(), id.Submitter)
	res, err := s.service.ConfirmBulk(r.Context(), id, snap, rows)
	if err != nil {
		if errors.Is(err, core.ErrTooManyUploads) {
			w.Header().Set("Retry-After", "15")
		}
		if res.BatchID == "" {
			respondError(w, r, err)
			return
		}
		status, body := errorResponse(r, err)
		writeJSON(w, status, bulkErrorResponse{
			ErrorResponse: body,
			Inserted:      res.Inserted,
			BatchID:       res.BatchID,
		})
		return
	}
	writeJSON(w, http.StatusOK, res)
}
