package web

import (
	"net/http"
	"time"
)

// handlePurge collapses the caller's own duplicates against a freshly
// fetched registry snapshot.
func (s *Server) handlePurge(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	snap := s.cache.Refresh(r.Context(), id.Submitter)

	res, err := s.service.PurgeUserDuplicates(r.Context(), id.Submitter, snap)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type snapshotResponse struct {
	Entries   int       `json:"entries"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// handleSnapshotRefresh replaces the caller's registry snapshot.
func (s *Server) handleSnapshotRefresh(w http.ResponseWriter, r *http.Request) {
	snap := s.cache.Refresh(r.Context(), identity(r).Submitter)
	writeJSON(w, http.StatusOK, snapshotResponse{
		Entries:   snap.Len(),
		FetchedAt: snap.FetchedAt(),
	})
}

// handleContributions returns the number of staged records per submitter.
func (s *Server) handleContributions(w http.ResponseWriter, r *http.Request) {
	counts, err := s.service.UploadCounts(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}
