package web

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/CompanyPortal/internal/core"
	"github.com/JonMunkholm/CompanyPortal/internal/export"
)

func (s *Server) handleStatusSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.service.StatusSummary(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleAuditLog lists recent audit events. Supports action, actor, since
// (RFC 3339) and limit query parameters.
func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := core.AuditLogOptions{
		Action: core.AuditAction(strings.TrimSpace(q.Get("action"))),
		Actor:  strings.TrimSpace(q.Get("actor")),
	}
	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, r, errors.Join(errInvalidQuery, err))
			return
		}
		opts.Since = since
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, r, errInvalidQuery)
			return
		}
		opts.Limit = n
	}

	events, err := s.service.AuditLog(r.Context(), opts)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(events),
		"entries": events,
	})
}

// parseStatuses reads ?status=A,B or repeated status parameters. Unknown
// values are rejected.
func parseStatuses(r *http.Request) ([]core.Status, error) {
	var out []core.Status
	for _, v := range r.URL.Query()["status"] {
		for _, part := range strings.Split(v, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			st := core.ParseStatus(part)
			if st == core.StatusUnknown {
				return nil, errInvalidQuery
			}
			out = append(out, st)
		}
	}
	return out, nil
}

// handleExport downloads the requested statuses as a workbook with one
// sheet per status.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	statuses, err := parseStatuses(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	groups, err := s.service.ExportGroups(r.Context(), statuses)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, groups); err != nil {
		respondError(w, r, err)
		return
	}

	name := export.FileName(time.Now().UTC().Format("20060102T150405"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
