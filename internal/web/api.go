package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sloppy/scanreport-console/internal/contentrange"
	"github.com/sloppy/scanreport-console/internal/db"
	"github.com/sloppy/scanreport-console/internal/export"
	"github.com/sloppy/scanreport-console/internal/listctl"
	"github.com/sloppy/scanreport-console/internal/rest"
)

const maxBodyBytes = 1 << 20

type apiListResponse struct {
	Query       export.QueryInfo  `json:"query"`
	ScanReports []rest.ScanReport `json:"scan_reports"`
}

type apiLogsResponse struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type apiDeleteResponse struct {
	ID     string `json:"id"`
	Result string `json:"result"`
}

func (s *Server) jsonResponse(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.Logger.Error("encode json response", "err", err)
		}
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, err error, status int) {
	s.jsonResponse(w, map[string]string{"error": err.Error()}, status)
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	s.errorResponse(w, err, http.StatusBadRequest)
}

// apiBackendError maps REST client errors onto JSON error responses.
func (s *Server) apiBackendError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rest.ErrSessionExpired):
		w.Header().Set("WWW-Authenticate", `Basic realm="OpenNMS Realm"`)
		s.errorResponse(w, rest.ErrSessionExpired, http.StatusUnauthorized)
	case errors.Is(err, rest.ErrNotFound):
		s.errorResponse(w, rest.ErrNotFound, http.StatusNotFound)
	default:
		s.Logger.Error("backend call failed", "err", err)
		s.errorResponse(w, errors.New("scan report service unavailable"), http.StatusBadGateway)
	}
}

func (s *Server) apiListReports(w http.ResponseWriter, r *http.Request) {
	state := listctl.NewState(s.Limit)
	state.Query = parseListQuery(r.URL.Query(), s.Limit)
	session := &sessionSignal{}
	ctl := s.newController(state, session)

	_, err := ctl.Refresh(backendContext(r))
	if session.Expired() {
		s.apiBackendError(w, rest.ErrSessionExpired)
		return
	}
	if err != nil {
		s.apiBackendError(w, err)
		return
	}

	snap := ctl.Snapshot()
	if len(snap.Items) > 0 {
		window := contentrange.Range{Start: snap.Query.Offset, End: snap.Query.LastOffset, Total: snap.Query.Total()}
		w.Header().Set("Content-Range", window.String())
	}
	s.jsonResponse(w, apiListResponse{
		Query:       export.NewQueryInfo(snap.Query),
		ScanReports: snap.Items,
	}, http.StatusOK)
}

func (s *Server) apiGetReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.Reports.Get(backendContext(r), chi.URLParam(r, "id"))
	if err != nil {
		s.apiBackendError(w, err)
		return
	}
	s.jsonResponse(w, report, http.StatusOK)
}

func (s *Server) apiUpdateReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var item rest.ScanReport
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&item); err != nil {
		s.badRequest(w, fmt.Errorf("decode scan report: %w", err))
		return
	}
	item.ID = id

	state := listctl.NewState(s.Limit)
	state.Query = parseListQuery(r.URL.Query(), s.Limit)
	session := &sessionSignal{}
	ctl := s.newController(state, session)

	updated, err := ctl.Update(backendContext(r), item)
	if session.Expired() {
		s.apiBackendError(w, rest.ErrSessionExpired)
		return
	}
	s.recordAction(db.ActionUpdate, id, updateResult(err), err)
	if err != nil {
		s.apiBackendError(w, err)
		return
	}
	s.jsonResponse(w, updated, http.StatusOK)
}

func (s *Server) apiDeleteReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state := listctl.NewState(s.Limit)
	state.Query = parseListQuery(r.URL.Query(), s.Limit)
	session := &sessionSignal{}
	ctl := s.newController(state, session)

	// An API DELETE is its own confirmation.
	approve := listctl.ConfirmFunc(func(context.Context, string) bool { return true })
	result, err := ctl.Delete(backendContext(r), rest.ScanReport{ID: id}, approve)
	if session.Expired() {
		s.apiBackendError(w, rest.ErrSessionExpired)
		return
	}
	s.recordAction(db.ActionDelete, id, result.String(), err)
	if result == listctl.DeleteFailed {
		s.apiBackendError(w, err)
		return
	}
	if err != nil {
		s.Logger.Warn("refresh after delete failed", "id", id, "err", err)
	}
	s.jsonResponse(w, apiDeleteResponse{ID: id, Result: result.String()}, http.StatusOK)
}

func (s *Server) apiReportLogs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	logs, err := s.Reports.Logs(backendContext(r), id)
	if err != nil {
		s.apiBackendError(w, err)
		return
	}
	s.jsonResponse(w, apiLogsResponse{ID: id, Text: logs.Text}, http.StatusOK)
}

// writeExport streams state in the requested export format.
func (s *Server) writeExport(w http.ResponseWriter, format string, state listctl.State) error {
	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		return export.ExportReportsCSV(state.Items, s.Format, w)
	default:
		w.Header().Set("Content-Type", "application/json")
		return export.ExportListJSON(state, time.Now(), w)
	}
}
