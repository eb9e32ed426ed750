package web

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sloppy/scanreport-console/internal/db"
	"github.com/sloppy/scanreport-console/internal/listctl"
	"github.com/sloppy/scanreport-console/internal/rest"
)

const backendUnavailable = "The scan report service could not be reached. Try again shortly."

func (s *Server) handleReportList(w http.ResponseWriter, r *http.Request) {
	state := listctl.NewState(s.Limit)
	state.Query = parseListQuery(r.URL.Query(), s.Limit)

	session := &sessionSignal{}
	ctl := s.newController(state, session)
	_, err := ctl.Refresh(backendContext(r))
	if session.Expired() {
		s.sessionExpired(w, r)
		return
	}

	status := http.StatusOK
	notice := ""
	if err != nil && !errors.Is(err, listctl.ErrStale) {
		status = http.StatusBadGateway
		notice = backendUnavailable
	}

	if selected := strings.TrimSpace(r.URL.Query().Get("selected")); selected != "" {
		for _, item := range ctl.Snapshot().Items {
			if item.ID == selected {
				ctl.Select(item)
				break
			}
		}
	}
	snap := ctl.Snapshot()

	if isHTMXRequest(r) {
		renderStatus(w, r, status, reportTablePartial(snap, s.Format))
		return
	}
	renderStatus(w, r, status, reportListPage(snap, s.savedViews(), s.Format, notice))
}

func (s *Server) handleReportDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, err := s.Reports.Get(backendContext(r), id)
	if err != nil {
		s.backendError(w, r, err, "failed to load scan report")
		return
	}
	returnTo := r.URL.Query().Get("return")
	render(w, r, reportDetailPage(report, returnTo, s.Format))
}

func (s *Server) handleReportLogs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	logs, err := s.Reports.Logs(backendContext(r), id)
	if err != nil {
		s.backendError(w, r, err, "failed to load scan report logs")
		return
	}
	if logs.Outcome == rest.OutcomeOK && logs.Text == "" {
		s.Logger.Warn("scan report logs response had no text", "id", id)
	}
	if isHTMXRequest(r) {
		render(w, r, reportLogsPartial(logs))
		return
	}
	render(w, r, reportLogsPage(id, logs))
}

func (s *Server) handleReportUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	item := rest.ScanReport{
		ID:         id,
		Label:      strings.TrimSpace(r.FormValue("label")),
		Location:   strings.TrimSpace(r.FormValue("location")),
		Properties: parseProperties(r.FormValue("properties")),
	}

	state := listctl.NewState(s.Limit)
	state.Query = returnQuery(r, s.Limit)
	session := &sessionSignal{}
	ctl := s.newController(state, session)

	_, err := ctl.Update(backendContext(r), item)
	if session.Expired() {
		s.sessionExpired(w, r)
		return
	}
	s.recordAction(db.ActionUpdate, id, updateResult(err), err)
	if err != nil {
		s.backendError(w, r, err, "failed to update scan report")
		return
	}

	values := listValues(state.Query, state.Query.Offset)
	values.Set("selected", id)
	http.Redirect(w, r, "/scanreports?"+values.Encode(), http.StatusSeeOther)
}

// formConfirmer answers the delete confirmation from the submitted form and
// remembers the question when the form had not confirmed yet.
type formConfirmer struct {
	approved bool
	prompt   string
}

func (c *formConfirmer) Confirm(_ context.Context, prompt string) bool {
	c.prompt = prompt
	return c.approved
}

func (s *Server) handleReportDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	state := listctl.NewState(s.Limit)
	state.Query = returnQuery(r, s.Limit)
	session := &sessionSignal{}
	ctl := s.newController(state, session)
	confirmer := &formConfirmer{approved: r.FormValue("confirm") == "yes"}

	result, err := ctl.Delete(backendContext(r), rest.ScanReport{ID: id}, confirmer)
	if session.Expired() {
		s.sessionExpired(w, r)
		return
	}
	if result != listctl.DeleteCancelled {
		s.recordAction(db.ActionDelete, id, result.String(), err)
	}

	switch result {
	case listctl.DeleteCancelled:
		render(w, r, deleteConfirmPage(id, confirmer.prompt, r.FormValue("return")))
	case listctl.DeleteFailed:
		s.backendError(w, r, err, "failed to delete scan report")
	default:
		if err != nil {
			s.Logger.Warn("refresh after delete failed", "id", id, "err", err)
		}
		http.Redirect(w, r, listLink(state.Query, state.Query.Offset), http.StatusSeeOther)
	}
}

func (s *Server) handleReportExport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		http.Error(w, "invalid export format", http.StatusBadRequest)
		return
	}

	state := listctl.NewState(s.Limit)
	state.Query = parseListQuery(r.URL.Query(), s.Limit)
	session := &sessionSignal{}
	ctl := s.newController(state, session)
	if _, err := ctl.Refresh(backendContext(r)); err != nil {
		if session.Expired() {
			s.sessionExpired(w, r)
			return
		}
		http.Error(w, "export failed", http.StatusBadGateway)
		return
	}

	filename := fmt.Sprintf("scanreports.%s", format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := s.writeExport(w, format, ctl.Snapshot()); err != nil {
		s.Logger.Error("export failed", "format", format, "err", err)
	}
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "journal disabled", http.StatusNotFound)
		return
	}
	entries, err := s.DB.ListJournal(parseInt(r.URL.Query().Get("limit"), 100))
	if err != nil {
		http.Error(w, "failed to load journal", http.StatusInternalServerError)
		return
	}
	render(w, r, journalPage(entries, s.Format))
}

func (s *Server) handleViewsList(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "saved views disabled", http.StatusNotFound)
		return
	}
	views, err := s.DB.ListSavedViews()
	if err != nil {
		http.Error(w, "failed to list saved views", http.StatusInternalServerError)
		return
	}
	render(w, r, savedViewsPage(views))
}

func (s *Server) handleViewsCreate(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "saved views disabled", http.StatusNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		http.Error(w, "view name is required", http.StatusBadRequest)
		return
	}
	q := returnQuery(r, s.Limit)
	if _, err := s.DB.CreateSavedView(db.SavedView{
		Name:        name,
		SearchParam: q.SearchParam,
		OrderBy:     q.OrderBy,
		Order:       q.Order,
		Limit:       q.Limit,
	}); err != nil {
		http.Error(w, fmt.Sprintf("create saved view: %v", err), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/views", http.StatusSeeOther)
}

func (s *Server) handleViewOpen(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "saved views disabled", http.StatusNotFound)
		return
	}
	id, err := parseViewID(r)
	if err != nil {
		http.Error(w, "invalid view id", http.StatusBadRequest)
		return
	}
	view, found, err := s.DB.GetSavedView(id)
	if err != nil {
		http.Error(w, "failed to load saved view", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "saved view not found", http.StatusNotFound)
		return
	}
	http.Redirect(w, r, listLink(viewQuery(view, s.Limit), 0), http.StatusFound)
}

func (s *Server) handleViewsDelete(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "saved views disabled", http.StatusNotFound)
		return
	}
	id, err := parseViewID(r)
	if err != nil {
		http.Error(w, "invalid view id", http.StatusBadRequest)
		return
	}
	if err := s.DB.DeleteSavedView(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "saved view not found", http.StatusNotFound)
			return
		}
		http.Error(w, "delete saved view failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/views", http.StatusSeeOther)
}

// backendError maps a REST client error onto a response.
func (s *Server) backendError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, rest.ErrSessionExpired):
		s.sessionExpired(w, r)
	case errors.Is(err, rest.ErrNotFound):
		http.Error(w, "scan report not found", http.StatusNotFound)
	default:
		s.Logger.Error(msg, "err", err)
		http.Error(w, msg, http.StatusBadGateway)
	}
}

func (s *Server) recordAction(action, reportID, result string, err error) {
	if s.DB == nil {
		return
	}
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	if _, recErr := s.DB.RecordAction(action, reportID, result, detail); recErr != nil {
		s.Logger.Error("record journal entry", "action", action, "id", reportID, "err", recErr)
	}
}

func (s *Server) savedViews() []db.SavedView {
	if s.DB == nil {
		return nil
	}
	views, err := s.DB.ListSavedViews()
	if err != nil {
		s.Logger.Error("list saved views", "err", err)
		return nil
	}
	return views
}

func updateResult(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}

func viewQuery(view db.SavedView, defaultLimit int) listctl.Query {
	values := url.Values{}
	values.Set("_s", view.SearchParam)
	values.Set("orderBy", view.OrderBy)
	values.Set("order", view.Order)
	values.Set("limit", fmt.Sprint(view.Limit))
	return parseListQuery(values, defaultLimit)
}

func parseViewID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "viewID"), 10, 64)
}
