package web

import (
	"context"
	"html"
	"net/http"
	"sync/atomic"

	"github.com/sloppy/scanreport-console/internal/listctl"
	"github.com/sloppy/scanreport-console/internal/rest"
)

// sessionSignal collects the controller's session-expired signal for one
// request so the handler can send the browser through re-authentication.
type sessionSignal struct {
	expired atomic.Bool
}

func (s *sessionSignal) SessionExpired(ctx context.Context) {
	s.expired.Store(true)
}

func (s *sessionSignal) Expired() bool {
	return s.expired.Load()
}

// backendContext forwards the browser's credentials to the backend.
func backendContext(r *http.Request) context.Context {
	return rest.WithCredentials(r.Context(), rest.CredentialsFromRequest(r))
}

// newController binds a per-request controller to state.
func (s *Server) newController(state *listctl.State, session listctl.SessionHandler) *listctl.Controller {
	return listctl.New(s.Reports, state, listctl.Options{
		Session: session,
		Logger:  s.Logger,
		Metrics: s.Metrics,
	})
}

// currentURL is the page the user is looking at: the HTMX page for partial
// requests, the referring page for form posts, the request itself otherwise.
func currentURL(r *http.Request) string {
	if isHTMXRequest(r) {
		if cur := r.Header.Get("HX-Current-URL"); cur != "" {
			return cur
		}
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		if ref := r.Referer(); ref != "" {
			return ref
		}
		return "/scanreports"
	}
	return r.URL.RequestURI()
}

// sessionExpired reloads the current location so that the browser
// re-authenticates. Full-page GETs get a Basic challenge, which makes the
// browser prompt and then retry the same URL.
func (s *Server) sessionExpired(w http.ResponseWriter, r *http.Request) {
	target := currentURL(r)
	s.Logger.Info("session expired, reloading", "target", target)

	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	w.Header().Set("WWW-Authenticate", `Basic realm="OpenNMS Realm"`)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	escaped := html.EscapeString(target)
	w.Write([]byte(`<!doctype html><html><body><p>Session expired. <a href="` + escaped + `">Reload</a></p></body></html>`))
}
