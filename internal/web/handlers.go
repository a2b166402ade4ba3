package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jaminalder/tictactoe-rounds/internal/app"
	"github.com/jaminalder/tictactoe-rounds/internal/domain"
)

const (
	sessionCookie   = "session_id"
	dismissedCookie = "pwa-install-dismissed"
)

type handlers struct {
	svc *app.Service
	tpl *templates
	log *slog.Logger
}

// renderApp renders the #app fragment; it is also the broadcast renderer.
func (h *handlers) renderApp(m domain.Match) []byte {
	b, err := h.tpl.render("app", newAppView(m))
	if err != nil {
		h.log.Error("render app", "error", err)
	}
	return b
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	id := ensureSessionCookie(w, r)
	m, err := h.svc.Snapshot(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	_, noCookie := r.Cookie(dismissedCookie)
	showInstall := errors.Is(noCookie, http.ErrNoCookie)
	b, err := h.tpl.render("page", pageView{App: newAppView(m), ShowInstall: showInstall})
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// apply runs one transition for the caller's session and answers with the
// fresh #app fragment, or a redirect home for plain form posts.
func (h *handlers) apply(w http.ResponseWriter, r *http.Request, actions ...app.Action) {
	id := ensureSessionCookie(w, r)
	for _, a := range actions {
		if _, _, err := h.svc.Apply(r.Context(), id, a); err != nil {
			h.fail(w, err)
			return
		}
	}
	if r.Header.Get("HX-Request") != "true" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	m, err := h.svc.Snapshot(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(h.renderApp(m))
}

func (h *handlers) setName(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	mark, _ := domain.ParseMark(r.Form.Get("mark"))
	name := r.Form.Get("name_" + strings.ToLower(mark.String()))
	h.apply(w, r, app.SetName(mark, name))
}

func (h *handlers) setRounds(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	h.apply(w, r, app.SetRounds(r.Form.Get("rounds")))
}

// start also takes the setup fields so the form works without htmx.
func (h *handlers) start(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	var actions []app.Action
	if v, ok := r.Form["name_x"]; ok {
		actions = append(actions, app.SetName(domain.X, v[0]))
	}
	if v, ok := r.Form["name_o"]; ok {
		actions = append(actions, app.SetName(domain.O, v[0]))
	}
	if v, ok := r.Form["rounds"]; ok {
		actions = append(actions, app.SetRounds(v[0]))
	}
	h.apply(w, r, append(actions, app.Start())...)
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		i = -1
	}
	h.apply(w, r, app.Move(i))
}

func (h *handlers) nextRound(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, app.NextRound())
}

func (h *handlers) reset(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, app.Reset())
}

func (h *handlers) backToSetup(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, app.BackToSetup())
}

func (h *handlers) dismissInstall(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     dismissedCookie,
		Value:    "true",
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
	if r.Header.Get("HX-Request") != "true" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type webManifest struct {
	Name            string `json:"name"`
	ShortName       string `json:"short_name"`
	StartURL        string `json:"start_url"`
	Display         string `json:"display"`
	BackgroundColor string `json:"background_color"`
	ThemeColor      string `json:"theme_color"`
}

func (h *handlers) manifest(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/manifest+json")
	_ = json.NewEncoder(w).Encode(webManifest{
		Name:            "Tic Tac Toe",
		ShortName:       "TicTacToe",
		StartURL:        "/",
		Display:         "standalone",
		BackgroundColor: "#6366f1",
		ThemeColor:      "#4f46e5",
	})
}

func (h *handlers) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (h *handlers) fail(w http.ResponseWriter, err error) {
	h.log.Error("request failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

var heartbeatInterval = 15 * time.Second

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	id := ensureSessionCookie(w, r)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	// Non-EventSource requests only get the headers
	if r.Header.Get("Accept") != "text/event-stream" {
		w.WriteHeader(http.StatusOK)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx := r.Context()
	ch, unsub := h.svc.Subscribe(ctx, id)
	defer unsub()
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case b, ok := <-ch:
			if !ok {
				return
			}
			writeEvent(w, "app", b)
			flusher.Flush()
		}
	}
}

// writeEvent frames a payload as one SSE event, one data line per line.
func writeEvent(w io.Writer, name string, payload []byte) {
	_, _ = fmt.Fprintf(w, "event: %s\n", name)
	for _, line := range strings.Split(string(payload), "\n") {
		_, _ = fmt.Fprintf(w, "data: %s\n", line)
	}
	_, _ = io.WriteString(w, "\n")
}
