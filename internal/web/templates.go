package web

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/google/uuid"
	"github.com/jaminalder/tictactoe-rounds/internal/domain"
)

type templates struct {
	set *template.Template
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"lower": func(m domain.Mark) string {
			switch m {
			case domain.X:
				return "x"
			case domain.O:
				return "o"
			}
			return ""
		},
	}
}

func loadTemplates() *templates {
	set := template.Must(template.New("page").Funcs(funcs()).Parse(pageTemplate))
	template.Must(set.New("app").Parse(appTemplate))
	template.Must(set.New("setup").Parse(setupTemplate))
	template.Must(set.New("game").Parse(gameTemplate))
	template.Must(set.New("board").Parse(boardTemplate))
	template.Must(set.New("status").Parse(statusTemplate))
	template.Must(set.New("install").Parse(installTemplate))
	return &templates{set: set}
}

func (t *templates) render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.set.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Data models for templates

type cellView struct {
	Index    int
	Mark     domain.Mark
	Playable bool
	Win      bool
}

type appView struct {
	Match   domain.Match
	Outcome domain.Outcome
	Cells   [domain.BoardSize]cellView
	X, O    domain.PlayerProfile
	Draw    bool
	// Name of the winner, or of the player to move while undecided.
	Name string
	// Champion leads on round wins; empty on a tied match.
	Champion domain.PlayerProfile
}

type pageView struct {
	App         appView
	ShowInstall bool
}

func newAppView(m domain.Match) appView {
	out := m.Outcome()
	v := appView{Match: m, Outcome: out, X: m.Players.X, O: m.Players.O, Draw: out.Kind == domain.Draw}
	for i, c := range m.Board {
		v.Cells[i] = cellView{Index: i, Mark: c, Playable: m.Playable(i), Win: out.InLine(i)}
	}
	if out.Kind == domain.Win {
		v.Name = m.Players.Of(out.Winner).Name
	} else {
		v.Name = m.Players.Of(m.Turn).Name
	}
	if leader := m.Leader(); leader != domain.Empty {
		v.Champion = m.Players.Of(leader)
	}
	return v
}

const pageTemplate = `<!doctype html><html><head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1"/>
<title>Tic Tac Toe</title>
<link rel="manifest" href="/manifest.webmanifest"/>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
</head><body>
<div hx-ext="sse" hx-sse="connect:/events">
  <div id="app" hx-sse="swap:app">{{template "app" .App}}</div>
</div>
{{if .ShowInstall}}{{template "install" .}}{{end}}
</body></html>`

const appTemplate = `{{if .Match.Started}}{{template "game" .}}{{else}}{{template "setup" .}}{{end}}`

const setupTemplate = `
<section class="setup">
  <h1>Tic Tac Toe Game Setup</h1>
  <form action="/start" method="post" hx-post="/start" hx-target="#app">
    <label>Player X Name
      <input type="text" name="name_x" value="{{.X.Name}}" placeholder="Enter name"
        hx-post="/setup/name" hx-trigger="change" hx-vals='{"mark":"X"}' hx-target="#app">
    </label>
    <label>Player O Name
      <input type="text" name="name_o" value="{{.O.Name}}" placeholder="Enter name"
        hx-post="/setup/name" hx-trigger="change" hx-vals='{"mark":"O"}' hx-target="#app">
    </label>
    <label>Number of Rounds (Max 10)
      <input type="number" name="rounds" min="1" max="10" value="{{.Match.Config.TotalRounds}}"
        hx-post="/setup/rounds" hx-trigger="change" hx-target="#app">
    </label>
    <button type="submit"{{if not .Match.CanStart}} disabled{{end}}>Start Game</button>
  </form>
</section>`

const gameTemplate = `
<section class="game">
  <div class="round">Round {{.Match.Round}} of {{.Match.Config.TotalRounds}}</div>
  <div class="players">
    <div class="player x"><span class="name">{{.X.Name}}</span> <span class="score">🏆 {{.Match.Score.X}}</span></div>
    <div class="player o"><span class="name">{{.O.Name}}</span> <span class="score">🏆 {{.Match.Score.O}}</span></div>
  </div>
  <div class="controls">
    <form action="/back-to-setup" method="post" hx-post="/back-to-setup" hx-target="#app"><button title="Back to Setup">Setup</button></form>
    <form action="/reset" method="post" hx-post="/reset" hx-target="#app"><button title="Reset Game">Reset</button></form>
  </div>
  {{template "board" .}}
  {{template "status" .}}
</section>`

const boardTemplate = `
<div id="board" class="grid">
  {{range .Cells}}
  <form action="/cells/{{.Index}}" method="post" hx-post="/cells/{{.Index}}" hx-target="#app">
    <button type="submit" class="cell {{lower .Mark}}{{if .Win}} win{{end}}"{{if not .Playable}} disabled{{end}}>{{.Mark}}</button>
  </form>
  {{end}}
</div>`

const statusTemplate = `
<div id="status">
  {{if .Outcome.Decided}}
    {{if .Draw}}<div class="result">It's a Draw!</div>
    {{else}}<div class="result {{lower .Outcome.Winner}}">{{.Name}} Wins!</div>{{end}}
    {{if .Match.CanAdvance}}
    <form action="/next-round" method="post" hx-post="/next-round" hx-target="#app"><button>Next Round</button></form>
    {{end}}
    {{if .Match.Over}}
    <div class="final">Game Over! Final Score:<br>{{.X.Name}}: {{.Match.Score.X}} - {{.O.Name}}: {{.Match.Score.O}}</div>
    {{if .Champion.Name}}<div class="champion {{lower .Champion.Symbol}}">{{.Champion.Name}} wins the match!</div>
    {{else}}<div class="champion">The match is a tie!</div>{{end}}
    {{end}}
  {{else}}
    <div class="turn {{lower .Match.Turn}}">{{.Name}}'s Turn</div>
  {{end}}
</div>`

const installTemplate = `
<div id="install-prompt" hidden>
  <h3>Install Tic Tac Toe</h3>
  <p class="standard">Install this app on your device for a better experience and offline play.</p>
  <p class="ios" hidden>Tap the share button and select "Add to Home Screen"</p>
  <button id="install-accept" class="standard">Install</button>
  <button hx-post="/install/dismiss" hx-target="#install-prompt" hx-swap="outerHTML">Not now</button>
</div>
<script>
(function () {
  var box = document.getElementById("install-prompt");
  if (window.matchMedia("(display-mode: standalone)").matches || navigator.standalone) { return; }
  if (/iPad|iPhone|iPod/.test(navigator.userAgent)) {
    box.querySelectorAll(".standard").forEach(function (e) { e.hidden = true; });
    box.querySelector(".ios").hidden = false;
    box.hidden = false;
    return;
  }
  var deferred = null;
  window.addEventListener("beforeinstallprompt", function (e) {
    e.preventDefault();
    deferred = e;
    box.hidden = false;
  });
  document.getElementById("install-accept").addEventListener("click", function () {
    if (!deferred) { return; }
    deferred.prompt();
    deferred.userChoice.then(function (c) {
      if (c.outcome === "accepted") { htmx.ajax("POST", "/install/dismiss", {target: "#install-prompt", swap: "outerHTML"}); }
    });
  });
})();
</script>`

// Helper to set the session cookie.
func ensureSessionCookie(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	v := uuid.NewString()
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: v, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	return v
}
