package server

import (
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotboard/internal/auth"
	"github.com/desertthunder/spotboard/internal/shared"
)

const maxFragmentBytes = 8 << 10

// TokenResult is the outcome of a login callback.
type TokenResult struct {
	Token string
	err   error
}

func (r *TokenResult) Error() error {
	return r.err
}

// ImplicitGrantHandler receives the implicit grant redirect.
// Implements the [Handler] interface for registration with a [Router].
type ImplicitGrantHandler struct {
	state      string
	resultChan chan TokenResult
	once       sync.Once
	mu         sync.Mutex
	received   bool
	logger     *log.Logger
}

// NewImplicitGrantHandler creates a handler expecting state back in the redirect fragment.
// The state token should be random for CSRF protection.
func NewImplicitGrantHandler(state string, logger *log.Logger) *ImplicitGrantHandler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &ImplicitGrantHandler{
		state:      state,
		resultChan: make(chan TokenResult, 1),
		logger:     logger,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *ImplicitGrantHandler) Routes() []string {
	return []string{http.MethodGet + " /callback", http.MethodPost + " /token"}
}

// ServeHTTP serves the relay page at /callback and accepts the fragment at /token.
// Method filtering is left to the router.
func (h *ImplicitGrantHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/callback":
		h.serveCallback(w, r)
	case "/token":
		h.serveToken(w, r)
	default:
		http.NotFound(w, r)
	}
}

// serveCallback renders the relay page. Errors reported in the query string end the flow immediately.
func (h *ImplicitGrantHandler) serveCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		if !h.claim() {
			http.Error(w, "Callback already processed", http.StatusBadRequest)
			return
		}
		h.Send(TokenResult{err: fmt.Errorf("%w: %s", shared.ErrAuthFailed, errParam)})
		h.renderPage(w, http.StatusBadRequest, failedPage)
		return
	}

	h.renderPage(w, http.StatusOK, relayPage)
}

func (h *ImplicitGrantHandler) serveToken(w http.ResponseWriter, r *http.Request) {
	if !h.claim() {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxFragmentBytes))
	if err != nil {
		h.Send(TokenResult{err: fmt.Errorf("failed to read fragment: %w", err)})
		http.Error(w, "Failed to read fragment", http.StatusBadRequest)
		return
	}

	token, err := h.parseFragment(string(body))
	if err != nil {
		h.logger.Warn("rejected login callback", "error", err)
		h.Send(TokenResult{err: err})
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.Send(TokenResult{Token: token})
	w.WriteHeader(http.StatusNoContent)
}

// parseFragment validates state and extracts the token.
func (h *ImplicitGrantHandler) parseFragment(fragment string) (string, error) {
	fragment = strings.TrimPrefix(strings.TrimSpace(fragment), "#")
	values, err := url.ParseQuery(fragment)
	if err != nil {
		return "", fmt.Errorf("%w: malformed fragment", shared.ErrAuthFailed)
	}

	if values.Get("state") != h.state {
		return "", fmt.Errorf("%w: invalid state parameter", shared.ErrAuthFailed)
	}
	if errParam := values.Get("error"); errParam != "" {
		return "", fmt.Errorf("%w: %s", shared.ErrAuthFailed, errParam)
	}

	token, ok := auth.ExtractFromFragment(fragment)
	if !ok {
		return "", fmt.Errorf("%w: no access_token in redirect", shared.ErrAuthFailed)
	}
	return token, nil
}

// claim marks the callback as handled, returning false if it already was.
func (h *ImplicitGrantHandler) claim() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.received {
		return false
	}
	h.received = true
	return true
}

// Send sends the result through the channel (only once).
func (h *ImplicitGrantHandler) Send(result TokenResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving login completion.
//
// Channel will receive exactly one result and then be closed.
func (h *ImplicitGrantHandler) Result() <-chan TokenResult {
	return h.resultChan
}

func (h *ImplicitGrantHandler) renderPage(w http.ResponseWriter, status int, page *template.Template) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.Execute(w, nil); err != nil {
		h.logger.Warn("failed to render callback page", "page", page.Name(), "error", err)
	}
}

const pageStyle = `
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        h1.failed { color: #e22134; }
        p { color: #666; margin: 0; }
    </style>`

var relayPage = template.Must(template.New("relay").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>spotboard login</title>` + pageStyle + `
</head>
<body>
    <div class="container">
        <h1 id="title">Finishing login…</h1>
        <p id="detail">Handing the token to spotboard.</p>
    </div>
    <script>
        fetch("/token", { method: "POST", headers: { "Content-Type": "text/plain" }, body: window.location.hash.substring(1) })
            .then(function (resp) {
                var title = document.getElementById("title");
                var detail = document.getElementById("detail");
                if (resp.ok) {
                    title.textContent = "✓ Authorization Successful";
                    detail.textContent = "You can close this window and return to the terminal.";
                } else {
                    title.textContent = "✗ Authorization Failed";
                    title.className = "failed";
                    detail.textContent = "Return to the terminal for details.";
                }
                history.replaceState(null, "", window.location.pathname);
            });
    </script>
</body>
</html>
`))

var failedPage = template.Must(template.New("failed").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>spotboard login</title>` + pageStyle + `
</head>
<body>
    <div class="container">
        <h1 class="failed">✗ Authorization Failed</h1>
        <p>Return to the terminal for details.</p>
    </div>
</body>
</html>
`))
