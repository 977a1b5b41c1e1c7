package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/moodlist/moodlist/internal/session"
)

// CallbackResult contains the result of an implicit-grant authorization flow.
type CallbackResult struct {
	Token session.Token
	err   error
}

func (c *CallbackResult) Error() error {
	return c.err
}

// CallbackHandler receives the implicit-grant redirect.
//
// The authorization endpoint delivers the token in the URL fragment, which
// never reaches the server; /callback therefore serves a small page whose
// script forwards the fragment to /callback/token as a query string, where
// it is parsed with [session.ParseFragmentParams]. The first completed
// callback wins; the result is delivered exactly once.
type CallbackHandler struct {
	state       string
	mux         *http.ServeMux
	resultChan  chan CallbackResult
	once        sync.Once
	mu          sync.Mutex
	callbackHit bool
}

// NewCallbackHandler creates a handler expecting the given state token.
// The state token should be cryptographically random for CSRF protection.
func NewCallbackHandler(state string) *CallbackHandler {
	h := &CallbackHandler{
		state:      state,
		mux:        http.NewServeMux(),
		resultChan: make(chan CallbackResult, 1),
	}
	h.mux.HandleFunc("/callback", h.relay)
	h.mux.HandleFunc("/callback/token", h.receive)
	return h
}

func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// relay serves the fragment-forwarding page.
func (h *CallbackHandler) relay(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `
<!DOCTYPE html>
<html>
<head><title>Signing in...</title></head>
<body>
    <p>Completing sign in...</p>
    <script>
        window.location.replace("/callback/token?" + window.location.hash.substring(1));
    </script>
</body>
</html>
`)
}

// receive parses the forwarded fragment parameters and completes the flow.
func (h *CallbackHandler) receive(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	params := session.ParseFragmentParams(r.URL.RawQuery)

	if state := params["state"]; state != h.state {
		err := fmt.Errorf("invalid state parameter")
		h.Send(CallbackResult{err: err})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	if errParam := params["error"]; errParam != "" {
		err := fmt.Errorf("authorization failed: %s", errParam)
		h.Send(CallbackResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := session.TokenFromParams(params)
	if err != nil {
		h.Send(CallbackResult{err: err})
		http.Error(w, "Missing access token", http.StatusBadRequest)
		return
	}

	h.Send(CallbackResult{Token: token})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `
<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Authorization Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`)
}

// Send sends the callback result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}
