package auth

import (
	"context"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"
)

// CallbackResult is what Spotify sent back to the redirect URI.
type CallbackResult struct {
	Code  string
	State string
	Error string
}

// CallbackServer is a loopback listener for the OAuth redirect. It accepts
// the first callback and ignores the rest.
type CallbackServer struct {
	server   *http.Server
	listener net.Listener
	result   chan CallbackResult
}

var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head><title>vinyl</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 4em">
{{if .Error}}<h1>Could not connect to Spotify</h1>
<p>{{.Error}}</p>
{{else}}<h1>💿 vinyl is connected</h1>
<p>Head back to the terminal and drop the needle.</p>
{{end}}<p>You can close this window.</p>
</body>
</html>`))

// NewCallbackServer listens on 127.0.0.1:port. Port 0 picks a free port and an
// empty path means /callback.
func NewCallbackServer(port int, path string) (*CallbackServer, error) {
	if path == "" {
		path = "/callback"
	}
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", port, err)
	}

	cs := &CallbackServer{listener: ln, result: make(chan CallbackResult, 1)}
	mux := http.NewServeMux()
	mux.HandleFunc(path, cs.serveCallback)
	cs.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
	return cs, nil
}

// Start serves in the background until Shutdown.
func (cs *CallbackServer) Start() {
	go func() { _ = cs.server.Serve(cs.listener) }()
}

// Wait returns the first callback, or ctx's error if it ends first.
func (cs *CallbackServer) Wait(ctx context.Context) (CallbackResult, error) {
	select {
	case r := <-cs.result:
		return r, nil
	case <-ctx.Done():
		return CallbackResult{}, ctx.Err()
	}
}

// Shutdown stops the listener.
func (cs *CallbackServer) Shutdown(ctx context.Context) error {
	return cs.server.Shutdown(ctx)
}

// Port is the bound port, useful after asking for port 0.
func (cs *CallbackServer) Port() int {
	return cs.listener.Addr().(*net.TCPAddr).Port
}

func (cs *CallbackServer) serveCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res := CallbackResult{Code: q.Get("code"), State: q.Get("state"), Error: q.Get("error")}

	select {
	case cs.result <- res:
	default:
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if res.Error != "" {
		w.WriteHeader(http.StatusBadRequest)
	}
	_ = callbackPage.Execute(w, res)
}
