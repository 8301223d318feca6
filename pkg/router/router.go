package router

import (
	"log"
	"net/http"
	"strings"
	"time"
)

// --- ANSI color codes for request logs ---
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

type HandlerFunc func(http.ResponseWriter, *http.Request)

type route struct {
	method  string
	pattern string
	handler HandlerFunc
}

// Router is a small method+pattern dispatcher with colored request logging.
// Patterns may use "*" as a single-segment wildcard; a trailing "*" matches
// the rest of the path. Routes match in registration order, so register
// specific patterns before generic ones.
type Router struct {
	routes []route
}

func New() *Router {
	return &Router{}
}

func (r *Router) handle(method, pattern string, h HandlerFunc) {
	r.routes = append(r.routes, route{method: method, pattern: pattern, handler: h})
}

func (r *Router) GET(pattern string, h HandlerFunc)    { r.handle(http.MethodGet, pattern, h) }
func (r *Router) POST(pattern string, h HandlerFunc)   { r.handle(http.MethodPost, pattern, h) }
func (r *Router) PUT(pattern string, h HandlerFunc)    { r.handle(http.MethodPut, pattern, h) }
func (r *Router) PATCH(pattern string, h HandlerFunc)  { r.handle(http.MethodPatch, pattern, h) }
func (r *Router) DELETE(pattern string, h HandlerFunc) { r.handle(http.MethodDelete, pattern, h) }

// ServeHTTP dispatches the request and logs method, path, status and
// elapsed time.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	handler, pathKnown := r.match(req.Method, req.URL.Path)
	switch {
	case handler != nil:
		handler(lrw, req)
	case pathKnown:
		http.Error(lrw, "Method Not Allowed", http.StatusMethodNotAllowed)
	default:
		http.Error(lrw, "Not Found", http.StatusNotFound)
	}

	log.Printf("%s[%s]%s %s%s%s %s %s%d%s %s(%v)%s",
		colorCyan, start.Format("2006-01-02 15:04:05"), colorReset,
		methodColor(req.Method), req.Method, colorReset,
		req.URL.Path,
		statusColor(lrw.statusCode), lrw.statusCode, colorReset,
		colorBlue, time.Since(start), colorReset,
	)
}

// match finds a handler for method+path. pathKnown reports whether any
// route matched the path regardless of method.
func (r *Router) match(method, path string) (HandlerFunc, bool) {
	pathKnown := false
	for _, rt := range r.routes {
		if !matchPattern(path, rt.pattern) {
			continue
		}
		pathKnown = true
		if rt.method == method {
			return rt.handler, true
		}
	}
	return nil, pathKnown
}

// matchPattern checks a request path against a pattern with "*" segments.
func matchPattern(path, pattern string) bool {
	if path == pattern {
		return true
	}

	pathSegs := strings.Split(strings.Trim(path, "/"), "/")
	patSegs := strings.Split(strings.Trim(pattern, "/"), "/")

	// A trailing "*" swallows the rest of the path
	if n := len(patSegs); n > 0 && patSegs[n-1] == "*" && len(pathSegs) >= n {
		pathSegs = pathSegs[:n-1]
		patSegs = patSegs[:n-1]
	}

	if len(pathSegs) != len(patSegs) {
		return false
	}
	for i, seg := range patSegs {
		if seg == "*" {
			continue
		}
		if pathSegs[i] != seg {
			return false
		}
	}
	return true
}

// Routes returns the registered "METHOD:pattern" pairs in order.
func (r *Router) Routes() []string {
	keys := make([]string, 0, len(r.routes))
	for _, rt := range r.routes {
		keys = append(keys, rt.method+":"+rt.pattern)
	}
	return keys
}

// --- Start server ---
func (r *Router) Start(addr string) {
	log.Printf("🚀 Server started on %shttp://localhost%s%s", colorGreen, addr, colorReset)
	log.Fatal(http.ListenAndServe(addr, r))
}

// --- Logging response writer to capture status codes ---
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// --- Color helpers ---
func methodColor(method string) string {
	switch method {
	case http.MethodGet:
		return colorGreen
	case http.MethodPost:
		return colorYellow
	case http.MethodPut, http.MethodPatch:
		return colorBlue
	case http.MethodDelete:
		return colorRed
	default:
		return colorReset
	}
}

func statusColor(code int) string {
	switch {
	case code >= 500:
		return colorRed
	case code >= 400:
		return colorYellow
	default:
		return colorGreen
	}
}
