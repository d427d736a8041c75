package router

import (
	"log"
	"net/http"
	"sort"
	"strings"
	"time"
)

// --- ANSI color codes ---
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

var methodColors = map[string]string{
	http.MethodGet:    colorGreen,
	http.MethodPost:   colorBlue,
	http.MethodPut:    colorYellow,
	http.MethodPatch:  colorYellow,
	http.MethodDelete: colorRed,
}

type HandlerFunc func(http.ResponseWriter, *http.Request)

// Router matches METHOD:PATH exactly first, then wildcard patterns in
// precedence order. "*" matches one segment, a trailing "/*" any rest.
type Router struct {
	mux       *http.ServeMux
	routes    map[string]HandlerFunc // key = METHOD:PATH
	paths     map[string]bool
	wildcards []string // match order
}

func New() *Router {
	r := &Router{
		mux:    http.NewServeMux(),
		routes: make(map[string]HandlerFunc),
		paths:  make(map[string]bool),
	}
	r.mux.HandleFunc("/", r.dispatch)
	return r
}

func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

	h, pathExists := r.lookup(req.Method, req.URL.Path)
	switch {
	case h != nil:
		h(sw, req)
	case pathExists:
		http.Error(sw, "Method Not Allowed", http.StatusMethodNotAllowed)
	default:
		http.Error(sw, "Not Found", http.StatusNotFound)
	}

	logRequest(req, sw.status, start)
}

// lookup finds the handler for method and path. The second result reports
// whether any route matches the path, whatever its method.
func (r *Router) lookup(method, path string) (HandlerFunc, bool) {
	if h, ok := r.routes[method+":"+path]; ok {
		return h, true
	}
	pathExists := r.paths[path]
	for _, pattern := range r.wildcards {
		if !matchWildcardRoute(path, pattern) {
			continue
		}
		if h, ok := r.routes[method+":"+pattern]; ok {
			return h, true
		}
		pathExists = true
	}
	return nil, pathExists
}

// matchWildcardRoute reports whether requestPath fits routePattern
func matchWildcardRoute(requestPath, routePattern string) bool {
	got := strings.Split(strings.Trim(requestPath, "/"), "/")
	want := strings.Split(strings.Trim(routePattern, "/"), "/")

	if isTrailingWildcard(routePattern) {
		want = want[:len(want)-1]
		if len(got) < len(want) {
			return false
		}
		got = got[:len(want)]
	} else if len(got) != len(want) {
		return false
	}

	for i, seg := range want {
		if seg != "*" && seg != got[i] {
			return false
		}
	}
	return true
}

func isTrailingWildcard(pattern string) bool {
	return strings.HasSuffix(pattern, "/*") || pattern == "*"
}

// morePrecise orders exact-segment patterns before trailing-wildcard ones,
// and longer patterns before shorter ones.
func morePrecise(a, b string) bool {
	ta, tb := isTrailingWildcard(a), isTrailingWildcard(b)
	if ta != tb {
		return !ta
	}
	return strings.Count(a, "/") > strings.Count(b, "/")
}

// --- Register paths ---
func (r *Router) register(method, path string, handler HandlerFunc) {
	r.routes[method+":"+path] = handler
	if !r.paths[path] && strings.Contains(path, "*") {
		r.wildcards = append(r.wildcards, path)
		sort.SliceStable(r.wildcards, func(i, j int) bool {
			return morePrecise(r.wildcards[i], r.wildcards[j])
		})
	}
	r.paths[path] = true
}

func (r *Router) GET(path string, handler HandlerFunc)    { r.register(http.MethodGet, path, handler) }
func (r *Router) POST(path string, handler HandlerFunc)   { r.register(http.MethodPost, path, handler) }
func (r *Router) DELETE(path string, handler HandlerFunc) { r.register(http.MethodDelete, path, handler) }

// ServeHTTP dispatches through the router, so it can be mounted or tested directly
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// --- Start server ---
func (r *Router) Start(addr string, readTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.mux,
		ReadHeaderTimeout: readTimeout,
	}
	log.Printf("🚀 Server started on %shttp://localhost%s%s", colorGreen, addr, colorReset)
	return srv.ListenAndServe()
}

// statusWriter remembers the status code for the access log
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func logRequest(req *http.Request, status int, start time.Time) {
	mc, ok := methodColors[req.Method]
	if !ok {
		mc = colorCyan
	}
	log.Printf("%s[%s]%s %s%s%s %s %s%d%s %s(%v)%s",
		colorCyan, start.Format("2006-01-02 15:04:05"), colorReset,
		mc, req.Method, colorReset,
		req.URL.Path,
		statusColor(status), status, colorReset,
		colorBlue, time.Since(start), colorReset,
	)
}

func statusColor(code int) string {
	switch {
	case code < 300:
		return colorGreen
	case code < 400:
		return colorCyan
	case code < 500:
		return colorYellow
	default:
		return colorRed
	}
}
