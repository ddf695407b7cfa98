package admin

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// proxyResponse is the JSON shape returned for one registered proxy.
type proxyResponse struct {
	Name      string `json:"name"`
	Identity  string `json:"identity"`
	Endpoint  string `json:"endpoint"`
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Proxies   int    `json:"proxies"`
	Timestamp string `json:"timestamp"`
}

// NewRouter builds the introspection router over reg: GET /proxies lists
// every registered proxy, GET /proxies/{name} returns one, GET /healthz
// reports liveness plus the registered count.
func NewRouter(reg *Registry) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, healthResponse{
			Status:    "ok",
			Proxies:   len(reg.List()),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.Get("/proxies", func(w http.ResponseWriter, req *http.Request) {
		entries := reg.List()
		resp := make([]proxyResponse, 0, len(entries))
		for _, e := range entries {
			resp = append(resp, toResponse(e))
		}
		writeJSON(w, resp)
	})

	r.Get("/proxies/{name}", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")
		for _, e := range reg.List() {
			if e.Name == name {
				writeJSON(w, toResponse(e))
				return
			}
		}
		writeError(w, http.StatusNotFound, "proxy not found")
	})

	return r
}

func toResponse(e Entry) proxyResponse {
	return proxyResponse{
		Name:      e.Name,
		Identity:  e.Identity.String(),
		Endpoint:  e.Endpoint,
		Connected: e.Connected,
		Error:     e.LastError,
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
