package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"dockerdash/internal/codec"
	"dockerdash/internal/service"
)

// maxSnapshotBody caps POST /api/snapshots request bodies
const maxSnapshotBody = 32 << 20

// GraphHandler handles graph API requests
type GraphHandler struct {
	svc *service.GraphService
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(svc *service.GraphService) *GraphHandler {
	return &GraphHandler{svc: svc}
}

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Register mounts the API routes on mux
func (h *GraphHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/graph", h.GetGraph)
	mux.HandleFunc("GET /api/nodes/{id}", h.GetNode)
	mux.HandleFunc("POST /api/lookup", h.LookupNode)
	mux.HandleFunc("GET /api/export/{format}", h.Export)
	mux.HandleFunc("POST /api/snapshots", h.PostSnapshots)
	mux.HandleFunc("GET /api/snapshots/count", h.CountSnapshots)
	mux.HandleFunc("GET /api/policy", h.GetPolicy)
	mux.HandleFunc("GET /healthz", h.Health)
}

// GetGraph rebuilds the graph from the most recent snapshots and returns it.
// An invalid limit is rejected with 400 and the previous graph is kept.
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	limit, err := h.svc.ParseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		h.writeError(w, "Invalid limit", err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.svc.Rebuild(r.Context(), limit)
	if err != nil {
		log.Printf("Failed to build graph: %v", err)
		h.writeError(w, "Failed to build graph", err.Error(), http.StatusBadGateway)
		return
	}

	h.writeJSON(w, res.Graph, http.StatusOK)
}

// GetNode returns the detail record for a node. Query parameters are echoed
// back for nodes that have no record.
func (h *GraphHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, "Invalid node ID", "Node ID is required", http.StatusBadRequest)
		return
	}

	probe := map[string]any{"id": id}
	for key, values := range r.URL.Query() {
		if key != "id" && len(values) > 0 {
			probe[key] = values[0]
		}
	}

	h.lookup(w, r, id, probe)
}

// LookupNode answers a detail query for a node data object posted by a
// client. The object must carry the node id.
func (h *GraphHandler) LookupNode(w http.ResponseWriter, r *http.Request) {
	var probe map[string]any
	if err := json.NewDecoder(r.Body).Decode(&probe); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	id, _ := probe["id"].(string)
	if id == "" {
		h.writeError(w, "Invalid node ID", "Node ID is required", http.StatusBadRequest)
		return
	}

	h.lookup(w, r, id, probe)
}

func (h *GraphHandler) lookup(w http.ResponseWriter, r *http.Request, id string, probe map[string]any) {
	detail, err := h.svc.Lookup(r.Context(), id, probe)
	if err != nil {
		log.Printf("Failed to look up node %s: %v", id, err)
		h.writeError(w, "Failed to build graph", err.Error(), http.StatusBadGateway)
		return
	}
	h.writeJSON(w, detail, http.StatusOK)
}

// Export writes the current graph verbatim as a download
func (h *GraphHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")
	exporter, err := codec.ExporterFor(format)
	if err != nil {
		h.writeError(w, "Unsupported format", err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename=graph."+exporter.Format())

	if err := h.svc.Export(r.Context(), format, w); err != nil {
		log.Printf("Failed to export %s: %v", format, err)
		// Can't write error response as we already set headers
		return
	}
}

// PostSnapshots stores one or more snapshots from the request body. JSON is
// the default; YAML is accepted with a yaml content type.
func (h *GraphHandler) PostSnapshots(w http.ResponseWriter, r *http.Request) {
	format := "json"
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = "yaml"
	}

	body := http.MaxBytesReader(w, r.Body, maxSnapshotBody)
	result, err := h.svc.Import(r.Context(), body, format)
	if err != nil {
		if result == nil {
			h.writeError(w, "Failed to parse snapshots", err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("Failed to store snapshots: %v", err)
		h.writeError(w, "Failed to store snapshots", err.Error(), http.StatusInternalServerError)
		return
	}

	status := http.StatusCreated
	if result.Stored == 0 {
		status = http.StatusBadRequest
	}
	h.writeJSON(w, result, status)
}

// CountSnapshots returns the number of stored snapshots
func (h *GraphHandler) CountSnapshots(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.SnapshotCount(r.Context())
	if err != nil {
		log.Printf("Failed to count snapshots: %v", err)
		h.writeError(w, "Failed to count snapshots", err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, map[string]int{"count": count}, http.StatusOK)
}

// GetPolicy returns the display policy in effect
func (h *GraphHandler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.Policy(), http.StatusOK)
}

// Health reports whether the last build succeeded
func (h *GraphHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ok"}
	if res := h.svc.Current(); res != nil {
		status["built_at"] = res.BuiltAt
	}
	h.writeJSON(w, status, http.StatusOK)
}

// Helper methods

func (h *GraphHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *GraphHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
