package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dbehnke/pocsag-nexus/pkg/logger"
	"github.com/dbehnke/pocsag-nexus/pkg/pocsag"
	"github.com/dbehnke/pocsag-nexus/pkg/transmit"
)

// defaultPageLimit caps GET /api/pages responses when the client does
// not ask for a specific page size.
const defaultPageLimit = 50

// API handles REST API endpoints
type API struct {
	deps    Deps
	hub     *WebSocketHub
	logger  *logger.Logger
	started time.Time
}

// NewAPI creates a new API instance
func NewAPI(deps Deps, hub *WebSocketHub, log *logger.Logger) *API {
	return &API{
		deps:    deps,
		hub:     hub,
		logger:  log,
		started: time.Now(),
	}
}

// pageRequest is the POST /api/pages body. Function is a pointer so
// an absent field falls back to the alphanumeric default.
type pageRequest struct {
	Address  uint32 `json:"address"`
	Function *int   `json:"function,omitempty"`
	Message  string `json:"message"`
}

// pageAccepted is the POST /api/pages response body
type pageAccepted struct {
	Address    uint32 `json:"address"`
	Function   int    `json:"function"`
	Words      int    `json:"words"`
	DurationMS int64  `json:"duration_ms"`
}

// HandleStatus handles GET /api/status
func (a *API) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	version, _, _ := GetVersionInfo()
	status := map[string]interface{}{
		"status":         "running",
		"service":        "pocsag-nexus",
		"version":        version,
		"uptime_seconds": int64(time.Since(a.started).Seconds()),
		"baud_rate":      a.deps.Renderer.EffectiveBaudRate(),
		"sample_rate":    a.deps.Renderer.EffectiveSampleRate(),
	}
	if a.deps.Queue != nil {
		status["queue_depth"] = a.deps.Queue.Depth()
	}
	if a.deps.Collector != nil {
		status["pages_total"] = a.deps.Collector.GetPagesEncoded()
		status["pages_rejected"] = a.deps.Collector.GetPagesRejected()
	}
	if a.hub != nil {
		status["ws_clients"] = a.hub.GetClientCount()
	}

	a.writeJSON(w, http.StatusOK, status)
}

// HandlePages handles GET and POST on /api/pages
func (a *API) HandlePages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.handleListPages(w, r)
	case http.MethodPost:
		a.handleSubmitPage(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleListPages returns recent page history, newest first. Plain
// requests get a flat array; page/per_page switch to a paginated
// envelope with the total row count.
func (a *API) handleListPages(w http.ResponseWriter, r *http.Request) {
	if a.deps.Pages == nil {
		a.writeJSON(w, http.StatusOK, []interface{}{})
		return
	}

	q := r.URL.Query()
	if q.Get("page") != "" || q.Get("per_page") != "" {
		pageNum := queryInt(q.Get("page"), 1)
		perPage := queryInt(q.Get("per_page"), defaultPageLimit)

		pages, total, err := a.deps.Pages.GetRecentPaginated(pageNum, perPage)
		if err != nil {
			a.logger.Error("Failed to load page history", logger.Error(err))
			http.Error(w, "Failed to load page history", http.StatusInternalServerError)
			return
		}

		a.writeJSON(w, http.StatusOK, map[string]interface{}{
			"pages":    pages,
			"total":    total,
			"page":     pageNum,
			"per_page": perPage,
		})
		return
	}

	limit := queryInt(q.Get("limit"), defaultPageLimit)
	pages, err := a.deps.Pages.GetRecent(limit)
	if err != nil {
		a.logger.Error("Failed to load page history", logger.Error(err))
		http.Error(w, "Failed to load page history", http.StatusInternalServerError)
		return
	}

	a.writeJSON(w, http.StatusOK, pages)
}

// queryInt parses a positive query parameter, falling back on def
func queryInt(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// handleSubmitPage validates and enqueues a page for transmission
func (a *API) handleSubmitPage(w http.ResponseWriter, r *http.Request) {
	if a.deps.Queue == nil {
		http.Error(w, "Transmitter not running", http.StatusServiceUnavailable)
		return
	}

	var req pageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	function := int(pocsag.DefaultFunction)
	if req.Function != nil {
		function = *req.Function
	}

	msg := pocsag.Message{
		Address:  req.Address,
		Function: pocsag.FunctionCode(function),
		Text:     req.Message,
	}
	if err := msg.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if a.deps.ACL != nil && !a.deps.ACL.Check(msg.Address) {
		a.logger.Warn("Page rejected by address ACL",
			logger.Uint32("address", msg.Address))
		if a.deps.Collector != nil {
			a.deps.Collector.PageRejected("web")
		}
		http.Error(w, "Address denied", http.StatusForbidden)
		return
	}

	if err := a.deps.Queue.Enqueue(transmit.Page{Message: msg, Source: "web"}); err != nil {
		if errors.Is(err, transmit.ErrQueueFull) {
			http.Error(w, "Transmit queue full", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "Transmitter not accepting pages", http.StatusServiceUnavailable)
		return
	}

	if a.deps.Collector != nil {
		a.deps.Collector.SetQueueDepth(a.deps.Queue.Depth())
	}

	words := msg.EncodedLength()
	duration := a.deps.Renderer.Duration(words)

	if a.hub != nil {
		a.hub.BroadcastPageQueued(msg.Address, function, "web")
	}

	a.logger.Info("Page queued from web",
		logger.Uint32("address", msg.Address),
		logger.Int("function", function),
		logger.Int("words", words))

	a.writeJSON(w, http.StatusAccepted, pageAccepted{
		Address:    msg.Address,
		Function:   function,
		Words:      words,
		DurationMS: duration.Milliseconds(),
	})
}

// HandleSubscribers handles GET /api/subscribers, optionally filtered
// to a single address with ?address=N
func (a *API) HandleSubscribers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if a.deps.Subscribers == nil {
		a.writeJSON(w, http.StatusOK, []interface{}{})
		return
	}

	if v := r.URL.Query().Get("address"); v != "" {
		address, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			http.Error(w, "Invalid address", http.StatusBadRequest)
			return
		}

		sub, err := a.deps.Subscribers.GetByAddress(uint32(address))
		if err != nil {
			http.Error(w, "Subscriber not found", http.StatusNotFound)
			return
		}
		a.writeJSON(w, http.StatusOK, sub)
		return
	}

	subs, err := a.deps.Subscribers.GetAll()
	if err != nil {
		a.logger.Error("Failed to load subscribers", logger.Error(err))
		http.Error(w, "Failed to load subscribers", http.StatusInternalServerError)
		return
	}

	a.writeJSON(w, http.StatusOK, subs)
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Warn("Failed to encode API response", logger.Error(err))
	}
}
