package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/guimove/binfit/internal/aws"
	"github.com/guimove/binfit/internal/model"
	"github.com/guimove/binfit/internal/simulation"
	"github.com/guimove/binfit/pkg/binpack"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const maxBodyBytes = 16 << 20

// Handler wires the simulation engine into HTTP handlers.
type Handler struct {
	engine   *simulation.Engine
	resolver aws.CapacityResolver
	maxTasks int
	clock    func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithResolver enables instance_type in requests.
func WithResolver(r aws.CapacityResolver) HandlerOption {
	return func(h *Handler) {
		h.resolver = r
	}
}

// WithMaxTasks bounds the number of tasks accepted per request.
func WithMaxTasks(n int) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.maxTasks = n
		}
	}
}

// NewHandler constructs a Handler with the provided engine.
func NewHandler(engine *simulation.Engine, opts ...HandlerOption) *Handler {
	h := &Handler{
		engine:   engine,
		maxTasks: 100_000,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	})
}

func (h *Handler) handleAlgorithms(w http.ResponseWriter, _ *http.Request) {
	algs := binpack.Algorithms()
	names := make([]string, len(algs))
	for i, a := range algs {
		names[i] = string(a)
	}
	writeJSON(w, http.StatusOK, algorithmsResponse{Algorithms: names})
}

func (h *Handler) handlePack(w http.ResponseWriter, r *http.Request) {
	var req packRequest
	if !h.decode(w, r, &req) {
		return
	}

	alg := binpack.FirstFitDecreasingAlgorithm
	if req.Algorithm != "" {
		parsed, err := binpack.ParseAlgorithm(req.Algorithm)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid algorithm", err.Error())
			return
		}
		alg = parsed
	}

	ws, target, ok := h.prepare(r.Context(), w, req.packTarget)
	if !ok {
		return
	}

	plan, err := h.engine.Run(r.Context(), alg, ws, target)
	if err != nil {
		writePackError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *Handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !h.decode(w, r, &req) {
		return
	}

	algs := binpack.Algorithms()
	if len(req.Algorithms) > 0 {
		algs = make([]binpack.Algorithm, 0, len(req.Algorithms))
		for _, name := range req.Algorithms {
			a, err := binpack.ParseAlgorithm(name)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid algorithm", err.Error())
				return
			}
			algs = append(algs, a)
		}
	}

	ws, target, ok := h.prepare(r.Context(), w, req.packTarget)
	if !ok {
		return
	}

	rankings, err := h.engine.RunAll(r.Context(), algs, ws, target)
	if err != nil {
		writePackError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, compareResponse{Rankings: rankings})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload: "+err.Error())
		return false
	}
	return true
}

// prepare validates the shared request fields and resolves the capacity.
func (h *Handler) prepare(ctx context.Context, w http.ResponseWriter, req packTarget) (model.Workset, simulation.Target, bool) {
	var target simulation.Target

	dim, err := model.ParseDimension(req.Dimension)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid dimension", err.Error())
		return model.Workset{}, target, false
	}
	if len(req.Tasks) > h.maxTasks {
		writeError(w, http.StatusBadRequest, "Too many tasks",
			fmt.Sprintf("%d tasks exceed the limit of %d", len(req.Tasks), h.maxTasks))
		return model.Workset{}, target, false
	}

	ws := model.Workset{
		CollectedAt: h.clock(),
		Source:      "api",
		Dimension:   dim,
		Tasks:       make([]model.Task, len(req.Tasks)),
	}
	for i, t := range req.Tasks {
		if t.Weight == nil {
			writeError(w, http.StatusBadRequest, "Invalid task", fmt.Sprintf("task %d has no weight", i))
			return model.Workset{}, target, false
		}
		name := t.Name
		if name == "" {
			name = fmt.Sprintf("task-%d", i)
		}
		ws.Tasks[i] = model.Task{Name: name, Namespace: t.Namespace, Weight: *t.Weight, Labels: t.Labels, Source: "api"}
	}

	switch {
	case req.Capacity != nil:
		target.Capacity = *req.Capacity
	case req.InstanceType != "":
		if h.resolver == nil {
			writeError(w, http.StatusBadRequest, "Instance types unavailable", "the server has no AWS provider configured; send capacity")
			return model.Workset{}, target, false
		}
		if dim == model.DimensionCustom {
			writeError(w, http.StatusBadRequest, "Invalid dimension", "instance_type requires dimension cpu or memory")
			return model.Workset{}, target, false
		}
		ic, err := h.resolver.Resolve(ctx, req.InstanceType, dim)
		if err != nil {
			if errors.Is(err, aws.ErrUnknownInstanceType) {
				writeError(w, http.StatusBadRequest, "Unknown instance type", err.Error())
			} else {
				writeError(w, http.StatusBadGateway, "Capacity lookup failed", err.Error())
			}
			return model.Workset{}, target, false
		}
		target.Capacity = ic.Capacity()
		target.Instance = ic
	default:
		writeError(w, http.StatusBadRequest, "Missing capacity", "send capacity or instance_type")
		return model.Workset{}, target, false
	}

	return ws, target, true
}

func writePackError(w http.ResponseWriter, err error) {
	var tooLarge *binpack.ItemTooLargeError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusUnprocessableEntity, "Item too large", err.Error(),
			fmt.Sprintf("task %d needs a bin of at least %d", tooLarge.Index, tooLarge.Weight))
	case errors.Is(err, binpack.ErrItemTooLarge):
		writeError(w, http.StatusUnprocessableEntity, "Item too large", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "Request cancelled", err.Error())
	default:
		writeInternalError(w, err)
	}
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type taskRequest struct {
	Name      string            `json:"name"`
	Namespace string            `json:"namespace,omitempty"`
	Weight    *uint64           `json:"weight"`
	Labels    map[string]string `json:"labels,omitempty"`
}

type packTarget struct {
	Capacity     *uint64       `json:"capacity"`
	InstanceType string        `json:"instance_type"`
	Dimension    string        `json:"dimension"`
	Tasks        []taskRequest `json:"tasks"`
}

type packRequest struct {
	Algorithm string `json:"algorithm"`
	packTarget
}

type compareRequest struct {
	Algorithms []string `json:"algorithms"`
	packTarget
}

type compareResponse struct {
	Rankings []model.Ranking `json:"rankings"`
}

type algorithmsResponse struct {
	Algorithms []string `json:"algorithms"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
