package handler

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"visa-advisory-portal/internal/util"
)

// Pinger : a dependency the health check must reach
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingerFunc : adapts a function to Pinger
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	dependencies map[string]Pinger
}

func NewHealthHandler(dependencies map[string]Pinger) *HealthHandler {
	return &HealthHandler{dependencies: dependencies}
}

// Healthz godoc
// @Summary Liveness and dependency check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /healthz [get]
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	results := make(map[string]string, len(h.dependencies))
	errs := make([]error, len(h.dependencies))
	names := make([]string, 0, len(h.dependencies))
	for name := range h.dependencies {
		names = append(names, name)
	}

	var group errgroup.Group
	for i, name := range names {
		i := i
		pinger := h.dependencies[name]
		group.Go(func() error {
			errs[i] = pinger.PingContext(ctx)
			return nil
		})
	}
	_ = group.Wait()

	status := http.StatusOK
	for i, name := range names {
		if errs[i] != nil {
			results[name] = errs[i].Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}
	util.WriteJSON(w, status, results)
}
