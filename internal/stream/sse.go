// Package stream implements Server-Sent Events (SSE) streaming of simulation
// snapshots. Clients connect via GET /api/v1/stream/snapshots and receive the
// latest snapshot each time the runner publishes one.
//
// SSE message format:
//
//	data: {"type":"snapshot","step":1440,"elapsed_minutes":1440,"bodies":[...]}\n\n
//
// First message is always metadata:
//
//	data: {"type":"metadata","bodies":4,"step":0}\n\n
//
// Snapshot messages are paced by a per-stream rate limiter; intermediate
// snapshots published faster than the limit are skipped, never queued.
// Keep-alive comments (:\n\n) are sent every KeepaliveInterval.
package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/star/gravsim/internal/gravity"
	"github.com/star/gravsim/internal/httputil"
	"github.com/star/gravsim/internal/metrics"
)

// Config holds streaming configuration loaded from environment variables.
type Config struct {
	MaxConcurrentPerIP int           // Max concurrent streams per IP (default: 10).
	MessagesPerSecond  float64       // Snapshot messages per second per stream (default: 2).
	KeepaliveInterval  time.Duration // Keep-alive ping interval (default: 30s).
	TrustProxy         bool          // Use X-Forwarded-For for the per-IP limit.
}

// Handler manages SSE streaming connections.
type Handler struct {
	store   *gravity.SnapshotStore
	config  Config
	limiter *streamLimiter
	logger  *slog.Logger
}

// NewHandler creates a new streaming handler.
func NewHandler(store *gravity.SnapshotStore, config Config, logger *slog.Logger) *Handler {
	if config.MessagesPerSecond <= 0 {
		config.MessagesPerSecond = 2
	}
	if config.KeepaliveInterval <= 0 {
		config.KeepaliveInterval = 30 * time.Second
	}
	if config.MaxConcurrentPerIP <= 0 {
		config.MaxConcurrentPerIP = 10
	}
	return &Handler{
		store:   store,
		config:  config,
		limiter: newStreamLimiter(config.MaxConcurrentPerIP),
		logger:  logger,
	}
}

// HandleSnapshots serves the SSE snapshot stream.
// GET /api/v1/stream/snapshots
func (h *Handler) HandleSnapshots(w http.ResponseWriter, r *http.Request) {
	ip := httputil.ClientIP(r, h.config.TrustProxy)
	if !h.limiter.acquire(ip) {
		metrics.IncStreamErrors("rate_limit")
		h.logger.Warn("stream rate limit exceeded",
			"component", "stream",
			"remote_ip", ip,
			"current_count", h.limiter.count(ip),
		)
		writeJSONError(w, http.StatusTooManyRequests, "too many concurrent streams", "30")
		return
	}

	metrics.IncStreamConnections("connect")
	metrics.IncStreamsActive()

	startTime := time.Now()
	h.logger.Info("stream connected",
		"component", "stream",
		"remote_ip", ip,
		"user_agent", r.Header.Get("User-Agent"),
	)

	defer func() {
		h.limiter.release(ip)
		metrics.IncStreamConnections("disconnect")
		metrics.DecStreamsActive()
		h.logger.Info("stream disconnected",
			"component", "stream",
			"remote_ip", ip,
			"duration_seconds", int(time.Since(startTime).Seconds()),
		)
	}()

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "streaming not supported", "")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering.
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Clear the server's default WriteTimeout for this long-lived connection.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debug("could not clear write deadline", "error", err)
	}

	c := &client{
		w:       w,
		flusher: flusher,
		rc:      rc,
		ip:      ip,
		logger:  h.logger,
	}

	// Jittered retry interval (3-7s) spreads reconnects after a restart.
	retryMs := 3000 + rand.Intn(4000)
	fmt.Fprintf(w, "retry: %d\n\n", retryMs)
	flusher.Flush()

	// Grab the change channel before reading the snapshot so a Set between
	// the two is never missed.
	changed := h.store.Changed()
	latest := h.store.Get()

	if err := c.sendJSON(buildMetadataMessage(latest)); err != nil {
		metrics.IncStreamErrors("send_error")
		h.logger.Warn("stream send error (metadata)", "component", "stream", "remote_ip", ip, "error", err)
		return
	}

	pace := rate.NewLimiter(rate.Limit(h.config.MessagesPerSecond), 1)
	var lastSent int64 = -1
	ctx := r.Context()

	send := func(snap *gravity.Snapshot) bool {
		if snap == nil || snap.Step == lastSent {
			return true
		}
		if err := pace.Wait(ctx); err != nil {
			return false
		}
		// The store may have advanced while waiting; send the newest.
		if newer := h.store.Get(); newer != nil {
			snap = newer
		}
		if snap.Step == lastSent {
			return true
		}
		data, err := json.Marshal(snapshotMessage{Type: "snapshot", Snapshot: snap})
		if err != nil {
			metrics.IncStreamErrors("marshal_error")
			h.logger.Warn("stream marshal error", "component", "stream", "remote_ip", ip, "error", err)
			return true
		}
		if err := c.sendRaw(data); err != nil {
			metrics.IncStreamErrors("send_error")
			h.logger.Warn("stream send error", "component", "stream", "remote_ip", ip, "error", err)
			return false
		}
		lastSent = snap.Step
		return true
	}

	if !send(latest) {
		return
	}

	keepaliveTicker := time.NewTicker(h.config.KeepaliveInterval)
	defer keepaliveTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-changed:
			changed = h.store.Changed()
			if !send(h.store.Get()) {
				return
			}
			keepaliveTicker.Reset(h.config.KeepaliveInterval)

		case <-keepaliveTicker.C:
			if err := c.sendKeepalive(); err != nil {
				metrics.IncStreamErrors("send_error")
				h.logger.Warn("stream keepalive error", "component", "stream", "remote_ip", ip, "error", err)
				return
			}
		}
	}
}

func buildMetadataMessage(snap *gravity.Snapshot) metadataMessage {
	meta := metadataMessage{Type: "metadata", Step: -1}
	if snap != nil {
		meta.Bodies = len(snap.Bodies)
		meta.Step = snap.Step
	}
	return meta
}

func writeJSONError(w http.ResponseWriter, status int, msg, retryAfter string) {
	w.Header().Set("Content-Type", "application/json")
	if retryAfter != "" {
		w.Header().Set("Retry-After", retryAfter)
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// SSE message payload types.

type metadataMessage struct {
	Type   string `json:"type"`
	Bodies int    `json:"bodies"`
	Step   int64  `json:"step"` // -1 before the first snapshot
}

// snapshotMessage prefixes the snapshot's own JSON fields with a type tag.
type snapshotMessage struct {
	Type     string
	Snapshot *gravity.Snapshot
}

func (m snapshotMessage) MarshalJSON() ([]byte, error) {
	body, err := json.Marshal(m.Snapshot)
	if err != nil {
		return nil, err
	}
	// body is a JSON object; splice the type field in front of its fields.
	out := make([]byte, 0, len(body)+len(m.Type)+12)
	out = append(out, `{"type":`...)
	tag, _ := json.Marshal(m.Type)
	out = append(out, tag...)
	if len(body) > 2 {
		out = append(out, ',')
	}
	out = append(out, body[1:]...)
	return out, nil
}
