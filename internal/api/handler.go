package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/board-settings/internal/settings"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler serves a read-only view of the resolved board settings.
type Handler struct {
	board  settings.Settings
	logger *zap.Logger

	clock    func() time.Time
	loadedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler for the provided settings snapshot.
func NewHandler(board settings.Settings, logger *zap.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		board:  board,
		logger: logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.loadedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, newSettingsResponse(h.board, h.loadedAt))
}

func (h *Handler) handleGetTable(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, tableResponse{
		Values:   settings.Table(h.board),
		LoadedAt: h.loadedAt,
	})
}

func (h *Handler) handleGetValue(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	value, ok := settings.Lookup(h.board, name)
	h.logger.Debug("settings lookup",
		zap.String("name", name),
		zap.Bool("found", ok),
		zap.String("request_id", requestIDFromContext(r.Context())),
	)
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown setting", name+" is not part of the board settings")
		return
	}
	writeJSON(w, http.StatusOK, value)
}

func (h *Handler) handleGetHeader(w http.ResponseWriter, r *http.Request) {
	_ = r
	var buf bytes.Buffer
	if err := settings.RenderHeader(&buf, h.board); err != nil {
		writeInternalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type settingsResponse struct {
	Identity      settings.Identity `json:"identity"`
	Button        settings.Button   `json:"button"`
	LED           ledResponse       `json:"led"`
	Brightness    uint8             `json:"brightness"`
	Timing        timingResponse    `json:"timing"`
	Network       networkResponse   `json:"network"`
	CaptivePortal bool              `json:"captivePortal"`
	Timer         string            `json:"timer"`
	Debug         bool              `json:"debug"`
	LoadedAt      time.Time         `json:"loadedAt"`
}

type ledResponse struct {
	Kind    settings.LEDKind `json:"kind"`
	Pins    []int            `json:"pins"`
	Inverse bool             `json:"inverse"`
}

type timingResponse struct {
	HoldIndicationMs int64 `json:"holdIndicationMs"`
	HoldActionMs     int64 `json:"holdActionMs"`
	NetConnectMs     int64 `json:"netConnectMs"`
	CloudConnectMs   int64 `json:"cloudConnectMs"`
	PWMMax           int   `json:"pwmMax"`
}

type networkResponse struct {
	APPort   int    `json:"apPort"`
	APIP     string `json:"apIp"`
	APSubnet string `json:"apSubnet"`
	Prefix   string `json:"prefix,omitempty"`
}

func newSettingsResponse(s settings.Settings, loadedAt time.Time) settingsResponse {
	prefix, _ := s.Network.Prefix()
	resp := settingsResponse{
		Identity:   s.Identity,
		Button:     s.Button,
		Brightness: s.Brightness,
		Timing: timingResponse{
			HoldIndicationMs: s.Timing.HoldIndication.Milliseconds(),
			HoldActionMs:     s.Timing.HoldAction.Milliseconds(),
			NetConnectMs:     s.Timing.NetConnect.Milliseconds(),
			CloudConnectMs:   s.Timing.CloudConnect.Milliseconds(),
			PWMMax:           s.Timing.PWMMax,
		},
		Network: networkResponse{
			APPort:   s.Network.APPort,
			APIP:     s.Network.APIP.String(),
			APSubnet: s.Network.APSubnet.String(),
			Prefix:   prefix,
		},
		CaptivePortal: s.CaptivePortal,
		Timer:         s.Timer.String(),
		Debug:         s.Debug,
		LoadedAt:      loadedAt,
	}
	if s.LED != nil {
		resp.LED = ledResponse{
			Kind:    s.LED.Kind(),
			Pins:    s.LED.Pins(),
			Inverse: settings.Inverse(s.LED),
		}
	}
	return resp
}

type tableResponse struct {
	Values   []settings.Value `json:"values"`
	LoadedAt time.Time        `json:"loadedAt"`
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
