package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"stagehand/internal/app/ports"
	"stagehand/internal/app/replay"
	"stagehand/internal/app/schedule"
	"stagehand/internal/app/status"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// SimControl is the mutating surface of the host. Implementations serialize
// calls against the tick loop.
type SimControl interface {
	StartAction(ctx context.Context, actionID string, memberIDs []string) (string, error)
	CancelAction(ctx context.Context, memberID string)
	Pause()
	Resume()
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

type Handler struct {
	Sim      SimControl
	StatusUC status.UseCase
	ReplayUC replay.UseCase
	KPI      kpiSnapshotProvider
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	troupe := s.Group("/api/troupe")
	troupe.POST("/action/start", h.startAction)
	troupe.POST("/action/cancel", h.cancelAction)
	troupe.GET("/status", h.status)
	troupe.GET("/replay", h.replay)
	troupe.POST("/pause", h.pause)
	troupe.POST("/resume", h.resume)

	s.GET("/ops/kpi", h.kpi)
}

type startActionRequest struct {
	ActionID  string   `json:"action_id"`
	MemberIDs []string `json:"member_ids"`
}

type cancelActionRequest struct {
	MemberID string `json:"member_id"`
}

func (h Handler) startAction(c context.Context, ctx *app.RequestContext) {
	var body startActionRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if body.ActionID == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "missing_action_id", "action_id is required")
		return
	}

	groupID, err := h.Sim.StartAction(c, body.ActionID, body.MemberIDs)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]string{"group_id": groupID})
}

func (h Handler) cancelAction(c context.Context, ctx *app.RequestContext) {
	var body cancelActionRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if body.MemberID == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "missing_member_id", "member_id is required")
		return
	}

	h.Sim.CancelAction(c, body.MemberID)
	ctx.JSON(consts.StatusOK, map[string]bool{"ok": true})
}

func (h Handler) status(c context.Context, ctx *app.RequestContext) {
	resp, err := h.StatusUC.Execute(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) replay(c context.Context, ctx *app.RequestContext) {
	limit := 0
	if raw := string(ctx.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeErrorBody(ctx, consts.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = parsed
	}

	resp, err := h.ReplayUC.Execute(c, replay.Request{Limit: limit})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) pause(_ context.Context, ctx *app.RequestContext) {
	h.Sim.Pause()
	ctx.JSON(consts.StatusOK, map[string]bool{"paused": true})
}

func (h Handler) resume(_ context.Context, ctx *app.RequestContext) {
	h.Sim.Resume()
	ctx.JSON(consts.StatusOK, map[string]bool{"paused": false})
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, schedule.ErrUnknownAction):
		writeErrorBody(ctx, consts.StatusNotFound, "unknown_action", err.Error())
	case errors.Is(err, schedule.ErrMemberCount):
		writeErrorBody(ctx, consts.StatusBadRequest, "member_count_out_of_range", err.Error())
	case errors.Is(err, schedule.ErrMemberUnavailable):
		writeErrorBody(ctx, consts.StatusConflict, "member_unavailable", err.Error())
	case errors.Is(err, schedule.ErrInsufficientFunds):
		writeInsufficientFunds(ctx, err)
	case errors.Is(err, replay.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeInsufficientFunds(ctx *app.RequestContext, err error) {
	body := map[string]any{
		"code":    "insufficient_funds",
		"message": err.Error(),
	}
	var detail *schedule.InsufficientFundsError
	if errors.As(err, &detail) && detail != nil {
		body["details"] = map[string]int{
			"required":  detail.Required,
			"available": detail.Available,
		}
	}
	ctx.JSON(consts.StatusConflict, map[string]any{"error": body})
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
