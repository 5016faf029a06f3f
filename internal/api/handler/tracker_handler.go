package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/healthlog/internal/api/metrics"
	"github.com/sirpyerre/healthlog/internal/core/domain"
	"github.com/sirpyerre/healthlog/internal/core/ports"
)

// IdempotencyKeyHeader lets clients retry a POST without logging it twice.
const IdempotencyKeyHeader = "Idempotency-Key"

const maxFormBytes = 16 << 10

// TrackerHandler serves the four metric pages.
type TrackerHandler struct {
	service ports.TrackerService
	guard   ports.SubmissionGuard
	log     zerolog.Logger
}

// NewTrackerHandler wires the tracker endpoints. guard may be nil, in which
// case Idempotency-Key is ignored.
func NewTrackerHandler(service ports.TrackerService, guard ports.SubmissionGuard, log zerolog.Logger) *TrackerHandler {
	return &TrackerHandler{service: service, guard: guard, log: log}
}

// History handles GET /v1/:metric.
//
// @Summary      Recent entries for a metric
// @Tags         tracker
// @Produce      json
// @Security     BearerAuth
// @Param        metric  path      string  true  "bmi, water, sleep or calories"
// @Success      200     {object}  historyResponse
// @Failure      401     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /v1/{metric} [get]
func (h *TrackerHandler) History(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	metric, err := domain.ParseMetric(c.Param("metric"))
	if err != nil {
		return toHTTPError(err)
	}

	history, err := h.service.History(c.Request().Context(), userID, metric)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, historyResponse{Metric: metric, History: history})
}

// Submit handles POST /v1/:metric. A stored entry answers 201, advice for an
// out of range value answers 200 with no entry, and unparseable input 422.
//
// @Summary      Log a measurement
// @Tags         tracker
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Security     BearerAuth
// @Param        metric           path      string  true   "bmi, water, sleep or calories"
// @Param        Idempotency-Key  header    string  false  "Drops repeated submissions with the same key"
// @Success      201              {object}  submissionResponse
// @Success      200              {object}  submissionResponse
// @Failure      401              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Failure      409              {object}  submissionResponse
// @Failure      422              {object}  submissionResponse
// @Router       /v1/{metric} [post]
func (h *TrackerHandler) Submit(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	metric, err := domain.ParseMetric(c.Param("metric"))
	if err != nil {
		return toHTTPError(err)
	}
	ctx := c.Request().Context()

	form, err := readForm(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	var claimed string
	if key := strings.TrimSpace(c.Request().Header.Get(IdempotencyKeyHeader)); key != "" && h.guard != nil {
		guardKey := fmt.Sprintf("%d:%s:%s", userID, metric, key)
		first, err := h.guard.FirstSeen(ctx, guardKey)
		switch {
		case err != nil:
			h.log.Warn().Err(err).Int64("user_id", userID).Msg("idempotency check failed, processing anyway")
		case first:
			claimed = guardKey
		default:
			metrics.SubmissionsRejectedTotal.WithLabelValues(string(metric), metrics.ReasonDuplicate).Inc()
			history, err := h.service.History(ctx, userID, metric)
			if err != nil {
				return toHTTPError(err)
			}
			return c.JSON(http.StatusConflict, submissionResponse{
				Metric:  metric,
				Error:   "duplicate submission",
				History: history,
			})
		}
	}

	sub, err := h.service.Submit(ctx, userID, metric, form)
	if claimed != "" && (err != nil || sub == nil || !sub.Stored()) {
		h.release(ctx, userID, claimed)
	}
	if errors.Is(err, domain.ErrInvalidNumber) && sub != nil {
		metrics.SubmissionsRejectedTotal.WithLabelValues(string(metric), metrics.ReasonInvalidNumber).Inc()
		return c.JSON(http.StatusUnprocessableEntity, toSubmissionResponse(sub))
	}
	if err != nil {
		return toHTTPError(err)
	}

	if !sub.Stored() {
		metrics.SubmissionsRejectedTotal.WithLabelValues(string(metric), metrics.ReasonOutOfRange).Inc()
		return c.JSON(http.StatusOK, toSubmissionResponse(sub))
	}

	metrics.EntriesRecordedTotal.WithLabelValues(string(metric)).Inc()
	if bmi, ok := sub.Entry.(*domain.BMIEntry); ok {
		metrics.BMICategoryTotal.WithLabelValues(string(bmi.Category)).Inc()
	}
	return c.JSON(http.StatusCreated, toSubmissionResponse(sub))
}

// release frees a claimed key when nothing was stored, so the client can
// retry with the same key.
func (h *TrackerHandler) release(ctx context.Context, userID int64, key string) {
	if err := h.guard.Release(context.WithoutCancel(ctx), key); err != nil {
		h.log.Warn().Err(err).Int64("user_id", userID).Msg("idempotency key release failed")
	}
}

func toSubmissionResponse(sub *ports.Submission) submissionResponse {
	return submissionResponse{
		Metric:  sub.Metric,
		Result:  sub.Result,
		Message: sub.Message,
		Error:   sub.ErrorMessage,
		Entry:   sub.Entry,
		History: sub.History,
	}
}

// readForm collects raw field values from a JSON object or an urlencoded or
// multipart form. JSON numbers keep their literal text so parsing stays in
// the evaluator; JSON null counts as a missing field.
func readForm(c echo.Context) (map[string]string, error) {
	req := c.Request()
	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		body, err := io.ReadAll(io.LimitReader(req.Body, maxFormBytes))
		if err != nil {
			return nil, err
		}
		raw := map[string]any{}
		if len(bytes.TrimSpace(body)) > 0 {
			dec := json.NewDecoder(bytes.NewReader(body))
			dec.UseNumber()
			if err := dec.Decode(&raw); err != nil {
				return nil, err
			}
		}

		form := make(map[string]string, len(raw))
		for k, v := range raw {
			switch val := v.(type) {
			case nil:
			case string:
				form[k] = val
			case json.Number:
				form[k] = val.String()
			default:
				form[k] = fmt.Sprint(val)
			}
		}
		return form, nil
	}

	values, err := c.FormParams()
	if err != nil {
		return nil, err
	}
	form := make(map[string]string, len(values))
	for k := range values {
		form[k] = values.Get(k)
	}
	return form, nil
}
