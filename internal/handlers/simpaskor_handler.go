package handlers

import (
	"github.com/gin-gonic/gin"

	apperrors "bukukas/internal/errors"
	"bukukas/internal/logger"
	"bukukas/internal/simpaskor"
)

// SimpaskorHandler proxies the public Simpaskor schedule.
type SimpaskorHandler struct {
	schedule simpaskor.ScheduleFetcher
}

// NewSimpaskorHandler creates a new SimpaskorHandler.
func NewSimpaskorHandler(schedule simpaskor.ScheduleFetcher) *SimpaskorHandler {
	return &SimpaskorHandler{schedule: schedule}
}

// GetSchedule passes the upstream schedule through
// @Summary     Simpaskor schedule
// @Description Successful upstream responses are returned verbatim. Upstream errors keep their status; unreachable upstreams give 500.
// @Tags        simpaskor
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} object "Upstream body"
// @Failure     500 {object} middleware.ErrorResponse "Upstream unreachable"
// @Router      /simpaskor/schedule [get]
func (h *SimpaskorHandler) GetSchedule(c *gin.Context) {
	schedule, err := h.schedule.GetSchedule(c.Request.Context())
	if err != nil {
		logger.Get().Errorw("simpaskor schedule request failed", "error", err.Error())
		respondWithError(c, apperrors.WithMessage(apperrors.ErrUpstream, "Failed to connect to Simpaskor API"))
		return
	}

	if !schedule.OK() {
		logger.Get().Errorw("simpaskor schedule upstream error",
			"status", schedule.StatusCode,
			"body", string(schedule.Body),
		)
		upstream := apperrors.WithStatus(apperrors.ErrUpstream, schedule.StatusCode)
		respondWithError(c, apperrors.WithMessage(upstream, "Failed to fetch schedule from Simpaskor"))
		return
	}

	c.Data(schedule.StatusCode, schedule.ContentType, schedule.Body)
}
