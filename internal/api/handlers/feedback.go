package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"letterchain/internal/api/middleware"
	"letterchain/internal/config"
	"letterchain/internal/logging"
	"letterchain/internal/pipeline"
	"letterchain/pkg/models"
	"letterchain/pkg/utils"
)

// FeedbackHandler revises an existing letter based on user feedback. One
// generation and one validation; the user judges the result rather than
// the revision loop.
func FeedbackHandler(cfg *config.Config, wf *pipeline.Workflow) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := middleware.RequestID(c)
		logger := logging.GetGlobalLogger().WithField("request_id", requestID)

		var req models.FeedbackRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "invalid_request",
				Message:   "Invalid request format",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		if req.Tone == "" {
			req.Tone = models.ToneProfessional
		}

		if err := validate.Struct(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "validation_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		logger.Info("Feedback request received", map[string]interface{}{
			"feedback_chars": len(req.UserFeedback),
		})

		ctx, cancel := pipelineContext(c, cfg)
		defer cancel()

		result, err := wf.ProcessFeedback(ctx, pipeline.State{
			ResumeText:   req.ResumeText,
			JobText:      req.JobText,
			Tone:         req.Tone,
			PriorLetter:  req.CoverLetter,
			UserFeedback: req.UserFeedback,
		})
		if err != nil {
			if errors.Is(err, pipeline.ErrFeedbackInput) {
				return utils.NewBadRequestError("A prior cover letter and feedback text are required")
			}
			logger.Error("Feedback processing failed", map[string]interface{}{"error": err.Error()})
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "feedback_failed",
				Message:   "Feedback processing failed, please try again",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		s := result.State
		logger.Info("Feedback request completed", map[string]interface{}{
			"validation_passed": s.Metadata.ValidationPassed,
		})

		return c.JSON(http.StatusOK, models.FeedbackResponse{
			Message:          "Feedback processed successfully",
			ImprovedLetter:   s.CoverLetter,
			FeedbackAnalysis: *s.FeedbackAnalysis,
			RequestID:        requestID,
		})
	}
}
