package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"letterchain/internal/api/middleware"
	"letterchain/internal/config"
	"letterchain/internal/logging"
	"letterchain/internal/pipeline"
	"letterchain/internal/textract"
	"letterchain/pkg/models"
)

// GenerateStreamHandler runs the pipeline while streaming stage progress as
// server-sent events. The client receives a `stage` event per transition
// and a final `result` or `error` event carrying the same payloads the
// plain endpoint returns.
func GenerateStreamHandler(cfg *config.Config, wf *pipeline.Workflow, ts *textract.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := middleware.RequestID(c)
		logger := logging.GetGlobalLogger().WithField("request_id", requestID)

		req, errResp := resolveGenerateRequest(c, cfg, ts, requestID)
		if errResp != nil {
			return c.JSON(http.StatusBadRequest, errResp)
		}

		res := c.Response()
		res.Header().Set(echo.HeaderContentType, "text/event-stream")
		res.Header().Set("Cache-Control", "no-cache")
		res.Header().Set("Connection", "keep-alive")
		res.WriteHeader(http.StatusOK)

		logger.Info("Streaming generation request received")

		ctx, cancel := pipelineContext(c, cfg)
		defer cancel()

		result := wf.RunWithEvents(ctx, pipeline.State{
			ResumeText: req.ResumeText,
			JobText:    req.JobText,
			Tone:       req.Tone,
		}, func(ev pipeline.Event) {
			writeSSE(c, "stage", ev)
		})

		switch result.Outcome {
		case pipeline.OutcomeSuccess:
			writeSSE(c, "result", successResponse(result, requestID))
		case pipeline.OutcomeInputRejected:
			writeSSE(c, "error", models.InputRejectedResponse{
				ValidationFailed: true,
				ValidationError:  result.Rejection(),
				RequestID:        requestID,
				Timestamp:        time.Now(),
			})
		default:
			writeSSE(c, "error", models.ErrorResponse{
				Error:     "generation_failed",
				Message:   "Cover letter generation failed, please try again",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		return nil
	}
}

// writeSSE emits one SSE frame and flushes it so clients see stage progress
// as it happens
func writeSSE(c echo.Context, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Response(), "event: %s\ndata: %s\n\n", event, data)
	c.Response().Flush()
}
