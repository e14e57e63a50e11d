package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"letterchain/internal/api/middleware"
	"letterchain/internal/config"
	"letterchain/internal/logging"
	"letterchain/internal/pipeline"
	"letterchain/internal/textract"
	"letterchain/pkg/models"
	"letterchain/pkg/utils"
)

var validate = validator.New()

// GenerateHandler runs the full generation pipeline. The request is either
// a JSON body with raw text or a multipart form carrying document files;
// both converge on the same validated GenerateRequest.
func GenerateHandler(cfg *config.Config, wf *pipeline.Workflow, ts *textract.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		startTime := time.Now()
		requestID := middleware.RequestID(c)
		logger := logging.GetGlobalLogger().WithField("request_id", requestID)

		req, errResp := resolveGenerateRequest(c, cfg, ts, requestID)
		if errResp != nil {
			return c.JSON(http.StatusBadRequest, errResp)
		}

		logger.Info("Generation request received", map[string]interface{}{
			"resume_chars": len(req.ResumeText),
			"job_chars":    len(req.JobText),
			"tone":         string(req.Tone),
		})

		ctx, cancel := pipelineContext(c, cfg)
		defer cancel()

		result := wf.Run(ctx, pipeline.State{
			ResumeText: req.ResumeText,
			JobText:    req.JobText,
			Tone:       req.Tone,
		})

		switch result.Outcome {
		case pipeline.OutcomeSuccess:
			logger.Info("Generation request completed", map[string]interface{}{
				"iterations":        result.State.Metadata.Iterations,
				"validation_passed": result.State.Metadata.ValidationPassed,
				"processing_time":   utils.FormatDuration(time.Since(startTime)),
			})
			return c.JSON(http.StatusOK, successResponse(result, requestID))

		case pipeline.OutcomeInputRejected:
			logger.Info("Generation request rejected by input gate")
			return c.JSON(http.StatusUnprocessableEntity, models.InputRejectedResponse{
				ValidationFailed: true,
				ValidationError:  result.Rejection(),
				RequestID:        requestID,
				Timestamp:        time.Now(),
			})

		default:
			logger.Error("Generation request failed", map[string]interface{}{"error": errString(result.Err)})
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "generation_failed",
				Message:   "Cover letter generation failed, please try again",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}
	}
}

func successResponse(result *pipeline.Result, requestID string) models.CoverLetterResponse {
	s := result.State
	return models.CoverLetterResponse{
		CoverLetter:        s.CoverLetter,
		JobInfo:            s.JobInfo,
		ResumeInfo:         s.ResumeInfo,
		MatchedExperiences: s.MatchedExperiences,
		GenerationMetadata: s.Metadata,
		RequestID:          requestID,
	}
}

// pipelineContext caps a run at the configured end-to-end deadline
func pipelineContext(c echo.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	deadline := cfg.Pipeline.Deadline
	if deadline <= 0 {
		deadline = 5 * time.Minute
	}
	return context.WithTimeout(c.Request().Context(), deadline)
}

// resolveGenerateRequest normalizes both request encodings into a validated
// GenerateRequest. A non-nil *models.ErrorResponse means the request is bad.
func resolveGenerateRequest(c echo.Context, cfg *config.Config, ts *textract.Service, requestID string) (*models.GenerateRequest, *models.ErrorResponse) {
	var req models.GenerateRequest

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		if errResp := bindMultipart(c, ts, &req, requestID); errResp != nil {
			return nil, errResp
		}
	} else {
		if err := c.Bind(&req); err != nil {
			return nil, &models.ErrorResponse{
				Error:     "invalid_request",
				Message:   "Invalid request format",
				RequestID: requestID,
				Timestamp: time.Now(),
			}
		}
	}

	if req.Tone == "" {
		req.Tone = models.ToneProfessional
	}

	if err := validate.Struct(&req); err != nil {
		return nil, &models.ErrorResponse{
			Error:     "validation_failed",
			Message:   validationMessage(err, cfg.Uploads.MinTextLength),
			RequestID: requestID,
			Timestamp: time.Now(),
		}
	}

	return &req, nil
}

// bindMultipart fills req from form fields, extracting text from uploaded
// files where present. Text fields win over files of the same document.
func bindMultipart(c echo.Context, ts *textract.Service, req *models.GenerateRequest, requestID string) *models.ErrorResponse {
	req.ResumeText = c.FormValue("resume_text")
	req.JobText = c.FormValue("job_text")
	req.Tone = models.Tone(c.FormValue("tone"))

	if req.ResumeText == "" {
		text, err := extractUpload(c, ts, "resume_file")
		if err != nil {
			return uploadError("resume", err, requestID)
		}
		req.ResumeText = text
	}

	if req.JobText == "" {
		text, err := extractUpload(c, ts, "job_file")
		if err != nil {
			return uploadError("job", err, requestID)
		}
		req.JobText = text
	}

	return nil
}

func extractUpload(c echo.Context, ts *textract.Service, field string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", fmt.Errorf("missing %s upload", field)
	}

	if err := ts.ValidateUpload(fh.Filename, fh.Header.Get(echo.HeaderContentType), fh.Size); err != nil {
		return "", err
	}

	data, err := readUpload(fh)
	if err != nil {
		return "", err
	}

	return ts.ExtractText(fh.Filename, data)
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

func uploadError(label string, err error, requestID string) *models.ErrorResponse {
	return &models.ErrorResponse{
		Error:     "invalid_upload",
		Message:   fmt.Sprintf("Could not read %s document: %v", label, err),
		RequestID: requestID,
		Timestamp: time.Now(),
	}
}

func validationMessage(err error, minLength int) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	var parts []string
	for _, fe := range verrs {
		switch fe.Field() {
		case "ResumeText":
			parts = append(parts, fmt.Sprintf("resume_text must be at least %d characters", minLength))
		case "JobText":
			parts = append(parts, fmt.Sprintf("job_text must be at least %d characters", minLength))
		case "Tone":
			parts = append(parts, "tone must be one of professional, emotional, confident, creative")
		default:
			parts = append(parts, fe.Error())
		}
	}
	return strings.Join(parts, "; ")
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
