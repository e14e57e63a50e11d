package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"letterchain/internal/config"
	"letterchain/internal/llm"
	"letterchain/internal/pipeline"
	"letterchain/internal/textract"
	"letterchain/pkg/models"
)

var testResume = strings.Repeat("Jane Doe, software engineer with Go experience. ", 4)
var testJob = strings.Repeat("Acme Corp seeks a backend engineer with Go skills. ", 4)

// scriptedCompleter answers each pipeline role with a canned response
type scriptedCompleter struct {
	gateVerdict string
}

func (s *scriptedCompleter) Invoke(ctx context.Context, role string, prompt string) (string, error) {
	if role == llm.RoleClassifier {
		return s.gateVerdict, nil
	}
	if role == llm.RoleWriter {
		return "Dear Hiring Manager at Acme Corp,\n\nSincerely, Jane Doe", nil
	}
	switch {
	case strings.Contains(prompt, "resume parser"):
		return `{"name": "Jane Doe", "experience": [], "education": [], "skills": ["Go"]}`, nil
	case strings.Contains(prompt, "job description parser"):
		return `{"title": "Backend Engineer", "company": "Acme Corp", "requirements": [], "responsibilities": [], "qualifications": []}`, nil
	case strings.Contains(prompt, "matching candidate experiences"):
		return `{"matched_experiences": []}`, nil
	}
	return `{"valid": true, "issues": [], "score": 0.9}`, nil
}

func testWorkflow(gateVerdict string) *pipeline.Workflow {
	return pipeline.NewWorkflow(&pipeline.Deps{Models: &scriptedCompleter{gateVerdict: gateVerdict}})
}

func acceptAllGate() string {
	return `{"resume_valid": true, "job_valid": true, "resume_issues": [], "job_issues": []}`
}

func postJSON(t *testing.T, handler echo.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	return rec
}

func TestGenerateHandlerSuccess(t *testing.T) {
	cfg := config.DefaultConfig()
	handler := GenerateHandler(cfg, testWorkflow(acceptAllGate()), textract.NewService(cfg))

	rec := postJSON(t, handler, models.GenerateRequest{
		ResumeText: testResume,
		JobText:    testJob,
		Tone:       models.ToneProfessional,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.CoverLetterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.CoverLetter, "Acme Corp")
	assert.Equal(t, "Acme Corp", resp.JobInfo.Company)
	assert.True(t, resp.GenerationMetadata.ValidationPassed)
	assert.NotEmpty(t, resp.RequestID)
}

func TestGenerateHandlerDefaultsTone(t *testing.T) {
	cfg := config.DefaultConfig()
	handler := GenerateHandler(cfg, testWorkflow(acceptAllGate()), textract.NewService(cfg))

	rec := postJSON(t, handler, map[string]string{
		"resume_text": testResume,
		"job_text":    testJob,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGenerateHandlerRejectsShortInput(t *testing.T) {
	cfg := config.DefaultConfig()
	handler := GenerateHandler(cfg, testWorkflow(acceptAllGate()), textract.NewService(cfg))

	rec := postJSON(t, handler, models.GenerateRequest{
		ResumeText: "too short",
		JobText:    testJob,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation_failed", resp.Error)
	assert.Contains(t, resp.Message, "resume_text")
}

func TestGenerateHandlerRejectsBadTone(t *testing.T) {
	cfg := config.DefaultConfig()
	handler := GenerateHandler(cfg, testWorkflow(acceptAllGate()), textract.NewService(cfg))

	rec := postJSON(t, handler, models.GenerateRequest{
		ResumeText: testResume,
		JobText:    testJob,
		Tone:       models.Tone("sarcastic"),
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "tone must be one of")
}

func TestGenerateHandlerInputRejected(t *testing.T) {
	cfg := config.DefaultConfig()
	gate := `{"resume_valid": false, "job_valid": true, "resume_issues": ["Not a resume"], "job_issues": []}`
	handler := GenerateHandler(cfg, testWorkflow(gate), textract.NewService(cfg))

	rec := postJSON(t, handler, models.GenerateRequest{
		ResumeText: testResume,
		JobText:    testJob,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp models.InputRejectedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.ValidationFailed)
	assert.Equal(t, []string{"Not a resume"}, resp.ValidationError.ResumeIssues)
}

func TestGenerateHandlerMalformedBody(t *testing.T) {
	cfg := config.DefaultConfig()
	handler := GenerateHandler(cfg, testWorkflow(acceptAllGate()), textract.NewService(cfg))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", strings.NewReader("{not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_request")
}

func TestGenerateHandlerMultipartUpload(t *testing.T) {
	cfg := config.DefaultConfig()
	handler := GenerateHandler(cfg, testWorkflow(acceptAllGate()), textract.NewService(cfg))

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fw, err := w.CreateFormFile("resume_file", "resume.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte(testResume))
	require.NoError(t, err)

	require.NoError(t, w.WriteField("job_text", testJob))
	require.NoError(t, w.WriteField("tone", "confident"))
	require.NoError(t, w.Close())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cover_letter")
}

func TestGenerateHandlerMultipartBadExtension(t *testing.T) {
	cfg := config.DefaultConfig()
	handler := GenerateHandler(cfg, testWorkflow(acceptAllGate()), textract.NewService(cfg))

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fw, err := w.CreateFormFile("resume_file", "resume.exe")
	require.NoError(t, err)
	_, err = fw.Write([]byte(testResume))
	require.NoError(t, err)
	require.NoError(t, w.WriteField("job_text", testJob))
	require.NoError(t, w.Close())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_upload")
}

func TestFeedbackHandlerSuccess(t *testing.T) {
	cfg := config.DefaultConfig()
	handler := FeedbackHandler(cfg, testWorkflow(acceptAllGate()))

	payload, err := json.Marshal(models.FeedbackRequest{
		CoverLetter:  "Dear Hiring Manager at Acme Corp, I am writing to apply. Sincerely, Jane",
		UserFeedback: "Please make the letter mention my Go experience.",
		ResumeText:   testResume,
		JobText:      testJob,
	})
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.FeedbackResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Feedback processed successfully", resp.Message)
	assert.NotEmpty(t, resp.ImprovedLetter)
	assert.Equal(t, "Please make the letter mention my Go experience.", resp.FeedbackAnalysis.FeedbackReceived)
}

func TestFeedbackHandlerRejectsShortFeedback(t *testing.T) {
	cfg := config.DefaultConfig()
	handler := FeedbackHandler(cfg, testWorkflow(acceptAllGate()))

	payload, err := json.Marshal(models.FeedbackRequest{
		CoverLetter:  "Dear Hiring Manager at Acme Corp, I am writing to apply. Sincerely, Jane",
		UserFeedback: "fix it",
		ResumeText:   testResume,
		JobText:      testJob,
	})
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateStreamHandlerEmitsStages(t *testing.T) {
	cfg := config.DefaultConfig()
	handler := GenerateStreamHandler(cfg, testWorkflow(acceptAllGate()), textract.NewService(cfg))

	payload, err := json.Marshal(models.GenerateRequest{
		ResumeText: testResume,
		JobText:    testJob,
	})
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate/stream", bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get(echo.HeaderContentType))

	body := rec.Body.String()
	assert.Contains(t, body, "event: stage")
	assert.Contains(t, body, `"stage":"validate_input"`)
	assert.Contains(t, body, "event: result")
	assert.Contains(t, body, "cover_letter")
}
