// internal/workers/scan/analyze-skin/handler.go
package analyzeskin

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	cerrors "skinadvisor-workers/internal/common/errors"
	"skinadvisor-workers/internal/common/logger"
	"skinadvisor-workers/internal/common/metrics"
	"skinadvisor-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "analyze-skin"
)

type Handler struct {
	config *Config
	client *http.Client
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) (*Handler, error) {
	if err := config.Validate(); err != nil {
		return nil, cerrors.NewConfigInvalidError(TaskType, err.Error())
	}

	return &Handler{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, &cerrors.StandardError{
			Code:      "INPUT_PARSING_FAILED",
			Message:   "Failed to parse job variables",
			Details:   err.Error(),
			Retryable: false,
			Timestamp: time.Now().UTC(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ImageBase64 == "" {
		return nil, cerrors.NewVisionAnalysisFailedError(fmt.Errorf("image payload is empty"))
	}

	language := input.Language
	if _, ok := languageNames[language]; !ok {
		language = defaultLanguage
	}

	content, err := h.callVisionAPI(ctx, input.ImageBase64, language)
	if err != nil {
		return nil, err
	}

	raw, err := parseModelContent(content)
	if err != nil {
		return nil, cerrors.NewVisionAnalysisFailedError(err)
	}

	h.logger.Info("skin analysis received", map[string]interface{}{
		"language": language,
		"fields":   len(raw),
	})

	return &Output{RawAnalysis: raw, Language: language}, nil
}

func (h *Handler) callVisionAPI(ctx context.Context, imageBase64, language string) (string, error) {
	body, err := json.Marshal(h.buildRequest(imageBase64, language))
	if err != nil {
		return "", cerrors.NewVisionAnalysisFailedError(err)
	}

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", cerrors.NewVisionAPITimeoutError()
			}
		}

		// The request body is consumed per attempt, so build it fresh.
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost,
			h.config.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
		if reqErr != nil {
			return "", cerrors.NewVisionAnalysisFailedError(reqErr)
		}
		req.Header.Set("Content-Type", "application/json")
		if h.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+h.config.APIKey)
		}

		resp, lastErr = h.client.Do(req)

		if ctx.Err() != nil ||
			stderrors.Is(lastErr, context.DeadlineExceeded) ||
			stderrors.Is(lastErr, context.Canceled) {
			return "", cerrors.NewVisionAPITimeoutError()
		}

		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", cerrors.NewVisionAPITimeoutError()
		}
		return "", cerrors.NewVisionAnalysisFailedError(lastErr)
	}
	if resp == nil {
		return "", cerrors.NewVisionAnalysisFailedError(fmt.Errorf("no successful response after retries"))
	}
	defer resp.Body.Close()

	var apiResponse chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", cerrors.NewVisionAnalysisFailedError(fmt.Errorf("decode response: %w", err))
	}
	if len(apiResponse.Choices) == 0 {
		return "", cerrors.NewVisionAnalysisFailedError(fmt.Errorf("response has no choices"))
	}

	return apiResponse.Choices[0].Message.Content, nil
}

func (h *Handler) buildRequest(imageBase64, language string) *chatRequest {
	return &chatRequest{
		Model: h.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: buildSystemPrompt(language)},
			{Role: "user", Content: []contentPart{
				{Type: "text", Text: "Please analyze this facial skin image and provide the skin analysis in JSON format."},
				{Type: "image_url", ImageURL: &imageURL{URL: "data:image/jpeg;base64," + imageBase64}},
			}},
		},
		ResponseFormat: &formatSpec{Type: "json_object"},
	}
}

func buildSystemPrompt(language string) string {
	langName := languageNames[language]
	if langName == "" {
		langName = languageNames[defaultLanguage]
	}

	return fmt.Sprintf(`You are an expert dermatology AI assistant specialized in cosmetic skin analysis.
You analyze facial skin photos to identify skin type and common cosmetic concerns.

IMPORTANT DISCLAIMER: This is for cosmetic guidance only, NOT medical diagnosis.

Respond in %[1]s language.

Analyze the provided facial image and return a JSON response with this exact structure:
{
    "skin_type": "oily" | "dry" | "combination" | "normal" | "sensitive",
    "skin_type_confidence": 0.0-1.0,
    "skin_metrics": {
        "tone_uniformity": {"score": 1-100, "why": "brief reason in %[1]s"},
        "texture_smoothness": {"score": 1-100, "why": "brief reason in %[1]s"},
        "hydration_appearance": {"score": 1-100, "why": "brief reason in %[1]s"},
        "pore_visibility": {"score": 1-100, "why": "brief reason in %[1]s"},
        "redness_level": {"score": 1-100, "why": "brief reason in %[1]s"}
    },
    "strengths": [
        {"name": "Strength name", "description": "brief description in %[1]s", "confidence": 0.0-1.0}
    ],
    "issues": [
        {
            "name": "Issue name (e.g., acne, dark spots, wrinkles, redness, large pores, dehydration, uneven tone)",
            "severity": 1-10,
            "confidence": 0.0-1.0,
            "description": "Brief description in %[1]s",
            "why_this_result": "What in the image led to this finding, in %[1]s"
        }
    ],
    "recommendations": ["List of 3-5 general skincare recommendations in %[1]s"]
}

Only return the JSON, no additional text.`, langName)
}

// parseModelContent tolerates markdown code fences around the JSON body.
func parseModelContent(content string) (models.RawModelOutput, error) {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	var raw models.RawModelOutput
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return nil, fmt.Errorf("model returned non-JSON content: %w", err)
	}
	return raw, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, jobErr error) {
	stdErr := convertToStandardError(jobErr)
	bpmnErr := cerrors.ConvertToBPMNError(stdErr)

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    bpmnErr.Code,
		"errorMessage": bpmnErr.Message,
		"retryable":    bpmnErr.Retryable,
		"retries":      bpmnErr.Retries,
		"category":     cerrors.GetErrorCategory(stdErr.Code),
	})
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, bpmnErr.Code).Inc()

	failCmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(bpmnErr.Retries)).
		ErrorMessage(fmt.Sprintf("[%s] %s", bpmnErr.Code, bpmnErr.Message))

	varCmd, varErr := failCmd.VariablesFromMap(bpmnErr.ToErrorVariables())
	if varErr != nil {
		h.logger.Error("failed to set error variables, sending without them", map[string]interface{}{
			"error": varErr.Error(),
		})
		if _, err := failCmd.Send(context.Background()); err != nil {
			h.logger.Error("failed to fail job", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return
	}
	if _, err := varCmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to fail job", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func convertToStandardError(err error) *cerrors.StandardError {
	var stdErr *cerrors.StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &cerrors.StandardError{
		Code:      "SKIN_ANALYSIS_ERROR",
		Message:   "Skin analysis failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
