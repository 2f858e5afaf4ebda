// internal/workers/scan/build-scan-response/handler.go
package buildscanresponse

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	cerrors "skinadvisor-workers/internal/common/errors"
	"skinadvisor-workers/internal/common/logger"
	"skinadvisor-workers/internal/common/metrics"
	"skinadvisor-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "build-scan-response"
)

type Handler struct {
	config    *Config
	projector *Projector
	logger    logger.Logger
}

func NewHandler(config *Config, log logger.Logger) (*Handler, error) {
	if err := config.Validate(); err != nil {
		return nil, cerrors.NewConfigInvalidError(TaskType, err.Error())
	}

	return &Handler{
		config:    config,
		projector: NewProjector(config),
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
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

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	scan := models.ScanRecord{
		ID:       input.ScanID,
		Analysis: input.Analysis,
		Score:    input.Score,
		DietPlan: input.DietPlan,
		Routine:  input.Routine,
	}

	if IsFullPlan(input.UserPlan) {
		view := h.projector.BuildFull(input.UserPlan, scan, input.Products)
		metrics.ScanResponsesServed.WithLabelValues("full").Inc()

		h.logger.Info("full response built", map[string]interface{}{
			"scanId":   input.ScanID,
			"userPlan": input.UserPlan,
		})

		return &Output{ScanResponse: view, Locked: false}, nil
	}

	view, err := h.projector.BuildRestricted(input.UserPlan, scan, input.Products)
	if err != nil {
		// Invariant violation: raise it, never serve the broken view.
		return nil, err
	}
	metrics.ScanResponsesServed.WithLabelValues("restricted").Inc()

	h.logger.Info("restricted response built", map[string]interface{}{
		"scanId":     input.ScanID,
		"userPlan":   input.UserPlan,
		"issueCount": view.IssueCount,
	})

	return &Output{ScanResponse: view, Locked: true}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
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

// The projector is deterministic, so a failed job is never retried.
func convertToStandardError(err error) *cerrors.StandardError {
	var stdErr *cerrors.StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &cerrors.StandardError{
		Code:      "SCAN_RESPONSE_ERROR",
		Message:   "Scan response build failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
