// internal/workers/scan/persist-scan/handler.go
package persistscan

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	cerrors "skinadvisor-workers/internal/common/errors"
	"skinadvisor-workers/internal/common/logger"
	"skinadvisor-workers/internal/common/metrics"
	"skinadvisor-workers/internal/models"

	"database/sql"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "persist-scan"
)

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	es     *elasticsearch.Client
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redisClient *redis.Client, es *elasticsearch.Client, log logger.Logger) (*Handler, error) {
	if err := config.Validate(); err != nil {
		return nil, cerrors.NewConfigInvalidError(TaskType, err.Error())
	}

	return &Handler{
		config: config,
		db:     db,
		redis:  redisClient,
		es:     es,
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
	scanID := uuid.NewString()
	createdAt := time.Now().UTC()

	record := models.ScanRecord{
		ID:        scanID,
		UserID:    input.UserID,
		Language:  input.Language,
		Analysis:  input.Analysis,
		Score:     input.Score,
		DietPlan:  input.DietPlan,
		Routine:   input.Routine,
		CreatedAt: createdAt,
	}

	if err := h.insertScan(ctx, &record); err != nil {
		return nil, cerrors.NewScanPersistFailedError(err)
	}

	// Cache and index are best-effort: the scan row is the source of truth.
	h.cacheScan(ctx, &record)
	h.indexScan(ctx, &record)

	h.logger.Info("scan persisted", map[string]interface{}{
		"scanId": scanID,
		"userId": input.UserID,
	})

	return &Output{
		ScanID:    scanID,
		CreatedAt: createdAt.Format(time.RFC3339),
	}, nil
}

func (h *Handler) insertScan(ctx context.Context, record *models.ScanRecord) error {
	analysisJSON, err := json.Marshal(record.Analysis)
	if err != nil {
		return err
	}
	scoreJSON, err := json.Marshal(record.Score)
	if err != nil {
		return err
	}
	dietJSON, err := json.Marshal(record.DietPlan)
	if err != nil {
		return err
	}
	routineJSON, err := json.Marshal(record.Routine)
	if err != nil {
		return err
	}

	query := `INSERT INTO scans (id, user_id, language, analysis, score, diet_plan, routine, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = h.db.ExecContext(ctx, query,
		record.ID, record.UserID, record.Language,
		analysisJSON, scoreJSON, dietJSON, routineJSON,
		record.CreatedAt,
	)
	return err
}

func (h *Handler) cacheScan(ctx context.Context, record *models.ScanRecord) {
	data, err := json.Marshal(record)
	if err != nil {
		return
	}

	key := "scan:detail:" + record.ID
	if err := h.redis.Set(ctx, key, data, h.config.DetailCacheTTL).Err(); err != nil {
		h.logger.Warn("failed to cache scan detail", map[string]interface{}{
			"scanId": record.ID,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) indexScan(ctx context.Context, record *models.ScanRecord) {
	if h.es == nil {
		return
	}

	issueNames := make([]string, 0, len(record.Analysis.Issues))
	for _, issue := range record.Analysis.Issues {
		issueNames = append(issueNames, issue.Name)
	}

	doc := scanDocument{
		ScanID:       record.ID,
		UserID:       record.UserID,
		SkinType:     record.Analysis.SkinType,
		OverallScore: record.Score.Score,
		ScoreLabel:   record.Score.Label,
		IssueNames:   issueNames,
		CreatedAt:    record.CreatedAt.Format(time.RFC3339),
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return
	}

	res, err := h.es.Index(
		h.config.ScanIndex,
		bytes.NewReader(body),
		h.es.Index.WithDocumentID(record.ID),
		h.es.Index.WithContext(ctx),
	)
	if err == nil && res.IsError() {
		err = fmt.Errorf("index response: %s", res.Status())
	}
	if res != nil {
		res.Body.Close()
	}
	if err != nil {
		indexErr := cerrors.NewScanIndexFailedError(record.ID, err)
		h.logger.Warn("failed to index scan for search", map[string]interface{}{
			"scanId": record.ID,
			"error":  indexErr.Error(),
		})
	}
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
		Code:      "SCAN_PERSIST_ERROR",
		Message:   "Scan persistence failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
