// internal/workers/subscription/validate-subscription/handler.go
package validatesubscription

import (
	"context"
	"database/sql"
	stderrors "errors"
	"encoding/json"
	"fmt"
	"time"

	cerrors "skinadvisor-workers/internal/common/errors"
	"skinadvisor-workers/internal/common/logger"
	"skinadvisor-workers/internal/common/metrics"
	"skinadvisor-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "validate-subscription"
)

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		redis:  redis,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
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
	sub, err := h.getSubscription(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if !sub.IsValid {
		return nil, cerrors.NewSubscriptionInvalidError("subscription flagged invalid for user " + input.UserID)
	}

	if sub.ExpiresAt != "" {
		exp, parseErr := time.Parse(time.RFC3339, sub.ExpiresAt)
		if parseErr != nil {
			h.logger.Debug("failed to parse expiration date, skipping expiration check", map[string]interface{}{
				"userId":    sub.UserID,
				"expiresAt": sub.ExpiresAt,
				"error":     parseErr.Error(),
			})
		} else if time.Now().After(exp) {
			return nil, cerrors.NewSubscriptionExpiredError("expired at " + sub.ExpiresAt)
		}
	}

	if !validPlans[sub.Tier] {
		return nil, cerrors.NewSubscriptionInvalidError("unknown plan " + sub.Tier)
	}

	output := &Output{IsValid: true, UserPlan: sub.Tier}

	// Free users carry a monthly scan quota; paid plans are unlimited.
	if sub.Tier == models.PlanFree && h.config.FreeScanLimit > 0 {
		used, err := h.consumeQuota(ctx, input.UserID)
		if err != nil {
			return nil, cerrors.NewSubscriptionCheckFailedError(err)
		}
		if used > h.config.FreeScanLimit {
			return nil, cerrors.NewScanLimitExceededError(input.UserID, used, h.config.FreeScanLimit)
		}
		output.ScansUsed = used
		output.ScanLimit = h.config.FreeScanLimit
	}

	h.logger.Info("subscription validated", map[string]interface{}{
		"userId":    input.UserID,
		"userPlan":  output.UserPlan,
		"scansUsed": output.ScansUsed,
	})

	return output, nil
}

var validPlans = map[string]bool{
	models.PlanFree:    true,
	models.PlanPremium: true,
	models.PlanPro:     true,
}

func (h *Handler) getSubscription(ctx context.Context, userID string) (*Subscription, error) {
	cacheKey := "sub:" + userID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var sub Subscription
		if err := json.Unmarshal([]byte(val), &sub); err == nil {
			return &sub, nil
		}
	}

	var sub Subscription
	query := `SELECT user_id, tier, expires_at, is_valid FROM user_subscriptions WHERE user_id = $1`
	err := h.db.QueryRowContext(ctx, query, userID).Scan(
		&sub.UserID, &sub.Tier, &sub.ExpiresAt, &sub.IsValid,
	)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, cerrors.NewSubscriptionInvalidError("no subscription row for user " + userID)
		}
		return nil, cerrors.NewSubscriptionCheckFailedError(err)
	}

	data, _ := json.Marshal(sub)
	h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL)

	return &sub, nil
}

// consumeQuota increments and returns this month's scan counter.
func (h *Handler) consumeQuota(ctx context.Context, userID string) (int, error) {
	key := fmt.Sprintf("scan:quota:%s:%s", userID, time.Now().UTC().Format("2006-01"))

	used, err := h.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if used == 1 {
		h.redis.Expire(ctx, key, h.config.QuotaTTL)
	}

	return int(used), nil
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
		Code:      "SUBSCRIPTION_VALIDATION_ERROR",
		Message:   "Subscription validation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
