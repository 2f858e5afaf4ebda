// internal/workers/subscription/validate-subscription/handler_test.go
package validatesubscription

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	cerrors "skinadvisor-workers/internal/common/errors"
	"skinadvisor-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout:       10 * time.Second,
		CacheTTL:      5 * time.Minute,
		FreeScanLimit: 3,
		QuotaTTL:      32 * 24 * time.Hour,
	}
}

func createTestHandler(t *testing.T, db *sql.DB, redisClient *redis.Client, config *Config) *Handler {
	if config == nil {
		config = createTestConfig()
	}
	return NewHandler(config, db, redisClient, logger.NewTestLogger(t))
}

func createSubscription(userID, tier string, isValid bool, expiresAt string) *Subscription {
	return &Subscription{
		UserID:    userID,
		Tier:      tier,
		ExpiresAt: expiresAt,
		IsValid:   isValid,
	}
}

func quotaKey(userID string) string {
	return fmt.Sprintf("scan:quota:%s:%s", userID, time.Now().UTC().Format("2006-01"))
}

func expectSubscriptionLookup(mock sqlmock.Sqlmock, redisMock redismock.ClientMock, sub *Subscription) {
	cacheKey := "sub:" + sub.UserID
	redisMock.ExpectGet(cacheKey).RedisNil()

	rows := sqlmock.NewRows([]string{"user_id", "tier", "expires_at", "is_valid"}).
		AddRow(sub.UserID, sub.Tier, sub.ExpiresAt, sub.IsValid)
	mock.ExpectQuery(`SELECT user_id, tier, expires_at, is_valid FROM user_subscriptions WHERE user_id = \$1`).
		WithArgs(sub.UserID).
		WillReturnRows(rows)

	cachedData, _ := json.Marshal(sub)
	redisMock.ExpectSet(cacheKey, cachedData, 5*time.Minute).SetVal("OK")
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_PaidPlans(t *testing.T) {
	tests := []struct {
		name string
		tier string
	}{
		{name: "valid premium subscription", tier: "premium"},
		{name: "valid pro subscription", tier: "pro"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			redisClient, redisMock := redismock.NewClientMock()

			sub := createSubscription("user-123", tt.tier, true,
				time.Now().Add(24*time.Hour).Format(time.RFC3339))
			expectSubscriptionLookup(mock, redisMock, sub)

			handler := createTestHandler(t, db, redisClient, nil)
			output, err := handler.Execute(context.Background(), &Input{UserID: "user-123"})

			require.NoError(t, err)
			assert.True(t, output.IsValid)
			assert.Equal(t, tt.tier, output.UserPlan)
			assert.Zero(t, output.ScansUsed)
			assert.Zero(t, output.ScanLimit)

			assert.NoError(t, mock.ExpectationsWereMet())
			assert.NoError(t, redisMock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_SubscriptionWithoutExpiration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()

	sub := createSubscription("user-no-expiry", "premium", true, "")
	expectSubscriptionLookup(mock, redisMock, sub)

	handler := createTestHandler(t, db, redisClient, nil)
	output, err := handler.Execute(context.Background(), &Input{UserID: "user-no-expiry"})

	require.NoError(t, err)
	assert.True(t, output.IsValid)
	assert.Equal(t, "premium", output.UserPlan)
}

func TestHandler_Execute_CacheHit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()

	cachedSub := createSubscription("cached-user", "pro", true,
		time.Now().Add(24*time.Hour).Format(time.RFC3339))
	cachedData, _ := json.Marshal(cachedSub)
	redisMock.ExpectGet("sub:cached-user").SetVal(string(cachedData))

	handler := createTestHandler(t, db, redisClient, nil)
	output, err := handler.Execute(context.Background(), &Input{UserID: "cached-user"})

	require.NoError(t, err)
	assert.True(t, output.IsValid)
	assert.Equal(t, "pro", output.UserPlan)

	// Database was never queried on a cache hit.
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

// ==========================
// Free Tier Quota Tests
// ==========================

func TestHandler_Execute_FreeTierConsumesQuota(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()

	sub := createSubscription("free-user", "free", true, "")
	expectSubscriptionLookup(mock, redisMock, sub)

	key := quotaKey("free-user")
	redisMock.ExpectIncr(key).SetVal(1)
	redisMock.ExpectExpire(key, 32*24*time.Hour).SetVal(true)

	handler := createTestHandler(t, db, redisClient, nil)
	output, err := handler.Execute(context.Background(), &Input{UserID: "free-user"})

	require.NoError(t, err)
	assert.True(t, output.IsValid)
	assert.Equal(t, "free", output.UserPlan)
	assert.Equal(t, 1, output.ScansUsed)
	assert.Equal(t, 3, output.ScanLimit)

	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestHandler_Execute_FreeTierSecondScanNoExpire(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()

	sub := createSubscription("free-user", "free", true, "")
	expectSubscriptionLookup(mock, redisMock, sub)

	// Counter already exists, so no EXPIRE call follows the INCR.
	redisMock.ExpectIncr(quotaKey("free-user")).SetVal(2)

	handler := createTestHandler(t, db, redisClient, nil)
	output, err := handler.Execute(context.Background(), &Input{UserID: "free-user"})

	require.NoError(t, err)
	assert.Equal(t, 2, output.ScansUsed)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestHandler_Execute_FreeTierLimitExceeded(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()

	sub := createSubscription("heavy-user", "free", true, "")
	expectSubscriptionLookup(mock, redisMock, sub)

	redisMock.ExpectIncr(quotaKey("heavy-user")).SetVal(4)

	handler := createTestHandler(t, db, redisClient, nil)
	output, err := handler.Execute(context.Background(), &Input{UserID: "heavy-user"})

	require.Error(t, err)
	assert.Nil(t, output)

	var stdErr *cerrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, cerrors.ErrCodeScanLimitExceeded, stdErr.Code)
	assert.False(t, stdErr.Retryable)
}

func TestHandler_Execute_QuotaDisabled(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()

	sub := createSubscription("free-user", "free", true, "")
	expectSubscriptionLookup(mock, redisMock, sub)

	cfg := createTestConfig()
	cfg.FreeScanLimit = 0

	handler := createTestHandler(t, db, redisClient, cfg)
	output, err := handler.Execute(context.Background(), &Input{UserID: "free-user"})

	require.NoError(t, err)
	assert.True(t, output.IsValid)
	assert.Zero(t, output.ScansUsed)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

// ==========================
// Validation Error Tests
// ==========================

func TestHandler_Execute_ValidationErrors(t *testing.T) {
	tests := []struct {
		name         string
		userID       string
		mockDBError  error
		mockDBResult *Subscription
		expectedCode cerrors.ErrorCode
	}{
		{
			name:         "subscription not found",
			userID:       "non-existent-user",
			mockDBError:  sql.ErrNoRows,
			expectedCode: cerrors.ErrCodeSubscriptionInvalid,
		},
		{
			name:         "subscription marked invalid",
			userID:       "invalid-user",
			mockDBResult: createSubscription("invalid-user", "premium", false, ""),
			expectedCode: cerrors.ErrCodeSubscriptionInvalid,
		},
		{
			name:   "expired subscription",
			userID: "expired-user",
			mockDBResult: createSubscription("expired-user", "premium", true,
				time.Now().Add(-24*time.Hour).Format(time.RFC3339)),
			expectedCode: cerrors.ErrCodeSubscriptionExpired,
		},
		{
			name:         "unknown plan",
			userID:       "odd-plan-user",
			mockDBResult: createSubscription("odd-plan-user", "enterprise", true, ""),
			expectedCode: cerrors.ErrCodeSubscriptionInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			redisClient, redisMock := redismock.NewClientMock()

			cacheKey := "sub:" + tt.userID
			redisMock.ExpectGet(cacheKey).RedisNil()

			query := mock.ExpectQuery(`SELECT user_id, tier, expires_at, is_valid FROM user_subscriptions WHERE user_id = \$1`).
				WithArgs(tt.userID)
			if tt.mockDBError != nil {
				query.WillReturnError(tt.mockDBError)
			} else {
				rows := sqlmock.NewRows([]string{"user_id", "tier", "expires_at", "is_valid"}).
					AddRow(tt.mockDBResult.UserID, tt.mockDBResult.Tier,
						tt.mockDBResult.ExpiresAt, tt.mockDBResult.IsValid)
				query.WillReturnRows(rows)

				cachedData, _ := json.Marshal(tt.mockDBResult)
				redisMock.ExpectSet(cacheKey, cachedData, 5*time.Minute).SetVal("OK")
			}

			handler := createTestHandler(t, db, redisClient, nil)
			output, err := handler.Execute(context.Background(), &Input{UserID: tt.userID})

			require.Error(t, err)
			assert.Nil(t, output)

			var stdErr *cerrors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, tt.expectedCode, stdErr.Code)
		})
	}
}

func TestHandler_Execute_DatabaseFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()

	redisMock.ExpectGet("sub:db-down-user").RedisNil()
	mock.ExpectQuery(`SELECT user_id, tier, expires_at, is_valid FROM user_subscriptions WHERE user_id = \$1`).
		WithArgs("db-down-user").
		WillReturnError(fmt.Errorf("connection refused"))

	handler := createTestHandler(t, db, redisClient, nil)
	output, err := handler.Execute(context.Background(), &Input{UserID: "db-down-user"})

	require.Error(t, err)
	assert.Nil(t, output)

	var stdErr *cerrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, cerrors.ErrCodeSubscriptionCheckFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestHandler_Execute_MalformedCacheFallsThrough(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()

	cacheKey := "sub:garbage-cache-user"
	redisMock.ExpectGet(cacheKey).SetVal("{not json")

	sub := createSubscription("garbage-cache-user", "premium", true, "")
	rows := sqlmock.NewRows([]string{"user_id", "tier", "expires_at", "is_valid"}).
		AddRow(sub.UserID, sub.Tier, sub.ExpiresAt, sub.IsValid)
	mock.ExpectQuery(`SELECT user_id, tier, expires_at, is_valid FROM user_subscriptions WHERE user_id = \$1`).
		WithArgs("garbage-cache-user").
		WillReturnRows(rows)

	cachedData, _ := json.Marshal(sub)
	redisMock.ExpectSet(cacheKey, cachedData, 5*time.Minute).SetVal("OK")

	handler := createTestHandler(t, db, redisClient, nil)
	output, err := handler.Execute(context.Background(), &Input{UserID: "garbage-cache-user"})

	require.NoError(t, err)
	assert.True(t, output.IsValid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Error Conversion
// ==========================

// Quota and subscription errors must reach the engine with their own code
// and retry budget; anything unexpected falls back to a retryable wrapper.
func TestConvertToStandardError(t *testing.T) {
	known := cerrors.NewScanLimitExceededError("user-1", 4, 3)
	assert.Same(t, known, convertToStandardError(known))
	assert.Equal(t, 0, cerrors.ConvertToBPMNError(known).Retries)

	dbErr := cerrors.NewSubscriptionCheckFailedError(fmt.Errorf("pool exhausted"))
	assert.Equal(t, 3, cerrors.ConvertToBPMNError(dbErr).Retries)

	wrapped := convertToStandardError(fmt.Errorf("redis down"))
	assert.Equal(t, cerrors.ErrorCode("SUBSCRIPTION_VALIDATION_ERROR"), wrapped.Code)
	assert.True(t, wrapped.Retryable)
	assert.Equal(t, "redis down", wrapped.Details)
}

// ==========================
// Benchmark
// ==========================

func BenchmarkHandler_Execute_CacheHit(b *testing.B) {
	db, _, err := sqlmock.New()
	if err != nil {
		b.Fatal(err)
	}
	defer db.Close()

	cachedSub := createSubscription("bench-user", "pro", true, "")
	cachedData, _ := json.Marshal(cachedSub)

	handler := &Handler{
		config: createTestConfig(),
		db:     db,
		logger: logger.NewNoOpLogger(),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		redisClient, redisMock := redismock.NewClientMock()
		redisMock.ExpectGet("sub:bench-user").SetVal(string(cachedData))
		handler.redis = redisClient

		if _, err := handler.Execute(context.Background(), &Input{UserID: "bench-user"}); err != nil {
			b.Fatal(err)
		}
	}
}
