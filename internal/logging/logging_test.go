package logging

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogData(t *testing.T) {
	logger, _ := test.NewNullLogger()
	logData := NewLogData(logger)

	logData.AddData("accountID", "abc")
	logData.AddTiming("firstMs")()
	add := logData.AddToExistingTiming("totalMs")
	add()
	logData.AddToExistingTiming("totalMs")()

	entry := logData.Log()
	assert.Equal(t, "abc", entry.Data["accountID"])
	assert.Contains(t, entry.Data, "firstMs")
	assert.Contains(t, entry.Data, "totalMs")
}

func TestLogDataContext(t *testing.T) {
	assert.Nil(t, GetLogData(context.Background()))

	logger, _ := test.NewNullLogger()
	logData := NewLogData(logger)
	ctx := WithLogData(context.Background(), logData)
	assert.Same(t, logData, GetLogData(ctx))
}

func TestSetLevel(t *testing.T) {
	logger := SetupLogging()
	assert.Equal(t, logrus.InfoLevel, logger.Level)

	require.NoError(t, SetLevel(logger, "debug"))
	assert.Equal(t, logrus.DebugLevel, logger.Level)
	require.NoError(t, SetLevel(logger, ""))
	assert.Equal(t, logrus.DebugLevel, logger.Level)
	assert.Error(t, SetLevel(logger, "loud"))
}

func TestLoggingWrapper(t *testing.T) {
	logger, hook := test.NewNullLogger()

	ok := LoggingWrapper("Status", logger, func(w http.ResponseWriter, r *http.Request, logData *LogData) error {
		assert.Same(t, logData, GetLogData(r.Context()))
		logData.AddData("accounts", 2)
		w.WriteHeader(http.StatusOK)
		return nil
	})
	ok(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/status", nil))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "Handler.Status.Complete", entry.Message)
	assert.Equal(t, 2, entry.Data["accounts"])
	assert.Contains(t, entry.Data, "duration")

	failing := LoggingWrapper("Status", logger, func(http.ResponseWriter, *http.Request, *LogData) error {
		return errors.New("store down")
	})
	failing(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/status", nil))

	entry = hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "Handler.Status.Error", entry.Message)
}

func TestHumaMiddleware(t *testing.T) {
	logger, hook := test.NewNullLogger()
	_, api := humatest.New(t)
	api.UseMiddleware(HumaMiddleware(logger))

	type output struct {
		Body struct {
			Message string `json:"message"`
		}
	}
	huma.Register(api, huma.Operation{
		OperationID: "ping",
		Method:      http.MethodGet,
		Path:        "/ping",
	}, func(ctx context.Context, _ *struct{}) (*output, error) {
		GetLogData(ctx).AddData("pinged", true)
		out := &output{}
		out.Body.Message = "pong"
		return out, nil
	})
	huma.Register(api, huma.Operation{
		OperationID: "broken",
		Method:      http.MethodGet,
		Path:        "/broken",
	}, func(ctx context.Context, _ *struct{}) (*output, error) {
		return nil, huma.Error500InternalServerError("boom")
	})

	resp := api.Get("/ping")
	assert.Equal(t, http.StatusOK, resp.Code)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "Handler.ping.Complete", entry.Message)
	assert.Equal(t, true, entry.Data["pinged"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])

	resp = api.Get("/broken")
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	entry = hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "Handler.broken.Error", entry.Message)
}
