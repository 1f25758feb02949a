package bookster

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPStore reads settings from a remote admin API that answers
// GET {base}/settings/{key} with {"key": "...", "value": {...}}.
type HTTPStore struct {
	client *resty.Client
}

type settingResponse struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

func NewHTTPStore(baseURL, token string, retryCount int) *HTTPStore {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetLogger(disableLogger{}).
		SetRetryCount(retryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})
	if token != "" {
		client.SetAuthToken(token)
	}
	return &HTTPStore{client: client}
}

func (s *HTTPStore) Get(ctx context.Context, key string) ([]byte, error) {
	var out settingResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/settings/" + url.PathEscape(key))
	if err != nil {
		return nil, fmt.Errorf("fetch setting %s: %w", key, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrPromptNotFound
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch setting %s: status %d", key, resp.StatusCode())
	}
	if len(out.Value) == 0 || string(out.Value) == "null" {
		return nil, ErrPromptNotFound
	}
	return out.Value, nil
}

func (s *HTTPStore) Set(ctx context.Context, key string, value []byte) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(settingResponse{Key: key, Value: value}).
		Put("/settings/" + url.PathEscape(key))
	if err != nil {
		return fmt.Errorf("store setting %s: %w", key, err)
	}
	if resp.IsError() {
		return fmt.Errorf("store setting %s: status %d", key, resp.StatusCode())
	}
	return nil
}

type disableLogger struct{}

func (d disableLogger) Errorf(string, ...interface{}) {}
func (d disableLogger) Warnf(string, ...interface{})  {}
func (d disableLogger) Debugf(string, ...interface{}) {}
