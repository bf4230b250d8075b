package util

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/resty.v1"
)

// RestyClient returns a client that makes a single attempt per request.
// Photo and template fetches degrade to fallbacks instead of retrying.
func RestyClient(timeout time.Duration) *resty.Client {
	return resty.New().
		SetTimeout(timeout).
		SetRetryCount(0)
}

// GetBytes downloads url in one attempt and fails on any non-2xx status.
func GetBytes(ctx context.Context, client *resty.Client, url string) ([]byte, error) {
	resp, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, errors.Errorf("request failed: [%d %s]", resp.StatusCode(), resp.Status())
	}
	return resp.Body(), nil
}
