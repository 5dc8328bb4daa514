package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Sharer hands a generated document to whatever shares or prints it.
type Sharer interface {
	Share(ctx context.Context, uri string) error
}

type shareRequest struct {
	URI string `json:"uri"`
}

type webhookSharer struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewWebhookSharer posts each document reference as JSON to url.
func NewWebhookSharer(url string, timeout time.Duration, logger *logrus.Logger) Sharer {
	return &webhookSharer{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
		log: logger,
	}
}

func (s *webhookSharer) Share(ctx context.Context, uri string) error {
	body, err := json.Marshal(shareRequest{URI: uri})
	if err != nil {
		s.log.Errorf("ShareClient: Failed to marshal share request for %s: %v", uri, err)
		return fmt.Errorf("failed to prepare share request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		s.log.Errorf("ShareClient: Failed to create share request for %s: %v", uri, err)
		return fmt.Errorf("failed to create share request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Errorf("ShareClient: Failed to execute share request for %s: %v", uri, err)
		return fmt.Errorf("failed to communicate with share target: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		s.log.Errorf("ShareClient: Share request for %s failed with status %d. Response body: %s", uri, resp.StatusCode, string(bodyBytes))
		return fmt.Errorf("share target returned status %d", resp.StatusCode)
	}

	s.log.Infof("ShareClient: Shared %s", uri)
	return nil
}

type logSharer struct {
	log *logrus.Logger
}

// NewLogSharer only records the reference. It is used when no share target
// is configured.
func NewLogSharer(logger *logrus.Logger) Sharer {
	return &logSharer{log: logger}
}

func (s *logSharer) Share(_ context.Context, uri string) error {
	s.log.WithField("uri", uri).Info("ShareClient: Document ready (no share target configured)")
	return nil
}
