package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"fleet-dispatch/internal/domain/command"
	"fleet-dispatch/internal/general/config"
	"fleet-dispatch/internal/general/logger"
	"fleet-dispatch/internal/ports"
)

// HTTPClassifier calls an external intent-classification service over HTTP.
// The service is a black box: text in, structured intent record out. When the
// remote call fails with a connectivity error the deterministic keyword
// classifier answers instead, so the pipeline keeps working without the
// external dependency.
type HTTPClassifier struct {
	baseURL  string
	client   *http.Client
	fallback *KeywordClassifier
	logger   *logger.Logger
}

// New builds the classifier the service uses: the remote adapter when a base
// URL is configured, the keyword classifier alone otherwise.
func New(cfg *config.Config, log *logger.Logger) ports.IntentClassifier {
	kw := NewKeywordClassifier()
	if cfg.Classifier.BaseURL == "" {
		return kw
	}
	return &HTTPClassifier{
		baseURL:  cfg.Classifier.BaseURL,
		client:   &http.Client{Timeout: cfg.ClassifierTimeout()},
		fallback: kw,
		logger:   log,
	}
}

type classifyRequest struct {
	Text string `json:"text"`
}

// Classify posts the text to the remote service and decodes the record.
func (c *HTTPClassifier) Classify(ctx context.Context, text string) (command.IntentRecord, error) {
	body, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return command.IntentRecord{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/classify", bytes.NewReader(body))
	if err != nil {
		return command.IntentRecord{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if connectivityError(err) {
			c.logger.Error(ctx, "classifier_unreachable", "Intent classifier unreachable, using keyword fallback", err, nil)
			return c.fallback.Classify(ctx, text)
		}
		return command.IntentRecord{}, fmt.Errorf("classifier request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// a definitive non-200 from the service is an answer, not an outage
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return command.IntentRecord{}, fmt.Errorf("classifier returned %d: %s", resp.StatusCode, bytes.TrimSpace(payload))
	}

	var rec command.IntentRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return command.IntentRecord{}, fmt.Errorf("decode classifier response: %w", err)
	}

	return rec, nil
}

// connectivityError reports whether the error looks like the service being
// down or unreachable rather than rejecting the request.
func connectivityError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
