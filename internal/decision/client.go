// internal/decision/client.go
package decision

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"strconv"
	"time"

	"loan-intake/internal/common/errors"
	commonhttp "loan-intake/internal/common/http"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/common/observability"
	"loan-intake/internal/common/validation"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// Client posts loan requests to the decision service.
type Client struct {
	config *Config
	http   *commonhttp.Client
	schema *validation.Schema
	obs    *observability.Observability
	logger logger.Logger
}

func NewClient(config *Config, obs *observability.Observability, log logger.Logger) *Client {
	return &Client{
		config: config,
		http:   commonhttp.NewClient(config.Timeout),
		schema: validation.MustCompile(responseSchema),
		obs:    obs,
		logger: log.WithFields(map[string]interface{}{"component": "decision-client"}),
	}
}

// Submit sends req and returns the decision. Every failure is a
// *errors.StandardError; non-2xx answers carry statusCode and body metadata.
func (c *Client) Submit(ctx context.Context, req *Request) (*Response, error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	requestID := uuid.New().String()
	start := time.Now()

	c.logger.Debug("submitting loan request", map[string]interface{}{
		"requestId":  requestID,
		"personType": req.PersonType,
		"endpoint":   c.config.Endpoint,
	})

	resp, err := c.http.PostJSON(ctx, c.config.Endpoint, req, map[string]string{
		RequestIDHeader: requestID,
	})
	if err != nil {
		status := "error"
		var stdErr *errors.StandardError
		if isTimeout(ctx, err) {
			status = "timeout"
			stdErr = errors.NewDecisionTimeoutError(c.config.Timeout)
		} else {
			stdErr = errors.NewDecisionServiceUnavailableError(err)
		}
		c.record(ctx, start, status)
		return nil, withRequestID(stdErr, requestID)
	}

	c.record(ctx, start, strconv.Itoa(resp.StatusCode))

	if !resp.OK() {
		return nil, withRequestID(errors.NewDecisionRequestRejectedError(resp.StatusCode, string(resp.Body)), requestID)
	}

	if result := c.schema.ValidateDocument(resp.Body); !result.Valid {
		details := "response does not match schema"
		if msgs := result.GetErrorMessages(); len(msgs) > 0 {
			details = msgs[0]
		}
		return nil, withRequestID(errors.NewDecisionResponseInvalidError(resp.StatusCode, string(resp.Body), details), requestID)
	}

	var decision Response
	if err := json.Unmarshal(resp.Body, &decision); err != nil {
		return nil, withRequestID(errors.NewDecisionResponseInvalidError(resp.StatusCode, string(resp.Body), err.Error()), requestID)
	}

	c.logger.Info("loan decision received", map[string]interface{}{
		"requestId":  requestID,
		"statusCode": resp.StatusCode,
		"durationMs": time.Since(start).Milliseconds(),
	})

	return &decision, nil
}

func (c *Client) record(ctx context.Context, start time.Time, status string) {
	// The request context may already be done; metrics still need recording.
	ctx = context.WithoutCancel(ctx)
	c.obs.RecordRequest(ctx, status)
	c.obs.RecordRequestDuration(ctx, time.Since(start), status)
}

func isTimeout(ctx context.Context, err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

func withRequestID(err *errors.StandardError, requestID string) *errors.StandardError {
	if err.Metadata == nil {
		err.Metadata = map[string]interface{}{}
	}
	err.Metadata["requestId"] = requestID
	return err
}
