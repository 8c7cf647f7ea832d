package errors

// ErrorHandler converts failures at the submission boundary into log entries,
// keeping diagnostics away from the end user.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleSubmissionError logs err with its diagnostic metadata and returns the
// normalized StandardError.
func (h *ErrorHandler) HandleSubmissionError(requestID string, err error) *StandardError {
	stdErr := AsStandardError(err)

	fields := map[string]interface{}{
		"requestId":     requestID,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable || IsRetryableErrorCode(stdErr.Code),
		"retries":       GetRetryCount(stdErr.Code),
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	for k, v := range stdErr.Metadata {
		fields[k] = v
	}

	h.logger.Error("loan submission failed", fields)
	return stdErr
}
