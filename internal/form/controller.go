// internal/form/controller.go
package form

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"loan-intake/internal/common/errors"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/common/metrics"
	"loan-intake/internal/decision"
	"loan-intake/internal/guard"
	"loan-intake/internal/identifier"
	"loan-intake/internal/journal"
	"loan-intake/internal/sanitize"
)

const journalTimeout = 5 * time.Second

// Controller owns the application draft. All methods are safe for
// concurrent use; the lock is released while the decision service is called
// so the draft stays editable, but a second Submit is refused until the
// first one returns.
type Controller struct {
	mu    sync.Mutex
	draft Draft

	config     *Config
	submitter  Submitter
	guard      Guard
	journal    Journal
	validator  *decision.RequestValidator
	errHandler *errors.ErrorHandler
	logger     logger.Logger

	subsMu      sync.Mutex
	subscribers map[int]func(Draft)
	nextSubID   int
}

type Option func(*Controller)

// WithGuard enables the cross-process duplicate submission guard.
func WithGuard(g Guard) Option {
	return func(c *Controller) { c.guard = g }
}

// WithJournal enables recording of submission outcomes.
func WithJournal(j Journal) Option {
	return func(c *Controller) { c.journal = j }
}

func NewController(config *Config, submitter Submitter, log logger.Logger, opts ...Option) *Controller {
	log = log.WithFields(map[string]interface{}{"component": "form"})
	c := &Controller{
		draft:       newDraft(config.AmountDue),
		config:      config,
		submitter:   submitter,
		validator:   decision.NewRequestValidator(),
		errHandler:  errors.NewErrorHandler(log),
		logger:      log,
		subscribers: make(map[int]func(Draft)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the current draft.
func (c *Controller) Snapshot() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Subscribe registers fn to receive every new draft state. fn runs on the
// goroutine that changed the state and must not call back into the
// controller synchronously.
func (c *Controller) Subscribe(fn func(Draft)) (cancel func()) {
	c.subsMu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.subsMu.Unlock()

	return func() {
		c.subsMu.Lock()
		delete(c.subscribers, id)
		c.subsMu.Unlock()
	}
}

func (c *Controller) notify(d Draft) {
	c.subsMu.Lock()
	fns := make([]func(Draft), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		fns = append(fns, fn)
	}
	c.subsMu.Unlock()

	for _, fn := range fns {
		fn(d)
	}
}

// update applies fn under the lock and publishes the result.
func (c *Controller) update(fn func(d *Draft) bool) {
	c.mu.Lock()
	changed := fn(&c.draft)
	snap := c.draft
	c.mu.Unlock()

	if changed {
		c.notify(snap)
	}
}

// SetAmountDue replaces the read-only amount currently owed by the applicant.
func (c *Controller) SetAmountDue(amount float64) {
	if amount < 0 {
		amount = 0
	}
	c.update(func(d *Draft) bool {
		d.AmountDue = amount
		return true
	})
}

// SetPersonKind selects the applicant type. Choosing a different kind
// clears the identifier and resets its validity.
func (c *Controller) SetPersonKind(kind identifier.Kind) {
	c.update(func(d *Draft) bool {
		if d.Document.Kind == kind {
			return false
		}
		d.Document = Document{Kind: kind, Validity: Neutral}
		d.FormError = ""
		return true
	})
}

// ChangeField stores the sanitized value of raw. Input for the identifier
// that does not match the selected kind is ignored.
func (c *Controller) ChangeField(field Field, raw string) {
	c.update(func(d *Draft) bool {
		switch field {
		case FieldName:
			d.Name = sanitize.Name(d.Name, raw)
		case FieldRequestedAmount:
			d.RequestedAmount = sanitize.RequestedAmount(raw)
		case FieldCPF:
			if d.Document.Kind != identifier.Individual {
				return false
			}
			d.Document.Number = sanitize.Digits(raw)
		case FieldCNPJ:
			if d.Document.Kind != identifier.Organization {
				return false
			}
			d.Document.Number = sanitize.Digits(raw)
		default:
			return false
		}
		return true
	})
}

// BlurIdentifier validates the identifier of kind when its field loses
// focus. An incomplete number is Invalid without running the checksum.
func (c *Controller) BlurIdentifier(kind identifier.Kind) {
	c.update(func(d *Draft) bool {
		if kind == identifier.Unset || d.Document.Kind != kind {
			return false
		}
		c.checkIdentifier(d)
		return true
	})
}

func (c *Controller) checkIdentifier(d *Draft) {
	kind := d.Document.Kind
	valid := len(d.Document.Number) == kind.Length() && identifier.Validate(d.Document.Number, kind)

	result := "invalid"
	d.Document.Validity = Invalid
	if valid {
		result = "valid"
		d.Document.Validity = Valid
	}
	metrics.IdentifierChecks.WithLabelValues(kind.Label(), result).Inc()

	c.logger.Debug("identifier checked", map[string]interface{}{
		"kind":     kind.Label(),
		"document": identifier.Mask(d.Document.Number),
		"result":   result,
	})
}

func (c *Controller) buildRequest(d Draft) *decision.Request {
	return &decision.Request{
		PersonType:     d.Document.Kind.Code(),
		CPF:            d.IndividualID(),
		CNPJ:           d.OrganizationID(),
		Name:           d.Name,
		AmountDue:      d.AmountDue,
		RequestedValue: d.RequestedAmount,
	}
}

// Submit runs the local checks and, when they pass, sends the draft to the
// decision service. It blocks until the service answers or the call fails.
func (c *Controller) Submit(ctx context.Context) Outcome {
	c.mu.Lock()
	if c.draft.Submitting {
		c.mu.Unlock()
		metrics.SubmissionsBlocked.WithLabelValues("in_flight").Inc()
		c.logger.Info("submission refused", map[string]interface{}{
			"errorCode": string(errors.ErrCodeSubmissionInFlight),
		})
		return Outcome{Status: StatusBusy}
	}

	if !c.config.SkipSubmitRevalidation && c.draft.Document.Kind != identifier.Unset {
		c.checkIdentifier(&c.draft)
	}

	if c.draft.Document.Validity == Invalid {
		stdErr := errors.NewDocumentInvalidError(c.draft.Document.Kind.Label())
		return c.block(stdErr, "document_invalid", MsgCheckDocument)
	}

	req := c.buildRequest(c.draft)
	if err := c.validator.Validate(req); err != nil {
		stdErr := errors.NewApplicationValidationFailedError(err.Error())
		return c.block(stdErr, "incomplete", MsgFillRequired)
	}

	entry := journal.Entry{
		PersonType:     req.PersonType,
		DocumentMasked: identifier.Mask(c.draft.Document.Number),
		NameLength:     utf8.RuneCountInString(req.Name),
		RequestedValue: req.RequestedValue,
		AmountDue:      req.AmountDue,
	}
	c.draft.FormError = ""
	c.draft.Notice = ""
	c.draft.Submitting = true
	snap := c.draft
	c.mu.Unlock()
	c.notify(snap)

	settled := false
	defer func() {
		if r := recover(); r != nil {
			if !settled {
				c.update(func(d *Draft) bool {
					d.Submitting = false
					return true
				})
			}
			panic(r)
		}
	}()

	release, ok := c.acquire(ctx, req)
	if !ok {
		c.update(func(d *Draft) bool {
			settled = true
			d.Submitting = false
			d.Notice = MsgSubmissionPending
			return true
		})
		metrics.SubmissionsBlocked.WithLabelValues("duplicate").Inc()
		return Outcome{Status: StatusBusy, Message: MsgSubmissionPending}
	}
	defer release()

	metrics.SubmissionsInFlight.Inc()
	start := time.Now()
	resp, err := c.decide(ctx, req)
	elapsed := time.Since(start)
	metrics.SubmissionsInFlight.Dec()

	var outcome Outcome
	if err != nil {
		stdErr := c.errHandler.HandleSubmissionError(requestID(err), err)
		outcome = Outcome{Status: StatusFailed, Message: MsgSubmissionFailed}
		entry.Outcome = journal.OutcomeFailed
		entry.StatusCode = stdErr.StatusCode()

		c.update(func(d *Draft) bool {
			settled = true
			d.Submitting = false
			d.Notice = MsgSubmissionFailed
			return true
		})
	} else {
		outcome = Outcome{Status: StatusDecided, Message: resp.Message}
		entry.Outcome = journal.OutcomeDecided
		entry.DecisionMessage = resp.Message

		c.logger.Info("loan decision shown", map[string]interface{}{
			"personType": req.PersonType,
			"durationMs": elapsed.Milliseconds(),
		})

		c.update(func(d *Draft) bool {
			settled = true
			fresh := newDraft(d.AmountDue)
			fresh.Notice = resp.Message
			*d = fresh
			return true
		})
	}

	metrics.SubmissionsTotal.WithLabelValues(outcome.Status.String()).Inc()
	metrics.SubmissionDuration.WithLabelValues(outcome.Status.String()).Observe(elapsed.Seconds())

	c.record(ctx, entry)
	return outcome
}

// decide calls the submitter. A panic in the submitter is returned as an
// error so the draft leaves the submitting state.
func (c *Controller) decide(ctx context.Context, req *decision.Request) (resp *decision.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, fmt.Errorf("decision submitter panicked: %v", r)
		}
	}()
	return c.submitter.Submit(ctx, req)
}

// block is called with c.mu held and releases it.
func (c *Controller) block(stdErr *errors.StandardError, reason, message string) Outcome {
	c.draft.FormError = message
	snap := c.draft
	c.mu.Unlock()

	metrics.SubmissionsBlocked.WithLabelValues(reason).Inc()
	c.logger.Info("submission blocked", map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
	})
	c.notify(snap)
	return Outcome{Status: StatusBlocked, Message: message}
}

// acquire takes the duplicate submission guard. An unreachable guard does
// not stop the submission.
func (c *Controller) acquire(ctx context.Context, req *decision.Request) (func(), bool) {
	if c.guard == nil {
		return func() {}, true
	}

	digits := req.CPF
	if digits == "" {
		digits = req.CNPJ
	}
	release, acquired, err := c.guard.Acquire(ctx, guard.Key(req.PersonType, digits))
	if err != nil {
		c.logger.Warn("submission guard unavailable", map[string]interface{}{
			"error": err.Error(),
		})
		return func() {}, true
	}
	if !acquired {
		c.logger.Info("submission refused", map[string]interface{}{
			"errorCode": string(errors.ErrCodeSubmissionInFlight),
			"document":  identifier.Mask(digits),
		})
		return func() {}, false
	}
	return release, true
}

func (c *Controller) record(ctx context.Context, entry journal.Entry) {
	if c.journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	defer cancel()

	if _, err := c.journal.Record(ctx, entry); err != nil {
		c.logger.Warn("failed to journal submission", map[string]interface{}{
			"error":   err.Error(),
			"outcome": entry.Outcome,
		})
	}
}

func requestID(err error) string {
	stdErr := errors.AsStandardError(err)
	if id, ok := stdErr.Metadata["requestId"].(string); ok {
		return id
	}
	return ""
}
