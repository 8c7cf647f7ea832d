// internal/form/controller_test.go
package form

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"loan-intake/internal/common/errors"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/decision"
	"loan-intake/internal/identifier"
	"loan-intake/internal/journal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helpers
// ==========================

type fakeSubmitter struct {
	mu       sync.Mutex
	requests []decision.Request
	response *decision.Response
	err      error
	started  chan struct{}
	unblock  chan struct{}
}

func (f *fakeSubmitter) Submit(ctx context.Context, req *decision.Request) (*decision.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, *req)
	f.mu.Unlock()

	if f.started != nil {
		close(f.started)
	}
	if f.unblock != nil {
		<-f.unblock
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func (f *fakeSubmitter) calls() []decision.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]decision.Request(nil), f.requests...)
}

type fakeGuard struct {
	acquired bool
	err      error
	keys     []string
	released int
}

func (g *fakeGuard) Acquire(ctx context.Context, key string) (func(), bool, error) {
	g.keys = append(g.keys, key)
	return func() { g.released++ }, g.acquired, g.err
}

type fakeJournal struct {
	entries []journal.Entry
	err     error
}

func (j *fakeJournal) Record(ctx context.Context, entry journal.Entry) (string, error) {
	j.entries = append(j.entries, entry)
	return "journal-id", j.err
}

type panickingSubmitter struct {
	panics int
}

func (p *panickingSubmitter) Submit(ctx context.Context, req *decision.Request) (*decision.Response, error) {
	if p.panics > 0 {
		p.panics--
		panic("decoder exploded")
	}
	return &decision.Response{Message: "Aprovado"}, nil
}

type panickingGuard struct {
	panics int
}

func (g *panickingGuard) Acquire(ctx context.Context, key string) (func(), bool, error) {
	if g.panics > 0 {
		g.panics--
		panic("redis pool corrupted")
	}
	return func() {}, true, nil
}

func newTestController(t *testing.T, submitter Submitter, opts ...Option) *Controller {
	return NewController(&Config{}, submitter, logger.NewTestLogger(t), opts...)
}

func fillIndividual(c *Controller, cpf string) {
	c.SetPersonKind(identifier.Individual)
	c.ChangeField(FieldCPF, cpf)
	c.BlurIdentifier(identifier.Individual)
	c.ChangeField(FieldName, "Maria Souza")
	c.ChangeField(FieldRequestedAmount, "15000")
}

func approved() *fakeSubmitter {
	return &fakeSubmitter{response: &decision.Response{Message: "Aprovado"}}
}

// ==========================
// Field Handling
// ==========================

func TestController_InitialDraft(t *testing.T) {
	c := NewController(&Config{AmountDue: 320.75}, approved(), logger.NewTestLogger(t))
	d := c.Snapshot()

	assert.Equal(t, identifier.Unset, d.PersonKind())
	assert.Equal(t, "", d.IndividualID())
	assert.Equal(t, "", d.OrganizationID())
	assert.Equal(t, Neutral, d.ValidityOf(identifier.Individual))
	assert.Equal(t, Neutral, d.ValidityOf(identifier.Organization))
	assert.Equal(t, 320.75, d.AmountDue)
	assert.Equal(t, "0", d.RequestedAmount)
	assert.Empty(t, d.FormError)
	assert.False(t, d.Submitting)
}

func TestController_KindSwitchResetsIdentifier(t *testing.T) {
	c := newTestController(t, approved())

	c.SetPersonKind(identifier.Individual)
	c.ChangeField(FieldCPF, "123")
	c.BlurIdentifier(identifier.Individual)
	require.Equal(t, Invalid, c.Snapshot().ValidityOf(identifier.Individual))

	c.SetPersonKind(identifier.Organization)
	d := c.Snapshot()

	assert.Equal(t, identifier.Organization, d.PersonKind())
	assert.Equal(t, "", d.IndividualID())
	assert.Equal(t, "", d.OrganizationID())
	assert.Equal(t, Neutral, d.ValidityOf(identifier.Individual))
	assert.Equal(t, Neutral, d.ValidityOf(identifier.Organization))
}

func TestController_SameKindKeepsIdentifier(t *testing.T) {
	c := newTestController(t, approved())

	c.SetPersonKind(identifier.Individual)
	c.ChangeField(FieldCPF, "529.982.247-25")
	c.SetPersonKind(identifier.Individual)

	assert.Equal(t, "52998224725", c.Snapshot().IndividualID())
}

func TestController_ChangeField(t *testing.T) {
	c := newTestController(t, approved())
	c.SetPersonKind(identifier.Organization)

	c.ChangeField(FieldCNPJ, "11.222.333/0001-81")
	c.ChangeField(FieldCPF, "52998224725")
	c.ChangeField(FieldName, "João da Silva")
	c.ChangeField(FieldName, "João123")
	c.ChangeField(FieldRequestedAmount, "999999")

	d := c.Snapshot()
	assert.Equal(t, "11222333000181", d.OrganizationID())
	assert.Equal(t, "", d.IndividualID(), "inactive identifier must stay empty")
	assert.Equal(t, "João da Silva", d.Name)
	assert.Equal(t, "50000", d.RequestedAmount)
}

func TestController_BlurIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		kind     identifier.Kind
		field    Field
		raw      string
		expected Validity
	}{
		{name: "valid cpf", kind: identifier.Individual, field: FieldCPF, raw: "52998224725", expected: Valid},
		{name: "bad cpf checksum", kind: identifier.Individual, field: FieldCPF, raw: "52998224724", expected: Invalid},
		{name: "incomplete cpf", kind: identifier.Individual, field: FieldCPF, raw: "5299822", expected: Invalid},
		{name: "repeated cpf", kind: identifier.Individual, field: FieldCPF, raw: "11111111111", expected: Invalid},
		{name: "valid cnpj", kind: identifier.Organization, field: FieldCNPJ, raw: "11222333000181", expected: Valid},
		{name: "bad cnpj checksum", kind: identifier.Organization, field: FieldCNPJ, raw: "11222333000182", expected: Invalid},
		{name: "empty cnpj", kind: identifier.Organization, field: FieldCNPJ, raw: "", expected: Invalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController(t, approved())
			c.SetPersonKind(tt.kind)
			c.ChangeField(tt.field, tt.raw)
			assert.Equal(t, Neutral, c.Snapshot().ValidityOf(tt.kind), "no validation before blur")

			c.BlurIdentifier(tt.kind)
			assert.Equal(t, tt.expected, c.Snapshot().ValidityOf(tt.kind))
		})
	}
}

func TestController_BlurInactiveKindIgnored(t *testing.T) {
	c := newTestController(t, approved())
	c.SetPersonKind(identifier.Individual)

	c.BlurIdentifier(identifier.Organization)

	assert.Equal(t, Neutral, c.Snapshot().ValidityOf(identifier.Individual))
	assert.Equal(t, Neutral, c.Snapshot().ValidityOf(identifier.Organization))
}

func TestController_SetAmountDue(t *testing.T) {
	c := newTestController(t, approved())

	c.SetAmountDue(1500)
	assert.Equal(t, 1500.0, c.Snapshot().AmountDue)

	c.SetAmountDue(-10)
	assert.Equal(t, 0.0, c.Snapshot().AmountDue)
}

// ==========================
// Submission
// ==========================

func TestController_Submit_Approved(t *testing.T) {
	submitter := approved()
	c := newTestController(t, submitter)
	fillIndividual(c, "52998224725")

	outcome := c.Submit(context.Background())

	assert.Equal(t, StatusDecided, outcome.Status)
	assert.Equal(t, "Aprovado", outcome.Message)

	calls := submitter.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, decision.Request{
		PersonType:     "PF",
		CPF:            "52998224725",
		CNPJ:           "",
		Name:           "Maria Souza",
		AmountDue:      0,
		RequestedValue: "15000",
	}, calls[0])

	d := c.Snapshot()
	assert.Equal(t, "Aprovado", d.Notice)
	assert.Equal(t, identifier.Unset, d.PersonKind(), "draft is discarded after a decision")
	assert.Empty(t, d.Name)
	assert.False(t, d.Submitting)
}

func TestController_Submit_Organization(t *testing.T) {
	submitter := &fakeSubmitter{response: &decision.Response{Message: "Negado"}}
	c := NewController(&Config{AmountDue: 900}, submitter, logger.NewTestLogger(t))

	c.SetPersonKind(identifier.Organization)
	c.ChangeField(FieldCNPJ, "11222333000181")
	c.ChangeField(FieldName, "Padaria Estrela")
	c.ChangeField(FieldRequestedAmount, "40000")

	outcome := c.Submit(context.Background())

	assert.Equal(t, StatusDecided, outcome.Status)
	assert.Equal(t, "Negado", outcome.Message)
	calls := submitter.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "PJ", calls[0].PersonType)
	assert.Equal(t, "", calls[0].CPF)
	assert.Equal(t, "11222333000181", calls[0].CNPJ)
	assert.Equal(t, 900.0, calls[0].AmountDue)
	assert.Equal(t, 900.0, c.Snapshot().AmountDue, "amount due survives the reset")
}

func TestController_Submit_BlockedByInvalidDocument(t *testing.T) {
	submitter := approved()
	c := newTestController(t, submitter)
	fillIndividual(c, "52998224724")

	outcome := c.Submit(context.Background())

	assert.Equal(t, StatusBlocked, outcome.Status)
	assert.Equal(t, MsgCheckDocument, outcome.Message)
	assert.Empty(t, submitter.calls())
	d := c.Snapshot()
	assert.Equal(t, MsgCheckDocument, d.FormError)
	assert.Equal(t, "Maria Souza", d.Name, "draft is kept for correction")
}

func TestController_Submit_InvalidFlagBlocksWithoutRevalidation(t *testing.T) {
	submitter := approved()
	c := NewController(&Config{SkipSubmitRevalidation: true}, submitter, logger.NewTestLogger(t))

	c.SetPersonKind(identifier.Individual)
	c.ChangeField(FieldCPF, "123")
	c.BlurIdentifier(identifier.Individual)
	c.ChangeField(FieldName, "Maria Souza")

	outcome := c.Submit(context.Background())

	assert.Equal(t, StatusBlocked, outcome.Status)
	assert.Equal(t, MsgCheckDocument, c.Snapshot().FormError)
	assert.Empty(t, submitter.calls())
}

func TestController_Submit_RevalidatesUnblurredDocument(t *testing.T) {
	submitter := approved()
	c := newTestController(t, submitter)

	c.SetPersonKind(identifier.Individual)
	c.ChangeField(FieldCPF, "52998224724")
	c.ChangeField(FieldName, "Maria Souza")

	outcome := c.Submit(context.Background())

	assert.Equal(t, StatusBlocked, outcome.Status)
	assert.Equal(t, Invalid, c.Snapshot().ValidityOf(identifier.Individual))
	assert.Empty(t, submitter.calls())
}

func TestController_Submit_BlockedByIncompleteForm(t *testing.T) {
	tests := []struct {
		name  string
		setup func(c *Controller)
	}{
		{name: "no person kind", setup: func(c *Controller) {
			c.ChangeField(FieldName, "Maria Souza")
		}},
		{name: "short name", setup: func(c *Controller) {
			fillIndividual(c, "52998224725")
			c.ChangeField(FieldName, "Al")
		}},
		{name: "empty name", setup: func(c *Controller) {
			fillIndividual(c, "52998224725")
			c.ChangeField(FieldName, "")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submitter := approved()
			c := newTestController(t, submitter)
			tt.setup(c)

			outcome := c.Submit(context.Background())

			assert.Equal(t, StatusBlocked, outcome.Status)
			assert.Equal(t, MsgFillRequired, c.Snapshot().FormError)
			assert.Empty(t, submitter.calls())
		})
	}
}

func TestController_Submit_TransportFailure(t *testing.T) {
	submitter := &fakeSubmitter{err: errors.NewDecisionRequestRejectedError(503, `{"error":"upstream down"}`)}
	c := newTestController(t, submitter)
	fillIndividual(c, "52998224725")

	outcome := c.Submit(context.Background())

	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Equal(t, MsgSubmissionFailed, outcome.Message)
	assert.NotContains(t, outcome.Message, "upstream down")

	d := c.Snapshot()
	assert.Equal(t, MsgSubmissionFailed, d.Notice)
	assert.False(t, d.Submitting)
	assert.Equal(t, "52998224725", d.IndividualID(), "draft is kept for another attempt")

	submitter.err = nil
	submitter.response = &decision.Response{Message: "Aprovado"}
	outcome = c.Submit(context.Background())
	assert.Equal(t, StatusDecided, outcome.Status)
	assert.Len(t, submitter.calls(), 2)
}

func TestController_Submit_ForeignError(t *testing.T) {
	submitter := &fakeSubmitter{err: stderrors.New("dial tcp: connection refused")}
	c := newTestController(t, submitter)
	fillIndividual(c, "52998224725")

	outcome := c.Submit(context.Background())

	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Equal(t, MsgSubmissionFailed, outcome.Message)
}

func TestController_Submit_SubmitterPanicRecovers(t *testing.T) {
	submitter := &panickingSubmitter{panics: 1}
	c := newTestController(t, submitter)
	fillIndividual(c, "52998224725")

	outcome := c.Submit(context.Background())

	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Equal(t, MsgSubmissionFailed, outcome.Message)
	assert.NotContains(t, outcome.Message, "decoder exploded")
	assert.False(t, c.Snapshot().Submitting)

	outcome = c.Submit(context.Background())
	assert.Equal(t, StatusDecided, outcome.Status)
}

func TestController_Submit_PanicClearsSubmitting(t *testing.T) {
	c := newTestController(t, approved(), WithGuard(&panickingGuard{panics: 1}))
	fillIndividual(c, "52998224725")

	assert.Panics(t, func() { c.Submit(context.Background()) })
	assert.False(t, c.Snapshot().Submitting)

	outcome := c.Submit(context.Background())
	assert.Equal(t, StatusDecided, outcome.Status)
}

func TestController_Submit_InFlightRefused(t *testing.T) {
	submitter := approved()
	submitter.started = make(chan struct{})
	submitter.unblock = make(chan struct{})
	c := newTestController(t, submitter)
	fillIndividual(c, "52998224725")

	done := make(chan Outcome, 1)
	go func() { done <- c.Submit(context.Background()) }()

	select {
	case <-submitter.started:
	case <-time.After(2 * time.Second):
		t.Fatal("submission never reached the service")
	}
	assert.True(t, c.Snapshot().Submitting)

	second := c.Submit(context.Background())
	assert.Equal(t, StatusBusy, second.Status)

	close(submitter.unblock)
	first := <-done
	assert.Equal(t, StatusDecided, first.Status)
	assert.Len(t, submitter.calls(), 1)
}

func TestController_Submit_Guard(t *testing.T) {
	t.Run("held elsewhere", func(t *testing.T) {
		submitter := approved()
		g := &fakeGuard{acquired: false}
		c := newTestController(t, submitter, WithGuard(g))
		fillIndividual(c, "52998224725")

		outcome := c.Submit(context.Background())

		assert.Equal(t, StatusBusy, outcome.Status)
		assert.Equal(t, MsgSubmissionPending, outcome.Message)
		assert.Empty(t, submitter.calls())
		assert.False(t, c.Snapshot().Submitting)
		require.Len(t, g.keys, 1)
		assert.NotContains(t, g.keys[0], "52998224725")
	})

	t.Run("acquired and released", func(t *testing.T) {
		submitter := approved()
		g := &fakeGuard{acquired: true}
		c := newTestController(t, submitter, WithGuard(g))
		fillIndividual(c, "52998224725")

		outcome := c.Submit(context.Background())

		assert.Equal(t, StatusDecided, outcome.Status)
		assert.Equal(t, 1, g.released)
	})

	t.Run("unavailable does not block", func(t *testing.T) {
		submitter := approved()
		g := &fakeGuard{err: errors.NewGuardUnavailableError(stderrors.New("connection refused"))}
		c := newTestController(t, submitter, WithGuard(g))
		fillIndividual(c, "52998224725")

		outcome := c.Submit(context.Background())

		assert.Equal(t, StatusDecided, outcome.Status)
		assert.Len(t, submitter.calls(), 1)
	})
}

func TestController_Submit_Journal(t *testing.T) {
	t.Run("decision recorded masked", func(t *testing.T) {
		j := &fakeJournal{}
		c := newTestController(t, approved(), WithJournal(j))
		fillIndividual(c, "52998224725")

		c.Submit(context.Background())

		require.Len(t, j.entries, 1)
		entry := j.entries[0]
		assert.Equal(t, journal.OutcomeDecided, entry.Outcome)
		assert.Equal(t, "Aprovado", entry.DecisionMessage)
		assert.Equal(t, "*********25", entry.DocumentMasked)
		assert.Equal(t, 11, entry.NameLength)
		assert.Equal(t, "15000", entry.RequestedValue)
	})

	t.Run("failure recorded with status", func(t *testing.T) {
		j := &fakeJournal{}
		submitter := &fakeSubmitter{err: errors.NewDecisionRequestRejectedError(502, "bad gateway")}
		c := newTestController(t, submitter, WithJournal(j))
		fillIndividual(c, "52998224725")

		c.Submit(context.Background())

		require.Len(t, j.entries, 1)
		assert.Equal(t, journal.OutcomeFailed, j.entries[0].Outcome)
		assert.Equal(t, 502, j.entries[0].StatusCode)
	})

	t.Run("write failure keeps outcome", func(t *testing.T) {
		j := &fakeJournal{err: errors.NewJournalWriteFailedError(stderrors.New("db down"))}
		c := newTestController(t, approved(), WithJournal(j))
		fillIndividual(c, "52998224725")

		outcome := c.Submit(context.Background())

		assert.Equal(t, StatusDecided, outcome.Status)
		assert.Equal(t, "Aprovado", outcome.Message)
	})

	t.Run("blocked attempts are not recorded", func(t *testing.T) {
		j := &fakeJournal{}
		c := newTestController(t, approved(), WithJournal(j))
		fillIndividual(c, "52998224724")

		c.Submit(context.Background())

		assert.Empty(t, j.entries)
	})
}

// ==========================
// Subscriptions
// ==========================

func TestController_Subscribe(t *testing.T) {
	c := newTestController(t, approved())

	var seen []Draft
	cancel := c.Subscribe(func(d Draft) { seen = append(seen, d) })

	c.SetPersonKind(identifier.Individual)
	c.SetPersonKind(identifier.Individual)
	c.ChangeField(FieldCPF, "529")

	require.Len(t, seen, 2, "unchanged kind does not publish")
	assert.Equal(t, "529", seen[1].IndividualID())

	cancel()
	c.ChangeField(FieldName, "Ana")
	assert.Len(t, seen, 2)
}

func TestController_Subscribe_SubmitLifecycle(t *testing.T) {
	c := newTestController(t, approved())
	fillIndividual(c, "52998224725")

	var submitting []bool
	cancel := c.Subscribe(func(d Draft) { submitting = append(submitting, d.Submitting) })
	defer cancel()

	c.Submit(context.Background())

	assert.Equal(t, []bool{true, false}, submitting)
}
