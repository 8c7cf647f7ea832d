// internal/form/models.go
package form

import "loan-intake/internal/identifier"

// User-facing texts.
const (
	MsgCheckDocument     = "Por favor, verifique os números do documento."
	MsgFillRequired      = "Por favor, preencha todos os campos obrigatórios."
	MsgSubmissionFailed  = "Erro ao processar a solicitação de empréstimo. Recarregue a página e tente novamente."
	MsgSubmissionPending = "Já existe uma solicitação em andamento para este documento. Aguarde a resposta."
)

// Validity is the blur-time state of the active identifier.
type Validity int

const (
	Neutral Validity = iota
	Valid
	Invalid
)

func (v Validity) String() string {
	switch v {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "neutral"
	}
}

// Field names an editable input.
type Field int

const (
	FieldName Field = iota
	FieldCPF
	FieldCNPJ
	FieldRequestedAmount
)

func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldCPF:
		return "cpf"
	case FieldCNPJ:
		return "cnpj"
	case FieldRequestedAmount:
		return "requestedAmount"
	default:
		return "unknown"
	}
}

// Document is the only identifier slot of a draft. Its Kind decides whether
// Number is a CPF or a CNPJ, so the inactive identifier is always empty.
type Document struct {
	Kind     identifier.Kind
	Number   string
	Validity Validity
}

// Draft is the in-memory application being composed.
type Draft struct {
	Document        Document
	Name            string
	AmountDue       float64
	RequestedAmount string
	// FormError is set when a submit attempt is blocked locally.
	FormError string
	// Notice is the last submission outcome shown to the user.
	Notice     string
	Submitting bool
}

func newDraft(amountDue float64) Draft {
	return Draft{
		AmountDue:       amountDue,
		RequestedAmount: "0",
	}
}

// PersonKind returns the declared person type.
func (d Draft) PersonKind() identifier.Kind {
	return d.Document.Kind
}

// IndividualID returns the CPF digits, empty unless the kind is Individual.
func (d Draft) IndividualID() string {
	if d.Document.Kind != identifier.Individual {
		return ""
	}
	return d.Document.Number
}

// OrganizationID returns the CNPJ digits, empty unless the kind is Organization.
func (d Draft) OrganizationID() string {
	if d.Document.Kind != identifier.Organization {
		return ""
	}
	return d.Document.Number
}

// ValidityOf returns the identifier state for kind. The inactive kind is
// always Neutral.
func (d Draft) ValidityOf(kind identifier.Kind) Validity {
	if kind == identifier.Unset || d.Document.Kind != kind {
		return Neutral
	}
	return d.Document.Validity
}

// Status is the result class of a submit attempt.
type Status int

const (
	// StatusBlocked means a local check stopped the attempt.
	StatusBlocked Status = iota
	// StatusBusy means another submission for the draft or applicant is in flight.
	StatusBusy
	// StatusDecided means the decision service answered; Message is its text.
	StatusDecided
	// StatusFailed means the call failed; Message is the generic retry text.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusBlocked:
		return "blocked"
	case StatusBusy:
		return "busy"
	case StatusDecided:
		return "decided"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is what Submit reports to the binding layer.
type Outcome struct {
	Status  Status
	Message string
}
