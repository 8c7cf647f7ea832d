// internal/decision/models.go
package decision

// Request is the body posted to the decision service. Only the identifier
// matching PersonType is filled; the other is sent empty.
type Request struct {
	PersonType     string  `json:"personType" validate:"required,oneof=PF PJ"`
	CPF            string  `json:"cpf" validate:"omitempty,numeric,len=11"`
	CNPJ           string  `json:"cnpj" validate:"omitempty,numeric,len=14"`
	Name           string  `json:"name" validate:"required,min=3,max=100,letters"`
	AmountDue      float64 `json:"amountDue" validate:"gte=0"`
	RequestedValue string  `json:"requestedValue" validate:"required,numeric,amount"`
}

// Response carries the human-readable decision, shown to the applicant as is.
type Response struct {
	Message string `json:"message"`
}

const responseSchema = `{
	"type": "object",
	"required": ["message"],
	"properties": {
		"message": {"type": "string", "minLength": 1}
	}
}`
