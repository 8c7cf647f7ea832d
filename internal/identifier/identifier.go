// internal/identifier/identifier.go
package identifier

import "strings"

// Kind is the declared person type of an applicant.
type Kind int

const (
	Unset Kind = iota
	Individual
	Organization
)

const (
	CPFLength  = 11
	CNPJLength = 14
)

// Code returns the wire code sent to the decision service.
func (k Kind) Code() string {
	switch k {
	case Individual:
		return "PF"
	case Organization:
		return "PJ"
	default:
		return ""
	}
}

// Label returns the name of the identifier document for the kind.
func (k Kind) Label() string {
	switch k {
	case Individual:
		return "CPF"
	case Organization:
		return "CNPJ"
	default:
		return ""
	}
}

// Length returns the exact number of digits of the kind's identifier.
func (k Kind) Length() int {
	switch k {
	case Individual:
		return CPFLength
	case Organization:
		return CNPJLength
	default:
		return 0
	}
}

func (k Kind) String() string {
	switch k {
	case Individual:
		return "individual"
	case Organization:
		return "organization"
	default:
		return "unset"
	}
}

// ParseKind maps a wire code ("PF", "PJ") to a Kind. Unknown codes are Unset.
func ParseKind(code string) Kind {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "PF":
		return Individual
	case "PJ":
		return Organization
	default:
		return Unset
	}
}

// Mask hides all but the last two digits.
func Mask(digits string) string {
	if len(digits) <= 2 {
		return strings.Repeat("*", len(digits))
	}
	return strings.Repeat("*", len(digits)-2) + digits[len(digits)-2:]
}
