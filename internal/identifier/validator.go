// internal/identifier/validator.go
package identifier

// Validator checks the length and check digits of a digit string.
type Validator interface {
	Validate(digits string) bool
}

// ValidatorFunc adapts a plain function to Validator.
type ValidatorFunc func(digits string) bool

func (f ValidatorFunc) Validate(digits string) bool { return f(digits) }

var (
	cpfFirstWeights  = []int{10, 9, 8, 7, 6, 5, 4, 3, 2}
	cpfSecondWeights = []int{11, 10, 9, 8, 7, 6, 5, 4, 3, 2}

	cnpjFirstWeights  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjSecondWeights = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

var (
	CPF  Validator = ValidatorFunc(ValidCPF)
	CNPJ Validator = ValidatorFunc(ValidCNPJ)
)

// ValidatorFor returns the strategy for kind, or nil for Unset.
func ValidatorFor(kind Kind) Validator {
	switch kind {
	case Individual:
		return CPF
	case Organization:
		return CNPJ
	default:
		return nil
	}
}

// Validate checks digits against the identifier rules of kind. Unset never
// validates.
func Validate(digits string, kind Kind) bool {
	v := ValidatorFor(kind)
	if v == nil {
		return false
	}
	return v.Validate(digits)
}

// ValidCPF reports whether digits is an 11-digit CPF with correct check digits.
func ValidCPF(digits string) bool {
	return validMod11(digits, CPFLength, cpfFirstWeights, cpfSecondWeights)
}

// ValidCNPJ reports whether digits is a 14-digit CNPJ with correct check digits.
func ValidCNPJ(digits string) bool {
	return validMod11(digits, CNPJLength, cnpjFirstWeights, cnpjSecondWeights)
}

func validMod11(digits string, length int, first, second []int) bool {
	if len(digits) != length {
		return false
	}

	values := make([]int, length)
	for i := 0; i < length; i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		values[i] = int(c - '0')
	}

	// Uniform sequences such as 00000000000 satisfy the arithmetic but are
	// not issued by the Receita Federal.
	if uniform(values) {
		return false
	}

	if checkDigit(values, first) != values[length-2] {
		return false
	}
	return checkDigit(values, second) == values[length-1]
}

func checkDigit(values, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += values[i] * w
	}
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}

func uniform(values []int) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
