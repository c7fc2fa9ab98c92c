package shortener

import "github.com/jaevor/go-nanoid"

const (
	// CodeLength is the number of characters in a generated code.
	CodeLength = 6

	// CodeAlphabet holds digits, upper and lower case ASCII letters.
	CodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// CodeGenerator generates short codes. Codes are not guaranteed to be unique.
type CodeGenerator func() string

// NewCodeGenerator returns a generator drawing CodeLength characters uniformly from CodeAlphabet.
func NewCodeGenerator() (CodeGenerator, error) {
	gen, err := nanoid.CustomASCII(CodeAlphabet, CodeLength)
	if err != nil {
		return nil, err
	}

	return CodeGenerator(gen), nil
}
