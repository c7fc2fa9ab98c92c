package shortener_test

import (
	"strings"
	"testing"

	"github.com/serroba/shortlinks/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCodeGenerator(t *testing.T) {
	generate, err := shortener.NewCodeGenerator()
	require.NoError(t, err)

	t.Run("produces six alphanumeric characters", func(t *testing.T) {
		for range 200 {
			code := generate()

			assert.Len(t, code, shortener.CodeLength)

			for _, r := range code {
				assert.True(t, strings.ContainsRune(shortener.CodeAlphabet, r), "unexpected rune %q", r)
			}
		}
	})

	t.Run("uses the whole alphabet", func(t *testing.T) {
		seen := make(map[rune]bool)

		for range 2000 {
			for _, r := range generate() {
				seen[r] = true
			}
		}

		assert.Len(t, seen, len(shortener.CodeAlphabet))
	})
}
