package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"formatted local number", "(21) 99876-5432", "5521998765432"},
		{"already country-prefixed", "5521998765432", "5521998765432"},
		{"plus and country code", "+55 21 99876-5432", "5521998765432"},
		{"bare eleven digits", "11987654321", "5511987654321"},
		{"leading zeros stripped", "021998765432", "5521998765432"},
		{"short number left as-is", "998765432", "998765432"},
		{"empty input", "", ""},
		{"punctuation only", "() -", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizePhone(tc.in))
		})
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	inputs := []string{
		"(21) 99876-5432",
		"+5521998765432",
		"11987654321",
		"998765432",
		"",
	}
	for _, in := range inputs {
		once := NormalizePhone(in)
		assert.Equal(t, once, NormalizePhone(once), "input %q", in)
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "fred@gmail.com", NormalizeEmail("  Fred@Gmail.com "))
	assert.Equal(t, NormalizeEmail("A@B.com"), NormalizeEmail("a@b.com"))
	assert.Equal(t, "", NormalizeEmail(""))
	assert.Equal(t, "", NormalizeEmail("   "))

	// Idempotent.
	once := NormalizeEmail("  Fred@Gmail.com ")
	assert.Equal(t, once, NormalizeEmail(once))
}

func TestExtractPhoneNumbers(t *testing.T) {
	t.Run("finds numbers in free text", func(t *testing.T) {
		text := "convida o +5521998765432 e o 21912345678 por favor"
		got := ExtractPhoneNumbers(text)
		assert.Equal(t, []string{"5521998765432", "5521912345678"}, got)
	})

	t.Run("deduplicates after normalization", func(t *testing.T) {
		text := "+5521998765432 e de novo 5521998765432"
		got := ExtractPhoneNumbers(text)
		assert.Equal(t, []string{"5521998765432"}, got)
	})

	t.Run("zero matches is a no-op", func(t *testing.T) {
		got := ExtractPhoneNumbers("oi, tudo bem?")
		assert.Empty(t, got)
	})

	t.Run("ignores short digit runs", func(t *testing.T) {
		got := ExtractPhoneNumbers("mesa 12, sala 304")
		assert.Empty(t, got)
	})
}
