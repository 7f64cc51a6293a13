package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCardNumber(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "full number groups in fours", in: "4111111111111111", want: "4111 1111 1111 1111"},
		{name: "already grouped is stable", in: "4111 1111 1111 1111", want: "4111 1111 1111 1111"},
		{name: "strips non-digits", in: "4111-1111x1111.1111", want: "4111 1111 1111 1111"},
		{name: "partial input", in: "41111", want: "4111 1"},
		{name: "truncates past 16 digits", in: "41111111111111112222", want: "4111 1111 1111 1111"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCardNumber(tt.in))
		})
	}
}

func TestFormatCardNumber_TypedDigitByDigit(t *testing.T) {
	// Simulates keystrokes: each keystroke re-formats the previous rendering
	// plus one more digit.
	value := ""
	for _, d := range "4111111111111111" {
		value = FormatCardNumber(value + string(d))
	}
	assert.Equal(t, "4111 1111 1111 1111", value)
}

func TestClampExpiryMonth(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "valid month passes", in: "09", want: "09"},
		{name: "december passes", in: "12", want: "12"},
		{name: "zero clamps up", in: "00", want: "01"},
		{name: "over twelve clamps down", in: "13", want: "12"},
		{name: "way over clamps down", in: "99", want: "12"},
		{name: "single digit left incomplete", in: "1", want: "1"},
		{name: "strips non-digits", in: "0a9", want: "09"},
		{name: "truncates extra digits", in: "123", want: "12"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampExpiryMonth(tt.in))
		})
	}
}

func TestFormatExpiryYear(t *testing.T) {
	assert.Equal(t, "27", FormatExpiryYear("27"))
	assert.Equal(t, "20", FormatExpiryYear("2027"))
	assert.Equal(t, "2", FormatExpiryYear("2"))
	assert.Equal(t, "27", FormatExpiryYear("2x7"))
}

func TestFormatCVC(t *testing.T) {
	assert.Equal(t, "123", FormatCVC("123"))
	assert.Equal(t, "1234", FormatCVC("12345"))
	assert.Equal(t, "12", FormatCVC("1a2b"))
}
