package keypad

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smallwat3r/stealthpad/internal/domain"
)

func press(c *Calculator, seq string) string {
	out := c.Display()
	for _, r := range seq {
		out = c.Press(domain.Token(string(r)))
	}
	return out
}

func TestCalculator(t *testing.T) {
	testCases := []struct {
		seq  string
		want string
	}{
		{"", "0"},
		{"1+2=", "3"},
		{"9*9=", "81"},
		{"7-10=", "-3"},
		{"1/4=", "0.25"},
		{"1/3=", "0.3333333333"},
		{"1.5*2=", "3"},
		{"2+3*4=", "20"},
		{"200+10%", "20"},
		{"200+10%=", "220"},
		{"50%", "0.5"},
		{"5/0=", "Error"},
		{"5/0=3", "3"},
		{"12+C", "0"},
		{"..5", "0.5"},
		{"007", "7"},
	}
	for _, tc := range testCases {
		t.Run(tc.seq, func(t *testing.T) {
			assert.Equal(t, tc.want, press(NewCalculator(), tc.seq))
		})
	}
}

func TestCalculator_EntryIsCapped(t *testing.T) {
	c := NewCalculator()
	got := press(c, strings.Repeat("9", 20))
	assert.Equal(t, strings.Repeat("9", maxEntryDigits), got)
}

func TestCalculator_OperatorShowsRunningTotal(t *testing.T) {
	c := NewCalculator()
	assert.Equal(t, "3", press(c, "1+2+"))
	assert.Equal(t, "10", press(c, "7="))
}

func TestCalculator_Reset(t *testing.T) {
	c := NewCalculator()
	press(c, "5555=")
	c.Reset()
	assert.Equal(t, "0", c.Display())
	assert.Equal(t, "4", press(c, "2+2="))
}
