package keypad

import (
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/smallwat3r/stealthpad/internal/domain"
)

const (
	maxEntryDigits = 12
	errorDisplay   = "Error"
)

// Calculator is the working immediate-execution calculator shown by the
// disguise. It knows nothing about secret codes.
type Calculator struct {
	mu      sync.Mutex
	display string
	acc     float64
	op      domain.Token
	fresh   bool
}

// NewCalculator returns a calculator showing "0".
func NewCalculator() *Calculator {
	c := &Calculator{}
	c.reset()
	return c
}

// Display returns what the screen currently shows.
func (c *Calculator) Display() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.display
}

// Reset clears the calculator back to "0".
func (c *Calculator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// Press applies one token and returns the new display.
func (c *Calculator) Press(tok domain.Token) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case tok == domain.TokenClear:
		c.reset()
	case tok.IsDigit():
		c.digit(tok)
	case tok == domain.TokenDecimal:
		c.decimal()
	case tok == domain.TokenPercent:
		c.percent()
	case tok.IsOperator():
		c.operator(tok)
	case tok == domain.TokenCommit:
		c.equals()
	}
	return c.display
}

func (c *Calculator) reset() {
	c.display = "0"
	c.acc = 0
	c.op = ""
	c.fresh = true
}

func (c *Calculator) digit(tok domain.Token) {
	if c.fresh || c.display == "0" || c.display == errorDisplay {
		c.display = string(tok)
		c.fresh = false
		return
	}
	if countDigits(c.display) >= maxEntryDigits {
		return
	}
	c.display += string(tok)
}

func (c *Calculator) decimal() {
	if c.fresh || c.display == errorDisplay {
		c.display = "0."
		c.fresh = false
		return
	}
	if !strings.Contains(c.display, ".") {
		c.display += "."
	}
}

func (c *Calculator) percent() {
	cur, ok := c.current()
	if !ok {
		return
	}
	if c.op == domain.TokenAdd || c.op == domain.TokenSub {
		cur = c.acc * cur / 100
	} else {
		cur /= 100
	}
	c.display = format(cur)
	c.fresh = false
}

func (c *Calculator) operator(tok domain.Token) {
	cur, ok := c.current()
	if !ok {
		return
	}
	if c.op != "" && !c.fresh {
		if !c.apply(cur) {
			return
		}
	} else if c.op == "" {
		c.acc = cur
	}
	c.op = tok
	c.fresh = true
	c.display = format(c.acc)
}

func (c *Calculator) equals() {
	if c.op == "" {
		c.fresh = true
		return
	}
	cur, ok := c.current()
	if !ok {
		return
	}
	if !c.apply(cur) {
		return
	}
	c.display = format(c.acc)
	c.op = ""
	c.fresh = true
}

// apply folds cur into the accumulator, switching to the error display on
// division by zero or overflow.
func (c *Calculator) apply(cur float64) bool {
	var v float64
	switch c.op {
	case domain.TokenAdd:
		v = c.acc + cur
	case domain.TokenSub:
		v = c.acc - cur
	case domain.TokenMul:
		v = c.acc * cur
	case domain.TokenDiv:
		if cur == 0 {
			c.fail()
			return false
		}
		v = c.acc / cur
	default:
		v = cur
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		c.fail()
		return false
	}
	c.acc = v
	return true
}

func (c *Calculator) fail() {
	c.reset()
	c.display = errorDisplay
}

func (c *Calculator) current() (float64, bool) {
	if c.display == errorDisplay {
		return 0, false
	}
	v, err := strconv.ParseFloat(c.display, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func format(v float64) string {
	if v == 0 {
		return "0"
	}
	if math.Abs(v) >= 1e12 || math.Abs(v) < 1e-9 {
		return strconv.FormatFloat(v, 'g', 10, 64)
	}
	s := strconv.FormatFloat(v, 'f', 10, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
