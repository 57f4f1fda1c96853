package domain

import (
	"crypto/subtle"
	"errors"
	"fmt"
)

// Token is a single keypad input as produced by the disguise UI.
type Token string

const (
	TokenCommit  Token = "="
	TokenClear   Token = "C"
	TokenDecimal Token = "."
	TokenAdd     Token = "+"
	TokenSub     Token = "-"
	TokenMul     Token = "*"
	TokenDiv     Token = "/"
	TokenPercent Token = "%"
)

// IsDigit reports whether t is one of 0-9.
func (t Token) IsDigit() bool {
	return len(t) == 1 && t[0] >= '0' && t[0] <= '9'
}

// IsOperator reports whether t is an arithmetic operator.
func (t Token) IsOperator() bool {
	switch t {
	case TokenAdd, TokenSub, TokenMul, TokenDiv, TokenPercent:
		return true
	}
	return false
}

// Valid reports whether t is a token the keypad can emit.
func (t Token) Valid() bool {
	return t.IsDigit() || t.IsOperator() ||
		t == TokenDecimal || t == TokenCommit || t == TokenClear
}

var (
	ErrEmptyCode        = errors.New("code is empty")
	ErrCodeNotCommitted = errors.New("code must end with the commit token \"=\"")
	ErrCodeTooShort     = errors.New("code needs at least one token before the commit token")
	ErrCodeHasClear     = errors.New("code must not contain the clear token")
	ErrCodeInnerCommit  = errors.New("code must contain the commit token only at the end")
	ErrInvalidToken     = errors.New("invalid token")
)

// SecretCode is an ordered run of tokens terminated by TokenCommit.
type SecretCode []Token

// ParseSecretCode reads a code written as one character per token,
// e.g. "5555=".
func ParseSecretCode(s string) (SecretCode, error) {
	if s == "" {
		return nil, ErrEmptyCode
	}
	code := make(SecretCode, 0, len(s))
	for i, r := range s {
		tok := Token(string(r))
		if !tok.Valid() {
			return nil, fmt.Errorf("%w %q at position %d", ErrInvalidToken, r, i)
		}
		if tok == TokenClear {
			return nil, ErrCodeHasClear
		}
		code = append(code, tok)
	}
	if code[len(code)-1] != TokenCommit {
		return nil, ErrCodeNotCommitted
	}
	if len(code) < 2 {
		return nil, ErrCodeTooShort
	}
	for _, tok := range code[:len(code)-1] {
		if tok == TokenCommit {
			return nil, ErrCodeInnerCommit
		}
	}
	return code, nil
}

// Equal compares two codes without short-circuiting on content.
func (c SecretCode) Equal(o SecretCode) bool {
	if len(c) != len(o) {
		return false
	}
	return subtle.ConstantTimeCompare(c.bytes(), o.bytes()) == 1
}

// IsSuffixOf reports whether c is a trailing run of o.
func (c SecretCode) IsSuffixOf(o SecretCode) bool {
	if len(c) > len(o) {
		return false
	}
	return SecretCode(o[len(o)-len(c):]).Equal(c)
}

// String never prints the tokens.
func (c SecretCode) String() string {
	return fmt.Sprintf("SecretCode(len=%d)", len(c))
}

func (c SecretCode) bytes() []byte {
	var b []byte
	for _, tok := range c {
		b = append(b, tok...)
		b = append(b, 0)
	}
	return b
}
