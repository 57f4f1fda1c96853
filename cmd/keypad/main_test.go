package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallwat3r/stealthpad/internal/config"
	"github.com/smallwat3r/stealthpad/internal/decoy"
	"github.com/smallwat3r/stealthpad/internal/domain"
	"github.com/smallwat3r/stealthpad/internal/gate"
	"github.com/smallwat3r/stealthpad/internal/timing"
	"github.com/smallwat3r/stealthpad/internal/vault"
)

func newTestSession(t *testing.T) (*session, *gate.Signal, *vault.CredentialStore) {
	t.Helper()
	window := timing.Window{Min: 5 * time.Millisecond, Max: 10 * time.Millisecond}
	uc, err := config.NewUnlockConfig("5555=", "9999=", window, 0, nil)
	require.NoError(t, err)

	store := vault.New(vault.NewMemoryBackend(), nil)
	screen := gate.NewSignal()
	g, err := gate.Build(uc, gate.Deps{Store: store, Navigator: screen, Log: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(g.Close)

	s := newSession(g, screen, decoy.NewStatic(decoy.Page{}))
	s.newline = "\n"
	return s, screen, store
}

func runInput(t *testing.T, s *session, input string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, s.run(context.Background(), strings.NewReader(input), &out))
	return out.String()
}

func TestSession_Calculates(t *testing.T) {
	s, screen, _ := newTestSession(t)
	out := runInput(t, s, "6x7\r")
	assert.Equal(t, "42", s.calc.Display())
	assert.Equal(t, domain.DestinationNone, screen.Current())
	assert.Contains(t, out, "42")
}

func TestSession_StealthUnlocks(t *testing.T) {
	s, screen, _ := newTestSession(t)
	out := runInput(t, s, "12+5555\r")
	assert.Equal(t, domain.EnterGenuineApp, screen.Current())
	assert.Contains(t, out, "[vault] unlocked")
	assert.Equal(t, "0", s.calc.Display())
}

func TestSession_DuressShowsDecoy(t *testing.T) {
	s, screen, store := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, domain.AuthTokenKey, "a"))

	out := runInput(t, s, "9999=")
	assert.Equal(t, domain.EnterDecoyApp, screen.Current())
	assert.Contains(t, out, "Notes")
	assert.NotContains(t, out, "[vault]")

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestSession_LockReturnsToCalculator(t *testing.T) {
	s, screen, _ := newTestSession(t)
	runInput(t, s, "5555=l1+1=")
	assert.Equal(t, domain.DestinationNone, screen.Current())
	assert.Equal(t, "2", s.calc.Display())
}

func TestSession_QuitStopsReading(t *testing.T) {
	s, _, _ := newTestSession(t)
	runInput(t, s, "12q34")
	assert.Equal(t, "12", s.calc.Display())
}

func TestTokenFor(t *testing.T) {
	testCases := map[byte]domain.Token{
		'\r':      domain.TokenCommit,
		'\n':      domain.TokenCommit,
		'=':       domain.TokenCommit,
		keyEscape: domain.TokenClear,
		'c':       domain.TokenClear,
		'x':       domain.TokenMul,
		'*':       domain.TokenMul,
		'7':       "7",
		'.':       domain.TokenDecimal,
	}
	for b, want := range testCases {
		got, ok := tokenFor(b)
		assert.True(t, ok, "%q", b)
		assert.Equal(t, want, got, "%q", b)
	}

	_, ok := tokenFor('z')
	assert.False(t, ok)
}
