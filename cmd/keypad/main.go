// Command keypad runs the disguised calculator in a terminal against a
// local credential store.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/smallwat3r/stealthpad/internal/config"
	"github.com/smallwat3r/stealthpad/internal/decoy"
	"github.com/smallwat3r/stealthpad/internal/diag"
	"github.com/smallwat3r/stealthpad/internal/domain"
	"github.com/smallwat3r/stealthpad/internal/gate"
	"github.com/smallwat3r/stealthpad/internal/keypad"
	"github.com/smallwat3r/stealthpad/internal/notify"
	"github.com/smallwat3r/stealthpad/internal/vault"
)

const (
	keyCtrlC  = 0x03
	keyEscape = 0x1b
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "keypad: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	uc, err := cfg.UnlockConfig()
	if err != nil {
		return err
	}
	if cfg.StoreBackend == config.BackendRedis {
		return errors.New("the terminal keypad supports the sqlite and memory stores")
	}

	logs, err := diag.Setup(cfg.LogLevel, cfg.DiagnosticLog, "keypad")
	if err != nil {
		return err
	}
	defer logs.Close()

	store, closer, err := vault.Open(cfg, nil)
	if err != nil {
		return err
	}
	defer closer.Close()

	var notifier notify.Notifier = notify.Nop{}
	if cfg.BackendURL != "" {
		notifier = notify.NewClient(cfg.BackendURL, cfg.NotifyTimeout)
	}

	screen := gate.NewSignal()
	g, err := gate.Build(uc, gate.Deps{
		Store:     store,
		Notifier:  notifier,
		Navigator: screen,
		Log:       logs.Diagnostic,
	})
	if err != nil {
		return err
	}
	defer g.Close()

	s := newSession(g, screen, decoy.NewStatic(decoy.Page{}))

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		s.newline = "\n"
		return s.run(context.Background(), bufio.NewReader(os.Stdin), os.Stdout)
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("raw mode: %w", err)
	}
	defer term.Restore(fd, state)
	return s.run(context.Background(), bufio.NewReader(os.Stdin), os.Stdout)
}

// Gate is the part of gate.Gate the session drives.
type Gate interface {
	Feed(ctx context.Context, tok domain.Token) domain.MatchResult
}

// Screen reports and resets where the UI should be.
type Screen interface {
	Current() domain.Destination
	Lock()
}

type session struct {
	gate    Gate
	screen  Screen
	decoy   decoy.Renderer
	calc    *keypad.Calculator
	newline string
}

func newSession(g Gate, screen Screen, renderer decoy.Renderer) *session {
	return &session{
		gate:    g,
		screen:  screen,
		decoy:   renderer,
		calc:    keypad.NewCalculator(),
		newline: "\r\n",
	}
}

// run reads single bytes until EOF, q or Ctrl-C.
func (s *session) run(ctx context.Context, in io.ByteReader, out io.Writer) error {
	s.draw(out)
	for {
		b, err := in.ReadByte()
		if errors.Is(err, io.EOF) {
			fmt.Fprint(out, s.newline)
			return nil
		}
		if err != nil {
			return err
		}
		if b == 'q' || b == keyCtrlC {
			fmt.Fprint(out, s.newline)
			return nil
		}
		s.handle(ctx, b)
		s.draw(out)
	}
}

func (s *session) handle(ctx context.Context, b byte) {
	if s.screen.Current() != domain.DestinationNone {
		if b == 'l' {
			s.screen.Lock()
			s.calc.Reset()
		}
		return
	}
	tok, ok := tokenFor(b)
	if !ok {
		return
	}
	s.calc.Press(tok)
	if s.gate.Feed(ctx, tok) != domain.MatchNone {
		s.calc.Reset()
	}
}

func (s *session) draw(out io.Writer) {
	switch s.screen.Current() {
	case domain.EnterGenuineApp:
		fmt.Fprintf(out, "\r\033[2K[vault] unlocked. l to lock, q to quit%s", s.newline)
	case domain.EnterDecoyApp:
		page := s.decoy.Render()
		var b strings.Builder
		b.WriteString("\r\033[2K" + page.Title + s.newline)
		for _, item := range page.Items {
			fmt.Fprintf(&b, "  %s: %s%s", item.Title, item.Body, s.newline)
		}
		b.WriteString("l to close, q to quit" + s.newline)
		fmt.Fprint(out, b.String())
	default:
		fmt.Fprintf(out, "\r\033[2K%16s", s.calc.Display())
	}
}

// tokenFor maps a key press to a keypad token. Enter commits, Escape and
// c clear.
func tokenFor(b byte) (domain.Token, bool) {
	switch b {
	case '\r', '\n':
		return domain.TokenCommit, true
	case keyEscape, 'c', 'C':
		return domain.TokenClear, true
	case 'x', 'X':
		return domain.TokenMul, true
	}
	tok := domain.Token(string(rune(b)))
	return tok, tok.Valid()
}
