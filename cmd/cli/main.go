package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/smallwat3r/stealthpad/internal/decoy"
	"github.com/smallwat3r/stealthpad/internal/domain"
	"github.com/smallwat3r/stealthpad/internal/utility"
)

const defaultBaseURL = "http://localhost:8080"

const maxRetries = 5

var (
	retryDelay = 1 * time.Second
	logger     = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	baseURL := strings.TrimRight(utility.Getenv("STEALTHPAD_URL", defaultBaseURL), "/")

	var err error
	switch os.Args[1] {
	case "press":
		if len(os.Args) != 3 {
			fmt.Fprintf(os.Stderr, "Usage: %s press <keys>\n", os.Args[0])
			os.Exit(1)
		}
		err = pressKeys(os.Stdout, baseURL, os.Args[2])
	case "decoy":
		err = showDecoy(os.Stdout, baseURL)
	case "lock":
		err = lock(baseURL)
	case "login":
		if len(os.Args) != 4 {
			fmt.Fprintf(os.Stderr, "Usage: %s login <auth-token> <refresh-token>\n", os.Args[0])
			os.Exit(1)
		}
		err = login(baseURL, os.Args[2], os.Args[3])
	case "logout":
		err = logout(baseURL)
	case "help":
		printUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage(os.Stdout)
		os.Exit(1)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg(os.Args[1])
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: %s <command> [arguments]\n", os.Args[0])
	fmt.Fprintln(w, "A client for the stealthpad calculator.")
	fmt.Fprintln(w, "\nCommands:")
	fmt.Fprintln(w, "  press <keys>                  Press calculator keys, e.g. \"12+7=\"")
	fmt.Fprintln(w, "  decoy                         Show the notes page")
	fmt.Fprintln(w, "  lock                          Return to the calculator")
	fmt.Fprintln(w, "  login <auth> <refresh>        Store session tokens")
	fmt.Fprintln(w, "  logout                        Clear session tokens")
	fmt.Fprintln(w, "  help                          Show this help message")
	fmt.Fprintln(w, "\nEnvironment variables:")
	fmt.Fprintf(w, "  STEALTHPAD_URL                Base URL of the server (default: %s)\n", defaultBaseURL)
}

// doRequestWithRetry retries on 502 while the server is still starting.
// newReq builds a fresh request per attempt so bodies are never reused.
func doRequestWithRetry(newReq func() (*http.Request, error)) (*http.Response, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	for i := 0; i < maxRetries; i++ {
		if i > 0 {
			logger.Warn().Msgf("server returned 502, retrying in %v... (%d/%d)", retryDelay, i, maxRetries-1)
			time.Sleep(retryDelay)
		}

		req, err := newReq()
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusBadGateway {
			return resp, nil
		}

		resp.Body.Close()
	}

	return nil, fmt.Errorf("server unavailable after %d retries", maxRetries)
}

func send(method, url string, body any) (*http.Response, error) {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		payload = b
	}
	return doRequestWithRetry(func() (*http.Request, error) {
		var r io.Reader
		if payload != nil {
			r = bytes.NewReader(payload)
		}
		req, err := http.NewRequest(method, url, r)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
}

func expect(resp *http.Response, status int) error {
	if resp.StatusCode == status {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("status %d, body: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

// pressKeys sends each character of keys as one token and prints the last
// display and the screen the server reports.
func pressKeys(w io.Writer, baseURL, keys string) error {
	var last domain.KeyRes
	for _, r := range keys {
		resp, err := send(http.MethodPost, baseURL+"/keys", domain.KeyReq{Token: string(r)})
		if err != nil {
			return err
		}
		err = expect(resp, http.StatusOK)
		if err == nil {
			err = json.NewDecoder(resp.Body).Decode(&last)
		}
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("key %q: %w", r, err)
		}
	}
	fmt.Fprintln(w, last.Display)
	if last.Screen != "" && last.Screen != domain.DestinationNone.String() {
		fmt.Fprintf(w, "screen: %s\n", last.Screen)
	}
	return nil
}

func showDecoy(w io.Writer, baseURL string) error {
	resp, err := send(http.MethodGet, baseURL+"/decoy", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := expect(resp, http.StatusOK); err != nil {
		return err
	}

	var page decoy.Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	fmt.Fprintln(w, page.Title)
	for _, item := range page.Items {
		fmt.Fprintf(w, "- %s: %s\n", item.Title, item.Body)
	}
	return nil
}

func lock(baseURL string) error {
	resp, err := send(http.MethodPost, baseURL+"/lock", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expect(resp, http.StatusNoContent)
}

func login(baseURL, authToken, refreshToken string) error {
	resp, err := send(http.MethodPost, baseURL+"/session",
		domain.SessionReq{AuthToken: authToken, RefreshToken: refreshToken})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expect(resp, http.StatusNoContent)
}

func logout(baseURL string) error {
	resp, err := send(http.MethodDelete, baseURL+"/session", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expect(resp, http.StatusNoContent)
}
