package utility

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Run("sets correct headers and status", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteJSON(rr, http.StatusOK, map[string]string{"key": "value"})

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	})

	t.Run("encodes struct correctly", func(t *testing.T) {
		rr := httptest.NewRecorder()

		type testStruct struct {
			Name  string `json:"name"`
			Value int    `json:"value"`
		}
		WriteJSON(rr, http.StatusCreated, testStruct{Name: "test", Value: 42})

		// Response includes newline from json.Encoder
		assert.Equal(t, `{"name":"test","value":42}`+"\n", rr.Body.String())
	})

	t.Run("handles nil value", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteJSON(rr, http.StatusOK, nil)

		assert.Equal(t, "null\n", rr.Body.String())
	})
}

func TestHttpError(t *testing.T) {
	rr := httptest.NewRecorder()
	HttpError(rr, http.StatusBadRequest, "something went wrong")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, `{"error":"something went wrong"}`+"\n", rr.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Token string `json:"token"`
	}

	t.Run("decodes a single object", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"token":"5"}`))
		var b body
		require.NoError(t, DecodeJSON(req, 1024, &b))
		assert.Equal(t, "5", b.Token)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"token":"5","x":1}`))
		var b body
		assert.Error(t, DecodeJSON(req, 1024, &b))
	})

	t.Run("rejects trailing data", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"token":"5"}{"token":"6"}`))
		var b body
		assert.Error(t, DecodeJSON(req, 1024, &b))
	})

	t.Run("rejects bodies over the limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"token":"`+strings.Repeat("5", 64)+`"}`))
		var b body
		assert.Error(t, DecodeJSON(req, 16, &b))
	})
}

func TestBearerToken(t *testing.T) {
	testCases := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Bearer   abc  ", "abc"},
		{"Basic abc", ""},
		{"Bearer ", ""},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			assert.Equal(t, tc.want, BearerToken(req))
		})
	}
}

func TestGetenv(t *testing.T) {
	t.Run("returns environment variable when set", func(t *testing.T) {
		t.Setenv("TEST_GETENV_VAR", "test_value")
		assert.Equal(t, "test_value", Getenv("TEST_GETENV_VAR", "default"))
	})

	t.Run("returns default when not set", func(t *testing.T) {
		assert.Equal(t, "default_value", Getenv("TEST_GETENV_UNSET_VAR", "default_value"))
	})

	t.Run("returns default when empty", func(t *testing.T) {
		t.Setenv("TEST_GETENV_EMPTY_VAR", "")
		assert.Equal(t, "default_value", Getenv("TEST_GETENV_EMPTY_VAR", "default_value"))
	})
}
