package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusBadRequest, "invalid form")

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %q", ct)
	}
	if body := w.Body.String(); body != "{\"error\":\"invalid form\"}\n" {
		t.Errorf("Unexpected body %q", body)
	}
}

func TestHTMLRendersFailureAsServerError(t *testing.T) {
	w := httptest.NewRecorder()

	HTML(w, http.StatusOK, func(out io.Writer) error {
		_, _ = io.WriteString(out, "<p>half a page")
		return errors.New("template exploded")
	})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Partial page must not be written, got content type %q", ct)
	}
}

func TestHTML(t *testing.T) {
	w := httptest.NewRecorder()

	HTML(w, http.StatusOK, func(out io.Writer) error {
		_, err := io.WriteString(out, "<p>ok</p>")
		return err
	})

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Errorf("Unexpected content type %q", got)
	}
	if w.Body.String() != "<p>ok</p>" {
		t.Errorf("Unexpected body %q", w.Body.String())
	}
}
