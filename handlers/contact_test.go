package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSubmitContact(t *testing.T) {
	router := setupContactRouter()

	body := map[string]string{
		"name":    "Nour Hassan",
		"email":   "nour@test.com",
		"subject": "Delivery question",
		"message": "When does my order ship to Giza?",
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/contact", body))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if msg, ok := parseResponse(w)["message"].(string); !ok || msg == "" {
		t.Error("expected confirmation message")
	}
}

func TestSubmitContactMissingFields(t *testing.T) {
	router := setupContactRouter()

	body := map[string]string{"name": "Nour Hassan", "email": "nour@test.com"}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/contact", body))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSubmitContactRejectsBadEmail(t *testing.T) {
	router := setupContactRouter()

	body := map[string]string{
		"name":    "Nour Hassan",
		"email":   "not-an-email",
		"subject": "Hello",
		"message": "A message",
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/contact", body))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}
