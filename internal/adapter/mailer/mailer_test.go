package mailer

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestRenderTemplates(t *testing.T) {
	body, err := renderTemplate("order_confirmation", OrderEmail{OrderID: 42, PatientName: "Pat", TestName: "Thyroid Panel"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(body, "Thyroid Panel") || !strings.Contains(body, "#42") {
		t.Fatalf("unexpected body: %s", body)
	}

	body, err = renderTemplate("password_reset", struct{ Name, Link string }{"Pat", "https://eden.clinic/reset?token=abc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(body, "https://eden.clinic/reset?token=abc") {
		t.Fatalf("unexpected body: %s", body)
	}

	if _, err := renderTemplate("missing", nil); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestTemplatesEscapeHTML(t *testing.T) {
	body, err := renderTemplate("result_ready", struct{ Name, TestName string }{"<script>x</script>", "Iron"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(body, "<script>") {
		t.Fatalf("expected escaped name, got: %s", body)
	}
}

func TestSendGridMailerSend(t *testing.T) {
	var captured struct {
		Personalizations []struct {
			To []struct {
				Email string `json:"email"`
			} `json:"to"`
		} `json:"personalizations"`
		Subject string `json:"subject"`
		Content []struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"content"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/mail/send" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Fatalf("unexpected authorization: %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	m := NewSendGridWithHost("key", "noreply@eden.clinic", server.URL, testLogger())
	err := m.SendOrderConfirmation(context.Background(), "pat@example.com", OrderEmail{OrderID: 42, PatientName: "Pat", TestName: "Thyroid Panel"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(captured.Personalizations) != 1 || captured.Personalizations[0].To[0].Email != "pat@example.com" {
		t.Fatalf("unexpected recipient: %+v", captured.Personalizations)
	}
	if captured.Subject != "Order confirmed: Thyroid Panel" {
		t.Fatalf("unexpected subject: %q", captured.Subject)
	}
	if len(captured.Content) == 0 || !strings.Contains(captured.Content[len(captured.Content)-1].Value, "#42") {
		t.Fatalf("unexpected content: %+v", captured.Content)
	}
}

func TestSendGridMailerRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	m := NewSendGridWithHost("bad-key", "noreply@eden.clinic", server.URL, testLogger())
	if err := m.SendResultReady(context.Background(), "pat@example.com", "Pat", "Iron"); err == nil {
		t.Fatal("expected error")
	}
}

func TestNoopMailer(t *testing.T) {
	n := NewNoop(testLogger())
	ctx := context.Background()
	if err := n.SendOrderConfirmation(ctx, "a@b.c", OrderEmail{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := n.SendOrderNotice(ctx, "a@b.c", OrderEmail{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := n.SendResultReady(ctx, "a@b.c", "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := n.SendPasswordReset(ctx, "a@b.c", "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := n.SendWelcome(ctx, "a@b.c", "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
