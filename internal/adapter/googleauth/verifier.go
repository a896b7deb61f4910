package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// ErrInvalidToken indicates Google rejected the ID token.
var ErrInvalidToken = errors.New("invalid google id token")

const tokeninfoURL = "https://oauth2.googleapis.com/tokeninfo"

// Claims is the subset of the tokeninfo response sign-in needs.
type Claims struct {
	Email         string
	EmailVerified bool
	Name          string
	HostedDomain  string
}

// Verifier validates Google ID tokens.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*Claims, error)
}

// HTTPVerifier implements Verifier against the tokeninfo endpoint.
type HTTPVerifier struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPVerifier(logger *slog.Logger) *HTTPVerifier {
	return &HTTPVerifier{
		endpoint: tokeninfoURL,
		logger:   logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewHTTPVerifierWithEndpoint is used by tests to point at a stub server.
func NewHTTPVerifierWithEndpoint(endpoint string, logger *slog.Logger) *HTTPVerifier {
	v := NewHTTPVerifier(logger)
	v.endpoint = endpoint
	return v
}

// tokeninfo encodes booleans as strings.
type tokeninfoResponse struct {
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	HostedDomain  string `json:"hd"`
}

func (v *HTTPVerifier) Verify(ctx context.Context, idToken string) (*Claims, error) {
	endpoint := fmt.Sprintf("%s?id_token=%s", v.endpoint, url.QueryEscape(idToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		v.logger.Warn("tokeninfo rejected token",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)))
		return nil, ErrInvalidToken
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var data tokeninfoResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, err
	}
	if data.Email == "" {
		return nil, ErrInvalidToken
	}

	return &Claims{
		Email:         data.Email,
		EmailVerified: data.EmailVerified == "true",
		Name:          data.Name,
		HostedDomain:  data.HostedDomain,
	}, nil
}
