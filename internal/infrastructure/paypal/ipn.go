package paypal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sngm3741/rank-relay/api/internal/relay/domain"
)

const (
	LiveEndpoint    = "https://ipnpb.paypal.com/cgi-bin/webscr"
	SandboxEndpoint = "https://ipnpb.sandbox.paypal.com/cgi-bin/webscr"

	userAgent       = "rank-relay IPN Verification"
	maxVerdictBytes = 4 << 10
	defaultTimeout  = 10 * time.Second
)

// Verifier runs the IPN echo round trip against PayPal.
type Verifier struct {
	httpClient *http.Client
	endpoint   string
}

func NewVerifier(httpClient *http.Client, endpoint string) *Verifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = LiveEndpoint
	}
	return &Verifier{httpClient: httpClient, endpoint: endpoint}
}

// Verify posts cmd=_notify-validate followed by the untouched callback body
// and returns the plain-text verdict (VERIFIED or INVALID).
func (v *Verifier) Verify(ctx context.Context, cb domain.PaymentCallback) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := v.httpClient.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(cb.VerificationBody()))
	if err != nil {
		return "", fmt.Errorf("IPN 検証リクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	res, err := v.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("IPN 検証リクエストに失敗: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxVerdictBytes))
	if err != nil {
		return "", fmt.Errorf("IPN 検証レスポンスの読み込みに失敗: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", fmt.Errorf("IPN 検証でエラーが発生: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return string(body), nil
}
