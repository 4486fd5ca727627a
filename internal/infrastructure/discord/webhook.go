package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sngm3741/rank-relay/api/internal/relay/domain"
)

// ErrWebhookNotConfigured is returned when no webhook URL was supplied.
var ErrWebhookNotConfigured = errors.New("webhook URL is not configured")

const defaultTimeout = 10 * time.Second

// Client posts messages to a Discord-compatible webhook.
type Client struct {
	httpClient *http.Client
	url        string
}

// NewClient returns a Client for url. A nil httpClient gets a default timeout.
func NewClient(httpClient *http.Client, url string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{httpClient: httpClient, url: strings.TrimSpace(url)}
}

// Send posts msg as a JSON body.
func (c *Client) Send(ctx context.Context, msg domain.WebhookMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("Webhook 送信用ペイロードの作成に失敗: %w", err)
	}
	return c.post(ctx, "application/json", bytes.NewReader(body))
}

// SendWithFile posts msg as payload_json together with the file content as
// a single multipart upload.
func (c *Client) SendWithFile(ctx context.Context, msg domain.WebhookMessage, file domain.ProofFile) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("Webhook 送信用ペイロードの作成に失敗: %w", err)
	}

	src, err := os.Open(file.Path)
	if err != nil {
		return fmt.Errorf("添付ファイルを開けません: %w", err)
	}
	defer src.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("payload_json", string(payload)); err != nil {
		return fmt.Errorf("payload_json の書き込みに失敗: %w", err)
	}
	part, err := writer.CreateFormFile("file", attachmentName(file))
	if err != nil {
		return fmt.Errorf("添付ファイルパートの作成に失敗: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("添付ファイルの読み込みに失敗: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("multipart の終端処理に失敗: %w", err)
	}

	return c.post(ctx, writer.FormDataContentType(), &buf)
}

func attachmentName(file domain.ProofFile) string {
	name := filepath.Base(strings.TrimSpace(file.OriginalName))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = filepath.Base(file.Path)
	}
	return name
}

func (c *Client) post(ctx context.Context, contentType string, body io.Reader) error {
	if c.url == "" {
		return ErrWebhookNotConfigured
	}

	timeout := c.httpClient.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctxWithTimeout, http.MethodPost, c.url, body)
	if err != nil {
		return fmt.Errorf("Webhook リクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("Webhook リクエストに失敗: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		message, _ := io.ReadAll(io.LimitReader(res.Body, 1<<16))
		return fmt.Errorf("Webhook 送信でエラーが発生: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(message)))
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}
