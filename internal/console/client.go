package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/hrdesk-io/hrdesk/internal/requests"
	apperrors "github.com/hrdesk-io/hrdesk/pkg/errors"
)

// CredentialSource supplies the bearer token persisted by the session layer.
// The second return is false while the user is not yet authenticated.
type CredentialSource interface {
	Token() (string, bool)
}

// StaticCredentials is a fixed-token CredentialSource, used by tests and CLI
// tooling.
type StaticCredentials string

// Token implements CredentialSource.
func (s StaticCredentials) Token() (string, bool) {
	token := strings.TrimSpace(string(s))
	return token, token != ""
}

// Client talks to the portal backend on behalf of the console.
type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialSource
}

// NewClient constructs a Client. The transport default timeout applies; the
// console does not override it.
func NewClient(baseURL string, creds CredentialSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		creds:   creds,
	}
}

type wireRequest struct {
	ID        int64           `json:"id"`
	Type      requests.Kind   `json:"type"`
	Status    requests.Status `json:"status"`
	FilePath  string          `json:"file_path"`
	OwnerName string          `json:"owner_name"`
	CreatedAt time.Time       `json:"created_at"`
}

type wireNotification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	MessageFr string    `json:"message_fr"`
	Data      string    `json:"data"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type wireEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// FetchRequests loads the authoritative admin request list.
func (c *Client) FetchRequests(ctx context.Context) ([]Request, error) {
	var rows []wireRequest
	if err := c.call(ctx, http.MethodGet, "/api/admin/requests", nil, "", &rows); err != nil {
		return nil, err
	}

	items := make([]Request, 0, len(rows))
	for _, row := range rows {
		items = append(items, Request{
			ID:        row.ID,
			Kind:      row.Type,
			Status:    requests.NormalizeStatus(row.Status),
			FilePath:  row.FilePath,
			OwnerName: row.OwnerName,
			CreatedAt: row.CreatedAt,
		})
	}
	return items, nil
}

// FetchNotifications loads the admin feed.
func (c *Client) FetchNotifications(ctx context.Context) ([]Notification, error) {
	var rows []wireNotification
	if err := c.call(ctx, http.MethodGet, "/api/admin/notifications/all", nil, "", &rows); err != nil {
		return nil, err
	}

	items := make([]Notification, 0, len(rows))
	for _, row := range rows {
		items = append(items, Notification(row))
	}
	return items, nil
}

// UpdateStatus posts a durable lifecycle transition. An empty kind fails
// before any network work.
func (c *Client) UpdateStatus(ctx context.Context, key requests.CompositeKey, status requests.Status) (Request, error) {
	if strings.TrimSpace(string(key.Kind)) == "" {
		return Request{}, apperrors.ErrTypeMissing
	}

	path := fmt.Sprintf("/api/admin/requests/%s/%d/status", key.Kind.Slug(), key.ID)
	body, err := json.Marshal(map[string]any{"status": status})
	if err != nil {
		return Request{}, err
	}

	var row wireRequest
	if err := c.call(ctx, http.MethodPost, path, bytes.NewReader(body), "application/json", &row); err != nil {
		return Request{}, err
	}
	return Request{
		ID:        row.ID,
		Kind:      row.Type,
		Status:    requests.NormalizeStatus(row.Status),
		FilePath:  row.FilePath,
		OwnerName: row.OwnerName,
		CreatedAt: row.CreatedAt,
	}, nil
}

// Reject marks a request rejected; delete-as-reject shares this path.
func (c *Client) Reject(ctx context.Context, key requests.CompositeKey) (Request, error) {
	return c.UpdateStatus(ctx, key, requests.StatusRejected)
}

// UploadFile posts the admin attachment as multipart form data.
func (c *Client) UploadFile(ctx context.Context, key requests.CompositeKey, filename string, file io.Reader) (Request, error) {
	if strings.TrimSpace(string(key.Kind)) == "" {
		return Request{}, apperrors.ErrTypeMissing
	}
	if file == nil {
		return Request{}, apperrors.ErrFileRequired
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return Request{}, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return Request{}, err
	}
	if err := writer.Close(); err != nil {
		return Request{}, err
	}

	path := fmt.Sprintf("/api/admin/requests/upload-file/%s/%d", key.Kind.Slug(), key.ID)

	var row wireRequest
	if err := c.call(ctx, http.MethodPost, path, &body, writer.FormDataContentType(), &row); err != nil {
		return Request{}, err
	}
	return Request{
		ID:        row.ID,
		Kind:      row.Type,
		Status:    requests.NormalizeStatus(row.Status),
		FilePath:  row.FilePath,
		OwnerName: row.OwnerName,
		CreatedAt: row.CreatedAt,
	}, nil
}

// ReplyUrgent posts the admin answer to a chat item.
func (c *Client) ReplyUrgent(ctx context.Context, messageID, reply string) error {
	body, err := json.Marshal(map[string]any{"reply": reply})
	if err != nil {
		return err
	}
	path := "/api/admin/urgent-messages/" + messageID + "/reply"
	return c.call(ctx, http.MethodPost, path, bytes.NewReader(body), "application/json", nil)
}

// DeleteUrgent removes a chat item.
func (c *Client) DeleteUrgent(ctx context.Context, messageID string) error {
	return c.call(ctx, http.MethodDelete, "/api/admin/urgent-messages/"+messageID, nil, "", nil)
}

func (c *Client) call(ctx context.Context, method, path string, body io.Reader, contentType string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("console: build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.creds != nil {
		if token, ok := c.creds.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.Wrap(err, Localize(LocaleEnglish, MsgNetworkFailure))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Wrap(err, Localize(LocaleEnglish, MsgNetworkFailure))
	}

	var envelope wireEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return apperrors.Wrap(err, Localize(LocaleEnglish, MsgNetworkFailure))
	}

	if !envelope.Success {
		code := "INTERNAL_ERROR"
		message := Localize(LocaleEnglish, MsgNetworkFailure)
		if envelope.Error != nil {
			code = envelope.Error.Code
			message = envelope.Error.Message
		}
		return apperrors.New(code, message, resp.StatusCode)
	}

	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		return fmt.Errorf("console: decode response: %w", err)
	}
	return nil
}
