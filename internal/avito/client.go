// Package avito is a minimal client for the Avito messenger API: listing a
// user's chats, fetching chat metadata and fetching recent messages.
package avito

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	errs "github.com/edgard/avitobridge/internal/errors"
	"github.com/edgard/avitobridge/internal/logger"
	"github.com/edgard/avitobridge/internal/metrics"
)

// Endpoint names used in errors, logs and metric labels.
const (
	EndpointListChats    = "list_chats"
	EndpointChatDetail   = "chat_detail"
	EndpointListMessages = "list_messages"
)

// maxErrorBody bounds how much of a failed response body ends up in an error.
const maxErrorBody = 512

// Source is the read side of the messenger API used by the relay.
type Source interface {
	ListChatIDs(ctx context.Context, limit int) ([]ChatID, error)
	GetChat(ctx context.Context, chatID ChatID) (ChatDetail, error)
	ListMessages(ctx context.Context, chatID ChatID, limit int) ([]Message, error)
}

// Config holds what the client needs to talk to the API.
type Config struct {
	BaseURL string
	Token   string
	UserID  string
	Timeout time.Duration
}

// Client implements Source over HTTP. Requests are never retried.
type Client struct {
	baseURL    string
	token      string
	userID     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client. A nil httpClient gets a pooled client with
// cfg.Timeout as its overall request timeout.
func NewClient(cfg Config, httpClient *http.Client, log *slog.Logger) (*Client, error) {
	if cfg.Token == "" {
		return nil, errs.NewConfigError("avito access token is required", nil)
	}
	if cfg.UserID == "" {
		return nil, errs.NewConfigError("avito user id is required", nil)
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil || cfg.BaseURL == "" {
		return nil, errs.NewConfigError("invalid avito base url", err)
	}
	if httpClient == nil {
		httpClient = newHTTPClient(cfg.Timeout)
	}
	if log == nil {
		log = logger.Discard()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		userID:     cfg.UserID,
		httpClient: httpClient,
		logger:     log.With("component", "avito_client"),
	}, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     90 * time.Second,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

// ListChatIDs returns up to limit chat ids in listing order. Entries without
// an id are dropped.
func (c *Client) ListChatIDs(ctx context.Context, limit int) ([]ChatID, error) {
	path := fmt.Sprintf("/messenger/v2/accounts/%s/chats", url.PathEscape(c.userID))
	query := url.Values{"limit": {strconv.Itoa(limit)}}

	var resp chatsResponse
	if err := c.getJSON(ctx, EndpointListChats, path, query, &resp); err != nil {
		return nil, err
	}

	ids := make([]ChatID, 0, len(resp.Chats))
	for _, chat := range resp.Chats {
		if chat.ID == "" {
			continue
		}
		ids = append(ids, chat.ID)
	}
	c.logger.DebugContext(ctx, "Listed chats", "returned", len(resp.Chats), "with_id", len(ids))
	return ids, nil
}

// GetChat returns the raw metadata object of one chat.
func (c *Client) GetChat(ctx context.Context, chatID ChatID) (ChatDetail, error) {
	path := fmt.Sprintf("/messenger/v2/accounts/%s/chats/%s", url.PathEscape(c.userID), url.PathEscape(string(chatID)))

	var raw json.RawMessage
	if err := c.getJSON(ctx, EndpointChatDetail, path, nil, &raw); err != nil {
		return nil, err
	}
	return ChatDetail(raw), nil
}

// ListMessages returns up to limit of the chat's most recent messages.
func (c *Client) ListMessages(ctx context.Context, chatID ChatID, limit int) ([]Message, error) {
	path := fmt.Sprintf("/messenger/v3/accounts/%s/chats/%s/messages/", url.PathEscape(c.userID), url.PathEscape(string(chatID)))
	query := url.Values{"limit": {strconv.Itoa(limit)}}

	var resp messagesResponse
	if err := c.getJSON(ctx, EndpointListMessages, path, query, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errs.NewAPIError(endpoint, 0, "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.IncSourceRequest(endpoint, 0)
		return errs.NewAPIError(endpoint, 0, "request failed", err)
	}
	defer resp.Body.Close()

	metrics.IncSourceRequest(endpoint, resp.StatusCode)
	c.logger.DebugContext(ctx, "Source API response",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := "unexpected status"
		if b := strings.TrimSpace(string(body)); b != "" {
			msg += ": " + b
		}
		return errs.NewAPIError(endpoint, resp.StatusCode, msg, nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.NewDecodeError(endpoint+": decode response", err)
	}
	return nil
}
