// Package telegram is a typed HTTP client for the parts of the Telegram
// Bot API this bot uses: long polling, text replies, media uploads,
// callback handling.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the production Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// APIError is a non-ok response from the Bot API.
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: %d %s", e.Code, e.Description)
}

// Client calls the Bot API for one bot token.
type Client struct {
	token   string
	baseURL string

	// client serves short calls; uploadClient serves media uploads and
	// long polls, which routinely outlive a normal request timeout.
	client       *http.Client
	uploadClient *http.Client
}

// NewClient creates a Bot API client.
func NewClient(token string) *Client {
	return &Client{
		token:        token,
		baseURL:      DefaultBaseURL,
		client:       &http.Client{Timeout: 30 * time.Second},
		uploadClient: &http.Client{Timeout: 10 * time.Minute},
	}
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (c *Client) SetBaseURL(base string) {
	c.baseURL = base
}

func (c *Client) endpoint(method string) string {
	return c.baseURL + "/bot" + c.token + "/" + method
}

// call performs a form-encoded API call and decodes the result envelope
// into out (when non-nil).
func (c *Client) call(ctx context.Context, httpClient *http.Client, method string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(method), bytes.NewBufferString(params.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	return decodeEnvelope(method, resp.Body, out)
}

func decodeEnvelope(method string, r io.Reader, out any) error {
	var envelope struct {
		OK          bool            `json:"ok"`
		Result      json.RawMessage `json:"result"`
		ErrorCode   int             `json:"error_code"`
		Description string          `json:"description"`
	}
	if err := json.NewDecoder(r).Decode(&envelope); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if !envelope.OK {
		return &APIError{Code: envelope.ErrorCode, Description: envelope.Description}
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
	}
	return nil
}

// GetMe returns the bot's own account.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var me User
	if err := c.call(ctx, c.client, "getMe", url.Values{}, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// GetUpdates long-polls for updates after offset. timeout is the server
// hold time in seconds.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	params := url.Values{}
	params.Set("offset", strconv.FormatInt(offset, 10))
	params.Set("timeout", strconv.Itoa(timeout))
	params.Set("allowed_updates", `["message","callback_query"]`)

	var updates []Update
	if err := c.call(ctx, c.uploadClient, "getUpdates", params, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessage sends a text message.
func (c *Client) SendMessage(ctx context.Context, chatID, text string, opts *SendOptions) (*Message, error) {
	params := url.Values{}
	params.Set("chat_id", chatID)
	params.Set("text", text)
	if opts != nil {
		if opts.ReplyTo != 0 {
			params.Set("reply_to_message_id", strconv.Itoa(opts.ReplyTo))
		}
		if opts.ParseMode != "" {
			params.Set("parse_mode", opts.ParseMode)
		}
		if opts.Markup != nil {
			markup, err := json.Marshal(opts.Markup)
			if err != nil {
				return nil, fmt.Errorf("marshal markup: %w", err)
			}
			params.Set("reply_markup", string(markup))
		}
	}

	var msg Message
	if err := c.call(ctx, c.client, "sendMessage", params, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SendVideo uploads raw video bytes.
func (c *Client) SendVideo(ctx context.Context, chatID string, data []byte, filename string, opts *MediaOptions) (*Message, error) {
	return c.sendMedia(ctx, "sendVideo", "video", chatID, data, filename, opts)
}

// SendPhoto uploads raw image bytes.
func (c *Client) SendPhoto(ctx context.Context, chatID string, data []byte, filename string, opts *MediaOptions) (*Message, error) {
	return c.sendMedia(ctx, "sendPhoto", "photo", chatID, data, filename, opts)
}

// SendAudio uploads raw audio bytes.
func (c *Client) SendAudio(ctx context.Context, chatID string, data []byte, filename string, opts *MediaOptions) (*Message, error) {
	return c.sendMedia(ctx, "sendAudio", "audio", chatID, data, filename, opts)
}

func (c *Client) sendMedia(ctx context.Context, method, field, chatID string, data []byte, filename string, opts *MediaOptions) (*Message, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if err := w.WriteField("chat_id", chatID); err != nil {
		return nil, fmt.Errorf("write field: %w", err)
	}
	if opts != nil {
		if opts.Caption != "" {
			w.WriteField("caption", opts.Caption)
			w.WriteField("parse_mode", "HTML")
		}
		if opts.Thumbnail != "" {
			w.WriteField("thumbnail", opts.Thumbnail)
		}
		if opts.ReplyTo != 0 {
			w.WriteField("reply_to_message_id", strconv.Itoa(opts.ReplyTo))
		}
		if opts.Markup != nil {
			markup, err := json.Marshal(opts.Markup)
			if err != nil {
				return nil, fmt.Errorf("marshal markup: %w", err)
			}
			w.WriteField("reply_markup", string(markup))
		}
	}

	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write media: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(method), &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	var msg Message
	if err := decodeEnvelope(method, resp.Body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DeleteMessage removes a message the bot sent.
func (c *Client) DeleteMessage(ctx context.Context, chatID string, messageID int) error {
	params := url.Values{}
	params.Set("chat_id", chatID)
	params.Set("message_id", strconv.Itoa(messageID))
	return c.call(ctx, c.client, "deleteMessage", params, nil)
}

// AnswerCallbackQuery acknowledges a button press.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	params := url.Values{}
	params.Set("callback_query_id", callbackID)
	return c.call(ctx, c.client, "answerCallbackQuery", params, nil)
}
