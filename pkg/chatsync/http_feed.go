package chatsync

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3/client"
)

// HTTPFeed talks to the REST API with a bearer token.
type HTTPFeed struct {
	cli *client.Client
}

func NewHTTPFeed(baseURL, token string, timeout time.Duration) *HTTPFeed {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	cli := client.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Authorization", "Bearer "+token)
	return &HTTPFeed{cli: cli}
}

func (f *HTTPFeed) History(ctx context.Context, peerID string) ([]Message, error) {
	resp, err := f.cli.Get("/chat/messages/:recipientId", client.Config{
		Ctx:       ctx,
		PathParam: map[string]string{"recipientId": peerID},
	})
	if err != nil {
		return nil, err
	}
	defer resp.Close()

	var out struct {
		Messages []Message `json:"messages"`
		Error    string    `json:"error"`
	}
	if err := decode(resp, &out, &out.Error); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (f *HTTPFeed) Send(ctx context.Context, peerID, text string) (Message, error) {
	resp, err := f.cli.Post("/chat/message", client.Config{
		Ctx:  ctx,
		Body: map[string]string{"recipientId": peerID, "text": text},
	})
	if err != nil {
		return Message{}, err
	}
	defer resp.Close()

	var out struct {
		Message Message `json:"message"`
		Error   string  `json:"error"`
	}
	if err := decode(resp, &out, &out.Error); err != nil {
		return Message{}, err
	}
	return out.Message, nil
}

// decode fills dst on success and turns anything else into an error carrying
// the server's {error} text. Error replies may carry no JSON at all, so the
// body only has to parse on 2xx.
func decode(resp *client.Response, dst any, errText *string) error {
	code := resp.StatusCode()
	jsonErr := resp.JSON(dst)
	switch {
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code < 200 || code > 299:
		return &StatusError{Code: code, Message: *errText}
	case jsonErr != nil:
		return fmt.Errorf("%w: %w", ErrMalformedResponse, jsonErr)
	}
	return nil
}
