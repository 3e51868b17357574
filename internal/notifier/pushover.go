package notifier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const PushoverEndpoint = "https://api.pushover.net/1/messages.json"

// StatusError is returned when the API answers with anything but 200.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("pushover: unexpected status %d: %s", e.StatusCode, e.Body)
}

type Pushover struct {
	token    string
	userKey  string
	endpoint string
	client   *http.Client
}

func NewPushover(token, userKey string) *Pushover {
	return &Pushover{
		token:    token,
		userKey:  userKey,
		endpoint: PushoverEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *Pushover) Send(ctx context.Context, message string) error {
	form := url.Values{
		"token":   {p.token},
		"user":    {p.userKey},
		"message": {message},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "build pushover request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "post pushover message")
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if readErr != nil {
		logger.WithError(readErr).Warn("⚠️ Could not read pushover response body")
	}
	if resp.StatusCode != http.StatusOK {
		detail := string(body)
		if readErr != nil {
			detail += fmt.Sprintf(" (read body: %v)", readErr)
		}
		logger.Errorf("❌ Failed to send message: %s", detail)
		return &StatusError{StatusCode: resp.StatusCode, Body: detail}
	}
	return nil
}
