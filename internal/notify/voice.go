package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nhle/medreminder/internal/model"
)

// VoiceSink places a phone call that reads the reminder aloud through
// the Twilio Calls API.
type VoiceSink struct {
	cfg        model.VoiceConfig
	httpClient *http.Client
	maxRetries int
}

// twilioCall is the subset of the Calls API response we read.
type twilioCall struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

// twilioError is the Twilio REST error body.
type twilioError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
}

// NewVoiceSink creates a VoiceSink. An empty BaseURL means the public
// Twilio API.
func NewVoiceSink(cfg model.VoiceConfig) *VoiceSink {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.twilio.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &VoiceSink{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: 2,
	}
}

func (v *VoiceSink) Name() string { return "voice" }

func (v *VoiceSink) Notify(ctx context.Context, r model.Reminder) error {
	tmpl := v.cfg.Message
	if tmpl == "" {
		tmpl = DefaultVoiceMessage
	}
	twiml, err := buildTwiML(expand(tmpl, r), v.cfg.Language, v.cfg.Voice)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("To", v.cfg.To)
	form.Set("From", v.cfg.From)
	form.Set("Twiml", twiml)

	_, err = v.createCall(ctx, form)
	return err
}

// buildTwiML renders <Response><Say>msg</Say></Response> with msg and the
// optional attributes XML-escaped.
func buildTwiML(msg, language, voice string) (string, error) {
	var b strings.Builder
	b.WriteString("<Response><Say")
	for _, attr := range []struct{ name, value string }{
		{"language", language},
		{"voice", voice},
	} {
		if attr.value == "" {
			continue
		}
		b.WriteString(" " + attr.name + `="`)
		if err := xml.EscapeText(&b, []byte(attr.value)); err != nil {
			return "", fmt.Errorf("escaping %s: %w", attr.name, err)
		}
		b.WriteString(`"`)
	}
	b.WriteString(">")
	if err := xml.EscapeText(&b, []byte(msg)); err != nil {
		return "", fmt.Errorf("escaping message: %w", err)
	}
	b.WriteString("</Say></Response>")
	return b.String(), nil
}

// createCall posts the form to the Calls endpoint, retrying on 429 and
// 5xx responses.
func (v *VoiceSink) createCall(ctx context.Context, form url.Values) (*twilioCall, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls.json",
		v.cfg.BaseURL, url.PathEscape(v.cfg.AccountSID))
	payload := form.Encode()

	var lastErr error
	for attempt := 0; attempt <= v.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(payload))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.SetBasicAuth(v.cfg.AccountSID, v.cfg.AuthToken)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "application/json")

		resp, err := v.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("calling twilio: %w", err)
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("reading response body: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("twilio returned %d", resp.StatusCode)
			if attempt == v.maxRetries {
				break
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryAfterDuration(resp, attempt)):
				continue
			}
		}

		if resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("twilio authentication failed (401): check account SID and auth token")
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			var tErr twilioError
			if json.Unmarshal(body, &tErr) == nil && tErr.Message != "" {
				return nil, fmt.Errorf("twilio API error (%d, code %d): %s", resp.StatusCode, tErr.Code, tErr.Message)
			}
			return nil, fmt.Errorf("unexpected status %d from twilio: %s", resp.StatusCode, string(body))
		}

		var call twilioCall
		if err := json.Unmarshal(body, &call); err != nil {
			return nil, fmt.Errorf("unmarshaling twilio response: %w", err)
		}
		return &call, nil
	}

	return nil, fmt.Errorf("max retries (%d) exceeded: %w", v.maxRetries, lastErr)
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 10*time.Second {
		backoff = 10 * time.Second
	}
	return backoff
}
