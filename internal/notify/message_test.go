package notify

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/medreminder/internal/model"
)

func sampleReminder(t *testing.T) model.Reminder {
	t.Helper()
	due, err := model.ParseDue("2024-01-01 08:30")
	require.NoError(t, err)
	return model.Reminder{ID: "r1", Name: "Aspirin", Dosage: "2 tablets", DueAt: due}
}

func TestBody(t *testing.T) {
	assert.Equal(t,
		"Time to take your medicine:\n\nName: Aspirin\nDosage: 2 tablets\nTime: 08:30",
		Body(sampleReminder(t)))
}

func TestBuildTwiMLEscapes(t *testing.T) {
	got, err := buildTwiML(`Take <B&Q> "now"`, "", "")
	require.NoError(t, err)
	assert.Equal(t, "<Response><Say>Take &lt;B&amp;Q&gt; &#34;now&#34;</Say></Response>", got)

	got, err = buildTwiML("வணக்கம்", "ta-IN", "Polly.Kajal")
	require.NoError(t, err)
	assert.Equal(t, `<Response><Say language="ta-IN" voice="Polly.Kajal">வணக்கம்</Say></Response>`, got)
}

func TestExpandPlaceholders(t *testing.T) {
	assert.Equal(t,
		"Reminder! It's time to take your medicine Aspirin, dosage 2 tablets.",
		expand(DefaultVoiceMessage, sampleReminder(t)))
	assert.Equal(t, "Aspirin at 08:30", expand("{name} at {time}", sampleReminder(t)))
}

func TestComposeEmail(t *testing.T) {
	date := time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC)
	raw, err := composeEmail("me@example.com", "you@example.com", Subject, Body(sampleReminder(t)), date)
	require.NoError(t, err)

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer mr.Close()

	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Medicine Reminder", subject)

	from, err := mr.Header.AddressList("From")
	require.NoError(t, err)
	require.Len(t, from, 1)
	assert.Equal(t, "me@example.com", from[0].Address)

	to, err := mr.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 1)
	assert.Equal(t, "you@example.com", to[0].Address)

	part, err := mr.NextPart()
	require.NoError(t, err)
	body, err := io.ReadAll(part.Body)
	require.NoError(t, err)
	// MIME bodies use CRLF line endings on the wire.
	assert.Equal(t, Body(sampleReminder(t)), strings.ReplaceAll(string(body), "\r\n", "\n"))
}

func TestEmailSinkSendsComposedMessage(t *testing.T) {
	cfg := model.EmailConfig{From: "me@example.com", To: "you@example.com", SMTPHost: "smtp.example.com", SMTPPort: "587"}
	sink := NewEmailSink(cfg)

	var sent []byte
	sink.send = func(_ context.Context, got model.EmailConfig, msg []byte) error {
		assert.Equal(t, cfg, got)
		sent = msg
		return nil
	}

	require.NoError(t, sink.Notify(context.Background(), sampleReminder(t)))
	assert.Contains(t, string(sent), "Subject: Medicine Reminder")
}

func TestVoiceSinkCreatesCall(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/2010-04-01/Accounts/AC123/Calls.json", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "tok", pass)

		require.NoError(t, r.ParseForm())
		form = r.PostForm

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"CA1","status":"queued"}`))
	}))
	defer srv.Close()

	sink := NewVoiceSink(model.VoiceConfig{
		AccountSID: "AC123", AuthToken: "tok", From: "+15550001", To: "+15550002",
		BaseURL: srv.URL + "/",
	})
	require.NoError(t, sink.Notify(context.Background(), sampleReminder(t)))

	assert.Equal(t, "+15550002", form.Get("To"))
	assert.Equal(t, "+15550001", form.Get("From"))
	assert.Equal(t,
		"<Response><Say>Reminder! It&#39;s time to take your medicine Aspirin, dosage 2 tablets.</Say></Response>",
		form.Get("Twiml"))
}

func TestVoiceSinkReportsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"Invalid 'To' Phone Number"}`))
	}))
	defer srv.Close()

	sink := NewVoiceSink(model.VoiceConfig{AccountSID: "AC1", AuthToken: "t", BaseURL: srv.URL})
	err := sink.Notify(context.Background(), sampleReminder(t))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "21211"))
}

func TestVoiceSinkUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	sink := NewVoiceSink(model.VoiceConfig{AccountSID: "AC1", AuthToken: "bad", BaseURL: srv.URL})
	err := sink.Notify(context.Background(), sampleReminder(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestVoiceSinkGivesUpWithoutFinalWait(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	sink := NewVoiceSink(model.VoiceConfig{AccountSID: "AC1", AuthToken: "t", BaseURL: srv.URL})
	sink.maxRetries = 0

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	err := sink.Notify(ctx, sampleReminder(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries (0) exceeded")
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, int32(1), hits.Load())
}
