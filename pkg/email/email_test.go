package email

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/mindcare_backend/config"
)

func TestBuildCrisisAlertEmail(t *testing.T) {
	msg := BuildCrisisAlertEmail(CrisisAlertData{
		PsychologistName:  "Dr. Silva",
		PsychologistEmail: "dr@example.com",
		PatientName:       "Joana <script>",
		CrisisID:          "crisis_1718000000000_abc123",
		RaisedAt:          time.Date(2024, 6, 10, 6, 13, 20, 0, time.UTC),
	})

	assert.Equal(t, []string{"dr@example.com"}, msg.To)
	assert.Equal(t, "[MindCare] Crisis alert from Joana <script>", msg.Subject)
	assert.Contains(t, msg.TextBody, "crisis_1718000000000_abc123")
	assert.Contains(t, msg.TextBody, "2024-06-10 06:13 UTC")
	assert.Contains(t, msg.HTMLBody, "Joana &lt;script&gt;")
	assert.NotContains(t, msg.HTMLBody, "<script>")
}

func TestBuildMessage(t *testing.T) {
	tests := []struct {
		name string
		from string
		msg  Message
	}{
		{"no from", "", Message{To: []string{"a@x.com"}, Subject: "s", TextBody: "b"}},
		{"no recipients", "from@x.com", Message{To: []string{" "}, Subject: "s", TextBody: "b"}},
		{"no subject", "from@x.com", Message{To: []string{"a@x.com"}, TextBody: "b"}},
		{"no body", "from@x.com", Message{To: []string{"a@x.com"}, Subject: "s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildMessage(tt.from, tt.msg)
			assert.ErrorIs(t, err, ErrInvalidMessage)
		})
	}

	msg, err := buildMessage("from@x.com", Message{
		To:       []string{" a@x.com ", ""},
		Subject:  "s",
		TextBody: "b",
		HTMLBody: "<p>b</p>",
		Headers:  map[string]string{"X-Priority": "1", " ": "ignored"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"1"}, msg.GetHeader("X-Priority"))
}

func TestClient(t *testing.T) {
	c, err := New(config.EmailConfig{})
	require.NoError(t, err)
	assert.False(t, c.IsEnabled())
	assert.ErrorIs(t, c.Send(context.Background(), Message{Subject: "s", TextBody: "b"}), ErrDisabled)

	_, err = New(config.EmailConfig{Enabled: true})
	assert.ErrorIs(t, err, ErrInvalidMessage)

	c, err = New(config.EmailConfig{Enabled: true, From: "alerts@mindcare.app", SMTP: config.SMTPConfig{Host: "smtp.example.com", Port: 587}})
	require.NoError(t, err)
	assert.True(t, c.IsEnabled())
	assert.ErrorIs(t, c.Send(context.Background(), Message{Subject: "s"}), ErrInvalidMessage)
}
