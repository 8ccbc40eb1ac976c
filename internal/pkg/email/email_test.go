package email

import (
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/activity-report/internal/config"
	"github.com/cmlabs-hris/activity-report/internal/domain/dashboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePayload() dashboard.MailPayload {
	return dashboard.MailPayload{
		ReportDate: "2026/02/10",
		Sections: []dashboard.MailSection{
			{
				Code: "UN", Heading: "UN①", Name: "UN", HasReport: true,
				DailyCount: 3, DailyAmountText: "8,000円",
				MemberLines: []dashboard.MailMemberLine{{Name: "Sato", Count: 2, AmountText: "5,000円"}},
				MonthLines:  []string{"金額 8,000/100,000円 達成率8.0%"},
			},
			{Code: "WV", Heading: "UN②", Name: "WV"},
		},
		PeriodName:  "2026年度2月 第1次路程",
		PeriodRange: "2/1～2/14",
		UNWVSummary: dashboard.AmountSummary{ActualText: "8,000円", TargetText: "100,000円", Rate: "8.0%"},
	}
}

func newTestService(t *testing.T, cfg config.SMTPConfig, send sendFunc) *emailServiceImpl {
	t.Helper()
	svc, err := NewEmailService(cfg)
	require.NoError(t, err)
	impl := svc.(*emailServiceImpl)
	impl.send = send
	impl.backoff = func(int) time.Duration { return 0 }
	return impl
}

func TestSendDailySummary_RendersPayload(t *testing.T) {
	var (
		gotTo  []string
		gotMsg string
	)
	svc := newTestService(t, config.SMTPConfig{Host: "smtp.example.org", Port: 587, From: "noreply@example.org", FromName: "Activity Report"},
		func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
			assert.Equal(t, "smtp.example.org:587", addr)
			gotTo = to
			gotMsg = string(msg)
			return nil
		})

	err := svc.SendDailySummary([]string{"a@example.org", "b@example.org"}, samplePayload())
	require.NoError(t, err)

	assert.Equal(t, []string{"a@example.org", "b@example.org"}, gotTo)
	assert.Contains(t, gotMsg, "To: a@example.org, b@example.org\r\n")
	assert.Contains(t, gotMsg, "UN① (UN)")
	assert.Contains(t, gotMsg, "Sato 2件 5,000円")
	assert.Contains(t, gotMsg, "未提出")
	assert.Contains(t, gotMsg, "2/1～2/14")
}

func TestSendDailySummary_SkipsWithoutHostOrRecipients(t *testing.T) {
	called := false
	send := func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	}

	noHost := newTestService(t, config.SMTPConfig{}, send)
	require.NoError(t, noHost.SendDailySummary([]string{"a@example.org"}, samplePayload()))

	withHost := newTestService(t, config.SMTPConfig{Host: "smtp.example.org", Port: 25}, send)
	require.NoError(t, withHost.SendDailySummary(nil, samplePayload()))

	assert.False(t, called)
}

func TestSendDailySummary_RetriesThenFails(t *testing.T) {
	attempts := 0
	svc := newTestService(t, config.SMTPConfig{Host: "smtp.example.org", Port: 25},
		func(string, smtp.Auth, string, []string, []byte) error {
			attempts++
			return errors.New("connection refused")
		})

	err := svc.SendDailySummary([]string{"a@example.org"}, samplePayload())
	require.Error(t, err)
	assert.Equal(t, maxRetries, attempts)
	assert.True(t, strings.Contains(err.Error(), "connection refused"))
}
