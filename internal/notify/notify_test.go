package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Ayush22-04/xetor-backen/internal/config"
	"github.com/Ayush22-04/xetor-backen/internal/document"
	"github.com/Ayush22-04/xetor-backen/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingSender struct {
	ok                          bool
	panics                      bool
	to, subject, user, adminMsg string
}

func (r *recordingSender) Send(ctx context.Context, to, subject, userBody, adminBody string) bool {
	if r.panics {
		panic("boom")
	}
	r.to, r.subject, r.user, r.adminMsg = to, subject, userBody, adminBody
	return r.ok
}

func TestContactReceived_Composes(t *testing.T) {
	s := &recordingSender{ok: true}
	d := NewDispatcher(s)
	before := testutil.ToFloat64(metrics.Notifications.WithLabelValues("sent"))

	ok := d.ContactReceived(context.Background(), document.Document{
		"full_name": "Ann Lee", "email": "ann@example.com", "message": "Do you ship abroad?",
		"product_id": "65f0c0ffee", "product_name": "Oak desk",
	})
	require.True(t, ok)
	require.Equal(t, "ann@example.com", s.to)
	require.Equal(t, ContactSubject, s.subject)
	require.Contains(t, s.user, "Hi Ann Lee,")
	require.Contains(t, s.user, "Do you ship abroad?")
	require.Contains(t, s.user, "Related product: Oak desk")
	require.Contains(t, s.adminMsg, "Email  : ann@example.com")
	require.Contains(t, s.adminMsg, "Product: Oak desk")
	require.Equal(t, before+1, testutil.ToFloat64(metrics.Notifications.WithLabelValues("sent")))
}

func TestContactReceived_NoProductLine(t *testing.T) {
	u, a, err := ComposeContact(document.Document{"full_name": "Bo", "email": "b@x", "message": "hi", "product_name": "-"})
	require.NoError(t, err)
	require.NotContains(t, u, "Related product")
	require.NotContains(t, a, "Product:")
}

func TestNotify_FailuresAreFalse(t *testing.T) {
	before := testutil.ToFloat64(metrics.Notifications.WithLabelValues("failed"))

	require.False(t, NewDispatcher(&recordingSender{ok: false}).Notify(context.Background(), "a@b", "s", "u", "a"))
	require.False(t, NewDispatcher(&recordingSender{panics: true}).Notify(context.Background(), "a@b", "s", "u", "a"))
	require.False(t, NewDispatcher(nil).Notify(context.Background(), "a@b", "s", "u", "a"))
	require.False(t, NewDispatcher(&recordingSender{ok: true}).Notify(context.Background(), "", "s", "u", "a"))

	require.Equal(t, before+4, testutil.ToFloat64(metrics.Notifications.WithLabelValues("failed")))
}

func TestSMTPSender_SendsUserAndAdminCopy(t *testing.T) {
	s := NewSMTPSender(config.MailConfig{Server: "smtp.example.com", Port: 587, DefaultSender: "noreply@example.com", AdminAddress: "admin@example.com"})
	var sent []*gomail.Message
	s.send = func(msgs ...*gomail.Message) error {
		sent = append(sent, msgs...)
		return nil
	}

	require.True(t, s.Send(context.Background(), "ann@example.com", ContactSubject, "user body", "admin body"))
	require.Len(t, sent, 2)
	require.Equal(t, []string{"ann@example.com"}, sent[0].GetHeader("To"))
	require.Equal(t, []string{"admin@example.com"}, sent[1].GetHeader("To"))
	require.Equal(t, []string{AdminSubjectPrefix + ContactSubject}, sent[1].GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := sent[0].WriteTo(&buf)
	require.NoError(t, err)
	require.True(t, strings.Contains(buf.String(), "user body"))

	s.send = func(msgs ...*gomail.Message) error { return errors.New("dial tcp: refused") }
	require.False(t, s.Send(context.Background(), "ann@example.com", "s", "u", "a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.False(t, s.Send(ctx, "ann@example.com", "s", "u", "a"))
}

func TestSMTPSender_TimeoutBoundsSend(t *testing.T) {
	s := NewSMTPSender(config.MailConfig{Server: "smtp.example.com", Port: 587, DefaultSender: "noreply@example.com", Timeout: 50 * time.Millisecond})
	release := make(chan struct{})
	defer close(release)
	s.send = func(msgs ...*gomail.Message) error {
		<-release
		return nil
	}

	start := time.Now()
	require.False(t, s.Send(context.Background(), "ann@example.com", "s", "u", ""))
	require.Less(t, time.Since(start), 2*time.Second)
}
