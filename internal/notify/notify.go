// Package notify sends contact-message acknowledgments and admin copies.
package notify

import (
	"bytes"
	"context"
	"text/template"

	"github.com/Ayush22-04/xetor-backen/internal/document"
	"github.com/Ayush22-04/xetor-backen/pkg/logger"
	"github.com/Ayush22-04/xetor-backen/pkg/metrics"
)

// ContactSubject is the subject of the acknowledgment sent to the visitor.
const ContactSubject = "We've received your message"

// Sender delivers one user message and its admin copy. Implementations convert
// every failure into false.
type Sender interface {
	Send(ctx context.Context, to, subject, userBody, adminBody string) bool
}

// Dispatcher composes contact notifications and hands them to a Sender.
type Dispatcher struct {
	sender Sender
}

func NewDispatcher(s Sender) *Dispatcher {
	if s == nil {
		s = NoopSender{}
	}
	return &Dispatcher{sender: s}
}

// Notify delivers through the sender. A panicking sender counts as a failure.
func (d *Dispatcher) Notify(ctx context.Context, to, subject, userBody, adminBody string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("notification sender panicked: %v", r)
			ok = false
		}
		outcome := "sent"
		if !ok {
			outcome = "failed"
		}
		metrics.Notifications.WithLabelValues(outcome).Inc()
	}()
	if to == "" {
		return false
	}
	return d.sender.Send(ctx, to, subject, userBody, adminBody)
}

var userTmpl = template.Must(template.New("user").Parse(`Hi {{.FullName}},

Thanks for reaching out!

We've received your message and will review it shortly. Our team will respond as soon as possible.

Here's a copy of your message:
--------------------------------
{{.Message}}
{{- if .Product}}

Related product: {{.Product}}
{{- end}}

We appreciate your patience.

Warm regards,
Customer Support Team
`))

var adminTmpl = template.Must(template.New("admin").Parse(`Hello Admin,

You have received a new inquiry from your website.

User Details:
-------------
Name   : {{.FullName}}
Email  : {{.Email}}
{{- if .Phone}}
Phone  : {{.Phone}}
{{- end}}
Subject: {{.Subject}}
{{- if .Product}}
Product: {{.Product}}
{{- end}}

Message:
{{.Message}}

Please respond to the user as soon as possible.

Regards,
Your Website System
`))

type contactView struct {
	FullName string
	Email    string
	Phone    string
	Message  string
	Subject  string
	Product  string
}

func viewOf(msg document.Document) contactView {
	v := contactView{
		FullName: msg.String("full_name"),
		Email:    msg.String("email"),
		Phone:    msg.String("phone"),
		Message:  msg.String("message"),
		Subject:  ContactSubject,
	}
	if name := msg.String("product_name"); name != "" && name != "-" {
		v.Product = name
	} else if id := msg.String("product_id"); id != "" {
		v.Product = id
	}
	return v
}

// ComposeContact renders the acknowledgment and admin copy bodies.
func ComposeContact(msg document.Document) (userBody, adminBody string, err error) {
	v := viewOf(msg)
	var u, a bytes.Buffer
	if err := userTmpl.Execute(&u, v); err != nil {
		return "", "", err
	}
	if err := adminTmpl.Execute(&a, v); err != nil {
		return "", "", err
	}
	return u.String(), a.String(), nil
}

// ContactReceived acknowledges a newly stored contact message.
func (d *Dispatcher) ContactReceived(ctx context.Context, msg document.Document) bool {
	userBody, adminBody, err := ComposeContact(msg)
	if err != nil {
		logger.Errorf("compose contact notification: %v", err)
		metrics.Notifications.WithLabelValues("failed").Inc()
		return false
	}
	to := msg.String("email")
	ok := d.Notify(ctx, to, ContactSubject, userBody, adminBody)
	if !ok {
		logger.Warnf("contact acknowledgment to %s not delivered", to)
	}
	return ok
}

// NoopSender is used when no mail server is configured; it always reports failure.
type NoopSender struct{}

func (NoopSender) Send(ctx context.Context, to, subject, userBody, adminBody string) bool {
	logger.Debugf("mail disabled; dropping %q to %s", subject, to)
	return false
}
