package events

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/keighl/postmark"
	"go.uber.org/zap"

	"storefront/internal/checkout"
	"storefront/internal/logger"
	"storefront/internal/metric"
	"storefront/internal/trace"
)

type emailSender interface {
	SendEmail(email postmark.Email) (postmark.EmailResponse, error)
}

// Mailer sends an order confirmation for committed checkouts
type Mailer struct {
	client emailSender
	sender string
	log    *zap.Logger
}

func NewMailer(serverToken, sender string, log *zap.Logger) *Mailer {
	return newMailer(postmark.NewClient(serverToken, ""), sender, log)
}

func newMailer(client emailSender, sender string, log *zap.Logger) *Mailer {
	return &Mailer{client: client, sender: sender, log: logger.OrNop(log).Named("mail")}
}

var confirmation = template.Must(template.New("confirmation").Parse(
	`<strong>Hola {{.Name}},</strong><br><br>` +
		`Tu pedido #{{.OrderID}} fue recibido y ya está en cola.<br><br>` +
		`Total: <strong>{{.Amount.StringFixed 2}}</strong><br>` +
		`Método de pago: <strong>{{.Method}}</strong>` +
		`{{if .TransactionID}}<br>Transacción: {{.TransactionID}}{{end}}`))

func (m *Mailer) Notify(ctx context.Context, e checkout.Event) {
	if e.Outcome != checkout.OutcomeCommitted || e.Email == "" {
		return
	}
	if err := m.SendConfirmation(e); err != nil {
		m.log.Error("order confirmation", zap.Error(err), zap.Int64("order_id", e.OrderID), trace.Field(ctx))
	}
}

func (m *Mailer) SendConfirmation(e checkout.Event) error {
	view := struct {
		checkout.Event
		TransactionID string
	}{Event: e}
	if e.TransactionID != nil {
		view.TransactionID = *e.TransactionID
	}
	var body bytes.Buffer
	if err := confirmation.Execute(&body, view); err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}

	_, err := m.client.SendEmail(postmark.Email{
		From:     m.sender,
		To:       e.Email,
		Subject:  fmt.Sprintf("Pedido #%d confirmado", e.OrderID),
		HtmlBody: body.String(),
		Tag:      "order-confirmation",
	})
	if err != nil {
		metric.EventsPublished.WithLabelValues("mail", "error").Inc()
		return fmt.Errorf("failed to send email: %w", err)
	}
	metric.EventsPublished.WithLabelValues("mail", "ok").Inc()
	return nil
}
