package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/keighl/postmark"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/api"
	"storefront/internal/checkout"
	"storefront/internal/domain"
)

func fakeEvent(outcome checkout.Outcome) checkout.Event {
	tx := "TX-" + gofakeit.Numerify("#############") + "-" + gofakeit.Numerify("###")
	return checkout.Event{
		Outcome:       outcome,
		OrderID:       int64(gofakeit.Number(1, 100000)),
		Amount:        decimal.NewFromFloat(gofakeit.Price(5, 80)).Round(2),
		Method:        domain.PaymentCard,
		TransactionID: &tx,
		Items:         []api.OrderLine{{ProductID: 1, Quantity: gofakeit.Number(1, 4)}},
		UserID:        int64(gofakeit.Number(1, 500)),
		Email:         gofakeit.Email(),
		Name:          gofakeit.FirstName(),
		At:            time.Now(),
	}
}

func TestKafkaPublisher_SendsKeyedEvent(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	ev := fakeEvent(checkout.OutcomeCommitted)

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "storefront.checkout" {
			return fmt.Errorf("topic %q", msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != fmt.Sprint(ev.OrderID) {
			return fmt.Errorf("key %q", key)
		}
		raw, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var got checkout.Event
		if err := json.Unmarshal(raw, &got); err != nil {
			return err
		}
		if got.Outcome != checkout.OutcomeCommitted || got.Email != ev.Email {
			return fmt.Errorf("payload %+v", got)
		}
		return nil
	})

	pub := newKafkaPublisher(producer, "storefront.checkout", nil)
	require.NoError(t, pub.Publish(context.Background(), ev))
	require.NoError(t, pub.Close())
}

func TestKafkaPublisher_FailedOrderHasNoKey(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	ev := fakeEvent(checkout.OutcomeFailed)
	ev.OrderID = 0

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Key != nil {
			return errors.New("failed orders carry no key")
		}
		return nil
	})

	pub := newKafkaPublisher(producer, "t", nil)
	pub.Notify(context.Background(), ev)
	require.NoError(t, pub.Close())
}

func TestKafkaPublisher_BrokerError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := newKafkaPublisher(producer, "t", nil)
	err := pub.Publish(context.Background(), fakeEvent(checkout.OutcomeCommitted))
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, pub.Close())
}

type fakeSender struct {
	sent []postmark.Email
	err  error
}

func (f *fakeSender) SendEmail(e postmark.Email) (postmark.EmailResponse, error) {
	if f.err != nil {
		return postmark.EmailResponse{}, f.err
	}
	f.sent = append(f.sent, e)
	return postmark.EmailResponse{To: e.To}, nil
}

func TestMailer_ConfirmsCommittedOrders(t *testing.T) {
	sender := &fakeSender{}
	m := newMailer(sender, "pedidos@pizzeria.test", nil)
	ev := fakeEvent(checkout.OutcomeCommitted)

	m.Notify(context.Background(), ev)

	require.Len(t, sender.sent, 1)
	mail := sender.sent[0]
	assert.Equal(t, ev.Email, mail.To)
	assert.Equal(t, "pedidos@pizzeria.test", mail.From)
	assert.Contains(t, mail.Subject, fmt.Sprint(ev.OrderID))
	assert.Contains(t, mail.HtmlBody, ev.Amount.StringFixed(2))
	assert.Contains(t, mail.HtmlBody, *ev.TransactionID)
}

func TestMailer_SkipsOtherOutcomes(t *testing.T) {
	sender := &fakeSender{}
	m := newMailer(sender, "x@pizzeria.test", nil)

	m.Notify(context.Background(), fakeEvent(checkout.OutcomePaymentPending))
	anonymous := fakeEvent(checkout.OutcomeCommitted)
	anonymous.Email = ""
	m.Notify(context.Background(), anonymous)

	assert.Empty(t, sender.sent)
}

func TestMailer_SendError(t *testing.T) {
	m := newMailer(&fakeSender{err: errors.New("422")}, "x@pizzeria.test", nil)
	err := m.SendConfirmation(fakeEvent(checkout.OutcomeCommitted))
	assert.ErrorContains(t, err, "failed to send email")
}

type countingNotifier struct{ n int }

func (c *countingNotifier) Notify(context.Context, checkout.Event) { c.n++ }

func TestMulti_FansOut(t *testing.T) {
	a, b := &countingNotifier{}, &countingNotifier{}
	Multi{a, Nop{}, b}.Notify(context.Background(), fakeEvent(checkout.OutcomeCommitted))
	assert.Equal(t, 1, a.n)
	assert.Equal(t, 1, b.n)
}
