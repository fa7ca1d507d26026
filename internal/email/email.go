package email

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"

	"github.com/Domenick1991/flightledger/config"
	"github.com/Domenick1991/flightledger/internal/kafka"
)

// Mailer is the part of *mail.Client the sender uses.
type Mailer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Sender delivers customer notifications for ledger events. Without a
// mailer the rendered message is only written to the log.
type Sender struct {
	mailer Mailer
	from   string
	log    *logrus.Entry
}

type Option func(*Sender)

func WithMailer(m Mailer, from string) Option {
	return func(s *Sender) {
		s.mailer = m
		s.from = from
	}
}

func NewSender(log *logrus.Entry, opts ...Option) *Sender {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &Sender{log: log.WithField("component", "email")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSMTPClient builds a go-mail client with plain SMTP auth.
func NewSMTPClient(cfg config.SMTPConfig) (*mail.Client, error) {
	opts := []mail.Option{mail.WithPort(cfg.Port), mail.WithTLSPolicy(mail.TLSOpportunistic)}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	c, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return c, nil
}

// Send skips events that carry no address or are not about a booking.
func (s *Sender) Send(ctx context.Context, event kafka.LedgerEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !event.Notifiable() {
		return nil
	}

	subject := Subject(event)
	log := s.log.WithFields(logrus.Fields{
		"to":         event.Email,
		"event_id":   event.ID.String(),
		"booking_id": event.BookingID,
	})
	if s.mailer == nil {
		log.Info(subject)
		return nil
	}

	msg, err := s.message(event, subject)
	if err != nil {
		// Undeliverable addresses are dropped, not retried.
		log.WithError(err).Warn("skip notification")
		return nil
	}
	if err := s.mailer.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send notification for booking %d: %w", event.BookingID, err)
	}
	log.Info("notification sent")
	return nil
}

func (s *Sender) message(event kafka.LedgerEvent, subject string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return nil, err
	}
	if err := msg.To(event.Email); err != nil {
		return nil, err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, Body(event))
	return msg, nil
}

func Subject(event kafka.LedgerEvent) string {
	switch event.Type {
	case kafka.EventBookingCreated:
		return fmt.Sprintf("Booking #%d confirmed on flight #%d, price $%.2f", event.BookingID, event.FlightID, event.Price)
	case kafka.EventBookingCancelled:
		return fmt.Sprintf("Booking #%d cancelled, fee $%.2f", event.BookingID, event.Fee)
	case kafka.EventBookingRebooked:
		return fmt.Sprintf("Booking #%d moved to flight #%d, price $%.2f, fee $%.2f", event.BookingID, event.FlightID, event.Price, event.Fee)
	}
	return event.Message
}

func Body(event kafka.LedgerEvent) string {
	return fmt.Sprintf("%s\n\n%s\n\nReference: %s\n", Subject(event), event.Message, event.ID)
}
