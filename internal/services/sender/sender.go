// Package services содержит воркер-отправитель писем о платёжных событиях.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/smtp"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

// SenderService читает сообщения очереди уведомлений и отправляет письма.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendBillingNotification разбирает сообщение очереди и отправляет письмо
// о списании или о неудачной попытке оплаты.
func (s *SenderService) SendBillingNotification(body []byte) error {
	var message models.NotificationMessage
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("Failed to unmarshal message body", "error", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.Email}
	amount := fmt.Sprintf("%.2f %s", float64(message.Amount)/100, strings.ToUpper(message.Currency))

	var subject, bodyText string
	switch message.Kind {
	case "payment_succeeded":
		subject = "Оплата прошла успешно"
		bodyText = fmt.Sprintf("Здравствуйте, %s!\n\nМы получили ваш платёж на сумму %s (счёт %s).\n\nСпасибо, что пользуетесь нашим сервисом.",
			message.Username, amount, message.InvoiceID)
	case "payment_failed":
		subject = "Не удалось списать оплату"
		bodyText = fmt.Sprintf("Здравствуйте, %s!\n\nНам не удалось списать %s по счёту %s.\n\nПожалуйста, проверьте способ оплаты, иначе подписка будет приостановлена.",
			message.Username, amount, message.InvoiceID)
	default:
		s.log.Warn("unknown notification kind, skipping", slog.String("kind", message.Kind))
		return nil
	}

	return s.sendEmail(to, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("Failed to connect to SMTP server", "error", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("Failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), "error", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("Failed to set RCPT TO", "recipient", addr, "error", sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("Failed to get Data writer", "error", sl.Err(err))
		return err
	}

	_, err = wc.Write([]byte(msg))
	if err != nil {
		s.log.Error("Failed to write email body", "error", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("Failed to close Data writer", "error", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("Failed to quit SMTP client", "error", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
