package email

import (
	"fmt"
	"net/smtp"
)

// Service sends transactional email via SMTP.
type Service struct {
	host string
	port string
	from string
}

func NewService(host, port, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
	}
}

// SendOrderConfirmation sends the order confirmation email to a buyer.
func (s *Service) SendOrderConfirmation(to, orderID string, totalCents int64, items []OrderItem) error {
	subject := fmt.Sprintf("Order confirmed (#%s)", shortOrderID(orderID))
	body := BuildOrderConfirmationBody(orderID, totalCents, items)
	return s.send(to, subject, body)
}

// SendOrderStatusUpdate tells a buyer their order moved to a new status.
func (s *Service) SendOrderStatusUpdate(to, orderID, status string) error {
	subject := fmt.Sprintf("Order #%s update: %s", shortOrderID(orderID), statusLabel(status))
	body := BuildStatusUpdateBody(orderID, status)
	return s.send(to, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}

func shortOrderID(orderID string) string {
	if len(orderID) > 8 {
		return orderID[:8]
	}
	return orderID
}
