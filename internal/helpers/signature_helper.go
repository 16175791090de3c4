package helpers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/mgltickets/api/internal/models"
)

var ErrMalformedTicketPayload = errors.New("malformed ticket payload")

// TicketSignature signs ticket QR payloads of the form "<code>.<signature>".
type TicketSignature struct {
	secretKey []byte
}

func NewTicketSignature(secretKey string) *TicketSignature {
	return &TicketSignature{secretKey: []byte(secretKey)}
}

func (s *TicketSignature) Payload(ticket *models.TicketInstance) string {
	return ticket.Code + "." + s.sign(ticket)
}

func (s *TicketSignature) Code(payload string) (string, error) {
	code, signature, ok := strings.Cut(strings.TrimSpace(payload), ".")
	if !ok || code == "" || signature == "" {
		return "", ErrMalformedTicketPayload
	}
	return code, nil
}

func (s *TicketSignature) Verify(ticket *models.TicketInstance, payload string) bool {
	_, signature, ok := strings.Cut(strings.TrimSpace(payload), ".")
	if !ok {
		return false
	}
	expected := s.sign(ticket)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *TicketSignature) sign(ticket *models.TicketInstance) string {
	componentSignature := "Code:" + ticket.Code + "\n" +
		"Ticket-Id:" + ticket.ID.String() + "\n" +
		"Booking-Id:" + ticket.BookingID.String() + "\n" +
		"User-Id:" + ticket.UserID.String()

	mac := hmac.New(sha256.New, s.secretKey)
	mac.Write([]byte(componentSignature))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
