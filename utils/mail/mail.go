package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"strconv"

	gomail "gopkg.in/gomail.v2"

	"github.com/minhzk/smarthotel-booking/logger"
	"github.com/minhzk/smarthotel-booking/models/booking_models"
)

const (
	bookingConfirmationTemplate = "templates/email/booking_confirmation.html"
	bookingCancellationTemplate = "templates/email/booking_cancellation.html"
)

var templates *template.Template

// InitTemplates parses the embedded email templates. Called once from main.
func InitTemplates(fs embed.FS) {
	var err error
	templates, err = template.ParseFS(fs, "templates/email/*.html")
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to parse email templates: %v", err)
	}
}

func dialer() (*gomail.Dialer, string, error) {
	host := os.Getenv("SMTP_HOST")
	from := os.Getenv("SMTP_FROM")
	if host == "" || from == "" {
		return nil, "", fmt.Errorf("SMTP not configured")
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	return gomail.NewDialer(host, port, os.Getenv("SMTP_USER"), os.Getenv("SMTP_PASS")), from, nil
}

func send(to, subject, templateName string, data interface{}) error {
	if to == "" {
		return fmt.Errorf("no recipient address")
	}
	if templates == nil {
		return fmt.Errorf("email templates not initialized")
	}

	var body bytes.Buffer
	name := templateName[len("templates/email/"):]
	if err := templates.ExecuteTemplate(&body, name, data); err != nil {
		return fmt.Errorf("failed to render email template %s: %w", name, err)
	}

	d, from, err := dialer()
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body.String())

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// SendBookingConfirmation emails the guest after a successful reservation.
// Callers fire it from a goroutine; a mail failure never fails the booking.
func SendBookingConfirmation(b *booking_models.Booking) {
	data := map[string]interface{}{
		"GuestName":    b.GuestName,
		"BookingRef":   b.BookingID,
		"CheckIn":      b.CheckInDate.Format("Mon, 02 Jan 2006"),
		"CheckOut":     b.CheckOutDate.Format("Mon, 02 Jan 2006"),
		"Nights":       b.Nights(),
		"TotalAmount":  b.TotalAmount,
		"DepositDue":   b.DepositAmount,
	}
	if err := send(b.GuestEmail, "Your booking "+b.BookingID+" is received", bookingConfirmationTemplate, data); err != nil {
		logger.WarnLogger.Warnf("Failed to send confirmation email for booking %s: %v", b.BookingID, err)
	}
}

// SendBookingCancellation emails the guest the cancellation outcome,
// including whether a deposit refund was initiated.
func SendBookingCancellation(b *booking_models.Booking, refundEligible bool, refundAmount int64) {
	data := map[string]interface{}{
		"GuestName":      b.GuestName,
		"BookingRef":     b.BookingID,
		"RefundEligible": refundEligible,
		"RefundAmount":   refundAmount,
	}
	if err := send(b.GuestEmail, "Your booking "+b.BookingID+" has been canceled", bookingCancellationTemplate, data); err != nil {
		logger.WarnLogger.Warnf("Failed to send cancellation email for booking %s: %v", b.BookingID, err)
	}
}
