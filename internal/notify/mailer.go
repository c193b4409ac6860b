package notify

import (
	"context"
	"fmt"

	"github.com/go-gomail/gomail"
)

// Mailer is the SMTP Notifier
type Mailer struct {
	dialer *gomail.Dialer
}

// NewMailer creates an SMTP mailer
func NewMailer(host string, port int, username, password string) *Mailer {
	return &Mailer{dialer: gomail.NewDialer(host, port, username, password)}
}

// Send delivers one notification email
func (m *Mailer) Send(ctx context.Context, n Notification) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", n.From)
	msg.SetHeader("To", n.To)
	msg.SetHeader("Subject", n.Subject)
	msg.SetBody("text/plain", n.Message)
	msg.AddAlternative("text/html", fmt.Sprintf(`<div>
        <h1>Hi %s</h1>
        <p>%s</p>
        <p>From D/ %s - %s</p>
    </div>`, n.PatientName, n.Message, n.DoctorName, n.From))

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("error sending email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
