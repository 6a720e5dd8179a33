package provider

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"io"
	"net/smtp"
	"time"

	"github.com/google/uuid"

	"vmail/config"
	"vmail/models"
	"vmail/utils"
)

// Message is an outgoing message handed to the mail-transport provider.
type Message struct {
	FromName    string // display name of the sending user
	ReplyTo     string // the user's real address
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	HTMLBody    string
	Attachments []models.Attachment
}

// Mailer dispatches messages through an external mail-transport provider.
// A rejection by the provider is returned as an error; no record of the
// message is kept here.
type Mailer interface {
	Send(msg *Message) (messageID string, err error)
}

// SMTPMailer sends mail through an authenticated SMTP relay, the way a
// Gmail app-password setup works.
type SMTPMailer struct {
	server   string
	port     int
	username string
	password string
	from     string
}

// NewSMTPMailer creates a mailer from the SMTP section of the config.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		server:   cfg.Server,
		port:     cfg.GetPort(),
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
	}
}

// Send dispatches the message and returns the generated Message-ID.
func (m *SMTPMailer) Send(msg *Message) (string, error) {
	addr := fmt.Sprintf("%s:%d", m.server, m.port)
	client, err := smtp.Dial(addr)
	if err != nil {
		return "", fmt.Errorf("dial failed: %v", err)
	}
	defer client.Close()

	domain := domainFromEmail(m.from)
	if err := client.Hello(domain); err != nil {
		return "", fmt.Errorf("hello failed: %v", err)
	}

	tlsConfig := &tls.Config{ServerName: m.server}
	if err = client.StartTLS(tlsConfig); err != nil {
		return "", fmt.Errorf("starttls failed: %v", err)
	}

	auth := smtp.PlainAuth("", m.username, m.password, m.server)
	if err = client.Auth(auth); err != nil {
		return "", fmt.Errorf("auth failed: %v", err)
	}

	if err = client.Mail(m.from); err != nil {
		return "", fmt.Errorf("mail from failed: %v", err)
	}

	for _, rcpt := range recipients(msg) {
		if err = client.Rcpt(rcpt); err != nil {
			return "", fmt.Errorf("rcpt to %s failed: %v", rcpt, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return "", fmt.Errorf("data failed: %v", err)
	}

	messageID := generateMessageID(domain)
	if _, err := writer.Write(buildMessage(msg, m.from, messageID)); err != nil {
		return "", err
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("data close failed: %v", err)
	}

	if err := client.Quit(); err != nil {
		return "", err
	}

	return messageID, nil
}

func recipients(msg *Message) []string {
	rcpts := make([]string, 0, len(msg.To)+len(msg.Cc)+len(msg.Bcc))
	rcpts = append(rcpts, msg.To...)
	rcpts = append(rcpts, msg.Cc...)
	rcpts = append(rcpts, msg.Bcc...)
	return rcpts
}

// buildMessage constructs the full RFC822 message: headers, a
// multipart/alternative body (plain text fallback plus HTML), and base64
// attachment parts when present.
func buildMessage(msg *Message, from, messageID string) []byte {
	var buf bytes.Buffer

	mixedBoundary := fmt.Sprintf("mixed-%s", generateBoundary())
	altBoundary := fmt.Sprintf("alt-%s", generateBoundary())

	writeHeader := func(k, v string) {
		fmt.Fprintf(&buf, "%s: %s\r\n", k, v)
	}

	writeHeader("Date", time.Now().Format(time.RFC1123Z))
	writeHeader("From", fmt.Sprintf("%q <%s>", msg.FromName, from))
	if msg.ReplyTo != "" {
		writeHeader("Reply-To", msg.ReplyTo)
	}
	writeHeader("To", joinAddresses(msg.To))
	if len(msg.Cc) > 0 {
		writeHeader("Cc", joinAddresses(msg.Cc))
	}
	writeHeader("Subject", msg.Subject)
	writeHeader("MIME-Version", "1.0")
	writeHeader("Message-ID", messageID)

	if len(msg.Attachments) > 0 {
		writeHeader("Content-Type", fmt.Sprintf("multipart/mixed; boundary=%q", mixedBoundary))
		buf.WriteString("\r\n")

		fmt.Fprintf(&buf, "--%s\r\n", mixedBoundary)
		fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", altBoundary)
		writeAlternativePart(&buf, msg.HTMLBody, altBoundary)
		fmt.Fprintf(&buf, "--%s--\r\n", altBoundary)

		for _, att := range msg.Attachments {
			fmt.Fprintf(&buf, "--%s\r\n", mixedBoundary)
			fmt.Fprintf(&buf, "Content-Type: %s; name=%q\r\n", att.ContentType, att.Filename)
			fmt.Fprintf(&buf, "Content-Disposition: attachment; filename=%q\r\n", att.Filename)
			fmt.Fprintf(&buf, "Content-Transfer-Encoding: base64\r\n\r\n")

			// Attachment data is already base64; split into lines of 76 chars
			b64 := att.Data
			for i := 0; i < len(b64); i += 76 {
				end := i + 76
				if end > len(b64) {
					end = len(b64)
				}
				fmt.Fprintf(&buf, "%s\r\n", b64[i:end])
			}
		}
		fmt.Fprintf(&buf, "--%s--\r\n", mixedBoundary)
	} else {
		writeHeader("Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", altBoundary))
		buf.WriteString("\r\n")
		writeAlternativePart(&buf, msg.HTMLBody, altBoundary)
		fmt.Fprintf(&buf, "--%s--\r\n", altBoundary)
	}

	return buf.Bytes()
}

func writeAlternativePart(w io.Writer, body string, boundary string) {
	fmt.Fprintf(w, "--%s\r\n", boundary)
	fmt.Fprintf(w, "Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	fmt.Fprintf(w, "%s\r\n", utils.StripHTML(body))

	fmt.Fprintf(w, "--%s\r\n", boundary)
	fmt.Fprintf(w, "Content-Type: text/html; charset=\"utf-8\"\r\n\r\n")
	fmt.Fprintf(w, "%s\r\n", body)
}

func joinAddresses(addrs []string) string {
	out := ""
	for i, a := range addrs {
		if i > 0 {
			out += ", "
		}
		out += a
	}
	return out
}

func generateBoundary() string {
	return uuid.New().String()[:8]
}

// generateMessageID creates a unique Message-ID for the email
func generateMessageID(domain string) string {
	return fmt.Sprintf("<%s@%s>", uuid.New().String(), domain)
}

func domainFromEmail(email string) string {
	for i := len(email) - 1; i >= 0; i-- {
		if email[i] == '@' {
			return email[i+1:]
		}
	}
	return "localhost"
}
