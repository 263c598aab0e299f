package service

import (
	"fmt"
	"net/smtp"

	"crm-saas-backend/internal/database/models"

	"github.com/sirupsen/logrus"
)

// SMTPConfig holds the mail transport settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPNotifier delivers notification events as plain-text mail. Delivery runs
// in a goroutine per the Notifier contract; failures are logged and swallowed.
type SMTPNotifier struct {
	cfg SMTPConfig
}

// NewSMTPNotifier creates a notifier backed by an SMTP relay
func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

func (n *SMTPNotifier) TenantCreated(tenant *models.Tenant) {
	n.deliver(tenant.Email, "Your workspace is ready",
		fmt.Sprintf("The workspace %q has been created.", tenant.Name))
}

func (n *SMTPNotifier) UserInvited(user *models.User) {
	n.deliver(user.Email, "You have been invited",
		"An account has been created for you. Sign in to set up your profile.")
}

func (n *SMTPNotifier) RoleAssigned(user *models.User, role *models.Role) {
	n.deliver(user.Email, "Your role has changed",
		fmt.Sprintf("You have been assigned the role %q.", role.Name))
}

func (n *SMTPNotifier) SecurityEvent(user *models.User, event string) {
	n.deliver(user.Email, "Security notice",
		fmt.Sprintf("A security-relevant change was made to your account: %s.", event))
}

// message renders an RFC 5322 mail with CRLF line endings
func (n *SMTPNotifier) message(to, subject, body string) []byte {
	return []byte("From: " + n.cfg.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body + "\r\n")
}

func (n *SMTPNotifier) deliver(to, subject, body string) {
	if to == "" {
		return
	}

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}
	msg := n.message(to, subject, body)

	go func() {
		if err := smtp.SendMail(addr, auth, n.cfg.From, []string{to}, msg); err != nil {
			logrus.WithError(err).WithField("to", to).Warn("failed to deliver notification mail")
		}
	}()
}
