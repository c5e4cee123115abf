package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"collectify-be/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendMemberAdded(toEmail, groupName, addedBy string) error
}

var memberAddedTemplate = template.Must(template.New("member_added").Parse(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>You joined a group on Collectify</h2>
			<p>{{.AddedBy}} added you to <strong>{{.GroupName}}</strong>.</p>
			<p>Open the app to see the notes shared with the group.</p>
		</div>
	`))

// sender is the part of gomail.Dialer the service needs.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	dialer      sender
	senderEmail string
	senderName  string
	log         logger.ILogger
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName string, log logger.ILogger) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: senderEmail,
		senderName:  senderName,
		log:         log,
	}
}

func RenderMemberAdded(groupName, addedBy string) (string, error) {
	var buf bytes.Buffer
	err := memberAddedTemplate.Execute(&buf, struct{ GroupName, AddedBy string }{groupName, addedBy})
	if err != nil {
		return "", fmt.Errorf("failed to render member added email: %w", err)
	}
	return buf.String(), nil
}

func (s *emailService) SendMemberAdded(toEmail, groupName, addedBy string) error {
	body, err := RenderMemberAdded(groupName, addedBy)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("You were added to %s", groupName))
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.log.Error("Mailer", "Failed to send member added email", map[string]interface{}{"to": toEmail, "error": err.Error()})
		return err
	}

	s.log.Info("Mailer", "Member added email sent", map[string]interface{}{"to": toEmail})
	return nil
}

// NopEmailService is used when no SMTP host is configured.
type NopEmailService struct {
	Log logger.ILogger
}

func (s NopEmailService) SendMemberAdded(toEmail, groupName, _ string) error {
	s.Log.Debug("Mailer", "SMTP not configured, skipping email", map[string]interface{}{"to": toEmail, "group": groupName})
	return nil
}
