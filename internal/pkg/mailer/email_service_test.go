package mailer

import (
	"bytes"
	"errors"
	"testing"

	"collectify-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingSender struct {
	sent []*gomail.Message
	err  error
}

func (r *recordingSender) DialAndSend(m ...*gomail.Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, m...)
	return nil
}

func TestRenderMemberAdded_EscapesInput(t *testing.T) {
	body, err := RenderMemberAdded("<b>Family</b>", "alice")
	require.NoError(t, err)
	assert.Contains(t, body, "&lt;b&gt;Family&lt;/b&gt;")
	assert.Contains(t, body, "alice added you")
}

func TestSendMemberAdded(t *testing.T) {
	rec := &recordingSender{}
	s := &emailService{dialer: rec, senderEmail: "noreply@collectify.app", senderName: "Collectify", log: logger.NewNopLogger()}

	require.NoError(t, s.SendMemberAdded("bob@x.com", "Family", "alice"))
	require.Len(t, rec.sent, 1)

	assert.Equal(t, []string{"bob@x.com"}, rec.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"You were added to Family"}, rec.sent[0].GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := rec.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Family")
}

func TestSendMemberAdded_DialError(t *testing.T) {
	s := &emailService{dialer: &recordingSender{err: errors.New("smtp down")}, log: logger.NewNopLogger()}
	assert.Error(t, s.SendMemberAdded("bob@x.com", "Family", "alice"))
}

func TestNopEmailService(t *testing.T) {
	assert.NoError(t, NopEmailService{Log: logger.NewNopLogger()}.SendMemberAdded("bob@x.com", "g", "a"))
}
