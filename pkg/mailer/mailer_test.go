package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harambee-coop/membership-backend/pkg/config"
)

func TestSendBuildsMessage(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	m := &mailer{
		host: "smtp.example.org",
		port: "587",
		from: "coop@example.org",
		send: func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
			return nil
		},
	}

	err := m.Send(context.Background(), "member@example.org", "Shares deducted", "One share was deducted.")
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.org:587", gotAddr)
	assert.Equal(t, "coop@example.org", gotFrom)
	assert.Equal(t, []string{"member@example.org"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Shares deducted")
	assert.Contains(t, string(gotMsg), "One share was deducted.")
}

func TestSendEmptyRecipientSkipped(t *testing.T) {
	called := false
	m := &mailer{
		send: func(string, smtp.Auth, string, []string, []byte) error {
			called = true
			return nil
		},
	}

	err := m.Send(context.Background(), "", "subject", "body")
	require.NoError(t, err)
	assert.False(t, called)
}

func TestSendPropagatesError(t *testing.T) {
	m := &mailer{
		send: func(string, smtp.Auth, string, []string, []byte) error {
			return errors.New("connection refused")
		},
	}

	err := m.Send(context.Background(), "member@example.org", "subject", "body")
	assert.Error(t, err)
}

func TestNewWithoutHostReturnsNoop(t *testing.T) {
	m := New(config.SMTPConfig{}, nil)

	err := m.Send(context.Background(), "member@example.org", "subject", "body")
	assert.NoError(t, err)
}
