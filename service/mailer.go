// Package service contains background jobs and external collaborators
// like the SMTP mailer
package service

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
	"gopkg.in/gomail.v2"
)

// Mailer delivers the password reset code out of band. It's an interface
// so handler tests can swap in a stub instead of a live SMTP server.
type Mailer interface {
	SendResetCode(to, name, code string) error
}

type SMTPMailer struct{}

func NewSMTPMailer() *SMTPMailer {
	return &SMTPMailer{}
}

func (s *SMTPMailer) SendResetCode(to, name, code string) error {
	from := viper.GetString("mail.sender")
	if from == "" {
		return errors.New("no mail sender configured")
	}

	if to == from {
		return errors.New("invalid email address")
	}

	m := gomail.NewMessage()

	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your password reset code")
	m.SetBody("text/html", fmt.Sprintf(
		"Hello %v,<br><br>Your password reset code is:<br><br><b style='font-size:24px;letter-spacing:4px'>%v</b><br><br>This code will expire in %v minutes. If you didn't request a password reset, you can ignore this email.",
		name, code, viper.GetInt("auth.reset_code_ttl_minutes")))

	d := gomail.NewDialer(
		viper.GetString("mail.host"),
		viper.GetInt("mail.port"),
		from,
		viper.GetString("mail.password"),
	)

	return d.DialAndSend(m)
}
