// Package managers bundles the external collaborators of the API: the
// database pool, the token service, outgoing mail and image storage.
package managers

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/matcornic/hermes/v2"
	log "github.com/sirupsen/logrus"
)

// MailMgr is an interface that outlines the contract for email management.
// It includes methods for sending verification and confirmation emails.
type MailMgr interface {
	SendVerificationMail(email, username, token string) error
	SendConfirmationMail(email, username string) error
}

// MailManager is a concrete implementation of the MailMgr interface.
// It uses the Mailgun service for sending emails and the Hermes package for formatting emails.
type MailManager struct {
	Hermes  *hermes.Hermes
	Mailgun *mailgun.MailgunImpl
}

var from = "ReWear <team@mail.rewear.community>"
var environment string

// SendVerificationMail sends a verification email to a user with a token to verify their account.
// The email content is formatted using the Hermes package and sent using the Mailgun service.
func (mm *MailManager) SendVerificationMail(email, username, token string) error {
	if environment != "production" {
		log.Info("Skipping verification mail in development mode")
		return nil
	}

	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: username,
			Intros: []string{
				"Welcome to ReWear! We're very excited to have you on board.",
				"If you have any questions, feel free to reach out to us at any time via team@mail.rewear.community.",
			},
			Outros: []string{
				"Happy swapping, and thank you for keeping clothes in circulation!",
			},
			Actions: []hermes.Action{
				{
					Instructions: "To verify your account, please login to ReWear and enter the following code:",
					InviteCode:   token,
				},
			},
		},
	}

	emailBody, err := mm.Hermes.GenerateHTML(mailBody)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(2*time.Second))
	defer cancel()

	message := mm.Mailgun.NewMessage(from, "Verify your account", "", email)
	message.SetHtml(emailBody)
	_, _, err = mm.Mailgun.Send(ctx, message)
	if err != nil {
		log.Warning("Error sending verification mail: " + err.Error())
		return err
	}
	log.Debug("Verification mail sent to ", email)

	return nil
}

// SendConfirmationMail sends a confirmation email to a user to confirm that their account has been verified.
// The email content is formatted using the Hermes package and sent using the Mailgun service.
func (mm *MailManager) SendConfirmationMail(email, username string) error {
	if environment != "production" {
		log.Info("Skipping confirmation mail in development mode")
		return nil
	}

	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: username,
			Intros: []string{
				"Your account has been successfully verified!",
				"If you have any questions, feel free to reach out to us at any time via team@mail.rewear.community.",
			},
			Outros: []string{
				fmt.Sprintf("Have fun on ReWear, %s. Your wardrobe will thank you.", username),
			},
		},
	}

	emailBody, err := mm.Hermes.GenerateHTML(mailBody)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(2*time.Second))
	defer cancel()

	message := mm.Mailgun.NewMessage(from, "Account successfully verified", emailBody, email)
	_, _, err = mm.Mailgun.Send(ctx, message)
	if err != nil {
		log.Warning("Error sending confirmation mail: " + err.Error())
		return err
	}
	log.Debug("Confirmation mail sent to ", email)

	return nil
}

// NewMailManager initializes a new MailManager instance with configured Mailgun and Hermes settings.
// It also checks the runtime environment to determine if emails should be sent.
func NewMailManager() MailMgr {
	log.Info("Initializing mail manager")
	environment = os.Getenv("ENVIRONMENT")

	if environment != "production" {
		log.Println("Running in development mode, email will not be sent to users")
	}

	apiKey := os.Getenv("MAILGUN_API_KEY")
	mailgunInstance := mailgun.NewMailgun("mail.rewear.community", apiKey)
	mailgunInstance.SetAPIBase(mailgun.APIBaseEU)

	mm := &MailManager{
		Hermes: &hermes.Hermes{
			Theme:         new(hermes.Default),
			TextDirection: hermes.TDLeftToRight,
			Product: hermes.Product{
				Name:        "ReWear",
				Link:        "https://rewear.community/",
				Copyright:   "© ReWear Community Exchange",
				TroubleText: "If you’re having trouble with the button '{ACTION}', copy and paste the URL below into your web browser.",
			},
		},
		Mailgun: mailgunInstance,
	}
	log.Info("Initialized mail manager")
	return mm
}
