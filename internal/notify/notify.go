package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"text/template"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EmailClient is the part of the SES v2 client used to deliver mail.
type EmailClient interface {
	SendEmail(ctx context.Context, input *sesv2.SendEmailInput, opts ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

var (
	welcomeTemplate = template.Must(template.New("welcome").Parse(`Welcome to GroupMail!

Your account for {{.Email}} is ready. Groups you join or create will
deliver mail to this address.
`))

	claimTemplate = template.Must(template.New("claim").Parse(`Someone asked to claim {{.Email}} for their GroupMail account.

If that was you, confirm the transfer by following this link:

{{.Link}}

If it was not you, ignore this message and nothing will change.
`))
)

// SESNotifier sends welcome and claim messages through Amazon SES.
type SESNotifier struct {
	Client  EmailClient
	From    string
	BaseURL string
	Log     *zerolog.Logger
}

// SendWelcomeEmail greets a newly registered address.
func (n *SESNotifier) SendWelcomeEmail(ctx context.Context, email string) error {
	body, err := render(welcomeTemplate, map[string]string{"Email": email})
	if err != nil {
		return err
	}
	return n.send(ctx, email, "Welcome to GroupMail", body)
}

// SendClaimEmail sends the claim confirmation link to the claimed address.
func (n *SESNotifier) SendClaimEmail(ctx context.Context, email, token string, claimantID uuid.NullUUID) error {
	body, err := render(claimTemplate, map[string]string{
		"Email": email,
		"Link":  n.ClaimLink(email, token, claimantID),
	})
	if err != nil {
		return err
	}
	return n.send(ctx, email, "Confirm your GroupMail email claim", body)
}

// ClaimLink builds the confirmation URL carried by a claim message.
func (n *SESNotifier) ClaimLink(email, token string, claimantID uuid.NullUUID) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("token", token)
	if claimantID.Valid {
		q.Set("claimant", claimantID.UUID.String())
	}
	return n.BaseURL + "/claims/confirm?" + q.Encode()
}

func (n *SESNotifier) send(ctx context.Context, to, subject, body string) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(n.From),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	}

	if _, err := n.Client.SendEmail(ctx, input); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("failed to send email to %s: %s: %s", to, apiErr.ErrorCode(), apiErr.ErrorMessage())
		}
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	if n.Log != nil {
		n.Log.Debug().Str("to", to).Str("subject", subject).Msg("Email sent")
	}
	return nil
}

// LogNotifier only logs what it would send. It is used when notifications
// are disabled.
type LogNotifier struct {
	Log *zerolog.Logger
}

func (n *LogNotifier) SendWelcomeEmail(ctx context.Context, email string) error {
	n.Log.Info().Str("email", email).Msg("Welcome email suppressed")
	return nil
}

func (n *LogNotifier) SendClaimEmail(ctx context.Context, email, token string, claimantID uuid.NullUUID) error {
	n.Log.Info().Str("email", email).Str("claimant", claimantString(claimantID)).Msg("Claim email suppressed")
	return nil
}

func claimantString(id uuid.NullUUID) string {
	if !id.Valid {
		return "anonymous"
	}
	return id.UUID.String()
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}
