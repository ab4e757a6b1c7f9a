package notify

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAWSEmailClient struct {
	mock.Mock
}

func (m *MockAWSEmailClient) SendEmail(ctx context.Context, input *sesv2.SendEmailInput, opts ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	args := m.Called(ctx, input, opts)
	return args.Get(0).(*sesv2.SendEmailOutput), args.Error(1)
}

func newNotifier(client EmailClient) *SESNotifier {
	logger := zerolog.Nop()
	return &SESNotifier{
		Client:  client,
		From:    "service@example.com",
		BaseURL: "https://groupmail.example.com",
		Log:     &logger,
	}
}

func TestSendWelcomeEmail(t *testing.T) {
	client := new(MockAWSEmailClient)
	client.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).
		Return(&sesv2.SendEmailOutput{}, nil)

	err := newNotifier(client).SendWelcomeEmail(context.Background(), "a@example.com")
	require.NoError(t, err)

	client.AssertCalled(t, "SendEmail", mock.Anything, mock.MatchedBy(func(input *sesv2.SendEmailInput) bool {
		return *input.FromEmailAddress == "service@example.com" &&
			input.Destination.ToAddresses[0] == "a@example.com" &&
			strings.Contains(*input.Content.Simple.Body.Text.Data, "a@example.com")
	}), mock.Anything)
}

func TestSendClaimEmail(t *testing.T) {
	client := new(MockAWSEmailClient)
	client.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).
		Return(&sesv2.SendEmailOutput{}, nil)

	claimant := uuid.NullUUID{UUID: uuid.New(), Valid: true}
	n := newNotifier(client)
	err := n.SendClaimEmail(context.Background(), "a@example.com", "abc-123", claimant)
	require.NoError(t, err)

	link := n.ClaimLink("a@example.com", "abc-123", claimant)
	client.AssertCalled(t, "SendEmail", mock.Anything, mock.MatchedBy(func(input *sesv2.SendEmailInput) bool {
		return strings.Contains(*input.Content.Simple.Body.Text.Data, link)
	}), mock.Anything)
}

func TestClaimLink(t *testing.T) {
	n := newNotifier(nil)

	link := n.ClaimLink("a+b@example.com", "tok", uuid.NullUUID{})
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/claims/confirm", u.Path)
	assert.Equal(t, "a+b@example.com", u.Query().Get("email"))
	assert.Equal(t, "tok", u.Query().Get("token"))
	assert.Empty(t, u.Query().Get("claimant"))
}

func TestSendEmailAPIError(t *testing.T) {
	client := new(MockAWSEmailClient)
	client.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).
		Return((*sesv2.SendEmailOutput)(nil), &smithy.GenericAPIError{Code: "MessageRejected", Message: "Email address is not verified."})

	err := newNotifier(client).SendWelcomeEmail(context.Background(), "a@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MessageRejected")
}

func TestSendEmailError(t *testing.T) {
	client := new(MockAWSEmailClient)
	client.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).
		Return((*sesv2.SendEmailOutput)(nil), errors.New("network down"))

	err := newNotifier(client).SendWelcomeEmail(context.Background(), "a@example.com")
	assert.ErrorContains(t, err, "network down")
}

func TestLogNotifier(t *testing.T) {
	logger := zerolog.Nop()
	n := &LogNotifier{Log: &logger}

	assert.NoError(t, n.SendWelcomeEmail(context.Background(), "a@example.com"))
	assert.NoError(t, n.SendClaimEmail(context.Background(), "a@example.com", "tok", uuid.NullUUID{}))
}
