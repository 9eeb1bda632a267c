package sendassessmentnotification

import (
	"context"

	"assessment-workers/internal/engine"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type Input struct {
	AssessmentID      string                    `json:"assessmentId"`
	MaturityScore     float64                   `json:"maturityScore"`
	MaturityLevel     string                    `json:"maturityLevel"`
	ValidationResults []engine.ValidationResult `json:"validationResults"`
}

type Output struct {
	EmailSent      bool   `json:"emailSent"`
	SMSSent        bool   `json:"smsSent"`
	EmailMessageID string `json:"emailMessageId,omitempty"`
	Recipient      string `json:"recipient,omitempty"`
}

// EmailSender is satisfied by the SES wrapper and by test doubles.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// SMSSender is satisfied by the SNS wrapper and by test doubles.
type SMSSender interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}
