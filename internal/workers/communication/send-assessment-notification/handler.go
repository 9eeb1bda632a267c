package sendassessmentnotification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/common/metrics"
	"assessment-workers/internal/common/store"
	"assessment-workers/internal/common/validation"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "send-assessment-notification"
)

var (
	ErrMissingAssessmentID = errors.New("MISSING_ASSESSMENT_ID")
	ErrAssessmentNotFound  = errors.New("ASSESSMENT_NOT_FOUND")
	ErrInvalidRecipient    = errors.New("INVALID_RECIPIENT")
	ErrSendFailed          = errors.New("NOTIFICATION_SEND_FAILED")
)

type Handler struct {
	config *Config
	store  *store.Store
	email  EmailSender
	sms    SMSSender
	logger logger.Logger
	errs   *apperrors.ErrorHandler
}

func NewHandler(config *Config, st *store.Store, email EmailSender, sms SMSSender, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		store:  st,
		email:  email,
		sms:    sms,
		logger: scoped,
		errs:   apperrors.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.reportFailure(client, job,
			apperrors.NewPayloadValidationFailedError(fmt.Sprintf("parse input: %v", err)))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.reportFailure(client, job, asStandardError(err, &input))
		return err
	}

	h.completeJob(client, job, output)
	return nil
}

// asStandardError maps execute's sentinel errors onto the shared error
// vocabulary, which carries the retry policy per code.
func asStandardError(err error, input *Input) error {
	switch {
	case errors.Is(err, ErrMissingAssessmentID):
		return apperrors.NewPayloadValidationFailedError("assessmentId is required")
	case errors.Is(err, ErrAssessmentNotFound):
		return apperrors.NewAssessmentNotFoundError(input.AssessmentID)
	case errors.Is(err, ErrInvalidRecipient):
		return apperrors.NewBusinessRuleError("Invalid notification recipient", err.Error())
	case errors.Is(err, ErrSendFailed):
		channel := "email"
		if strings.Contains(err.Error(), "sms:") {
			channel = "sms"
		}
		return apperrors.NewNotificationSendFailedError(channel, err)
	default:
		return err
	}
}

func (h *Handler) reportFailure(client worker.JobClient, job entities.Job, err error) {
	code := "INTERNAL_ERROR"
	if stdErr, ok := err.(*apperrors.StandardError); ok {
		code = string(stdErr.Code)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
	h.errs.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.AssessmentID == "" {
		return nil, ErrMissingAssessmentID
	}

	contact, err := h.store.GetContact(ctx, input.AssessmentID)
	if err != nil {
		if errors.Is(err, store.ErrAssessmentNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAssessmentNotFound, input.AssessmentID)
		}
		return nil, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	output := &Output{Recipient: contact.ContactEmail}

	if h.config.EmailEnabled {
		if !validation.ValidateEmail(contact.ContactEmail) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRecipient, contact.ContactEmail)
		}

		subject, body := buildEmail(contact, input)
		resp, err := h.email.SendEmail(ctx, &ses.SendEmailInput{
			Source: aws.String(h.config.FromEmail),
			Destination: &sestypes.Destination{
				ToAddresses: []string{contact.ContactEmail},
			},
			Message: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body: &sestypes.Body{
					Text: &sestypes.Content{Data: aws.String(body)},
				},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("%w: email: %v", ErrSendFailed, err)
		}
		output.EmailSent = true
		if resp != nil && resp.MessageId != nil {
			output.EmailMessageID = *resp.MessageId
		}
	}

	if h.shouldEscalate(input) && validation.ValidatePhone(contact.ContactPhone) {
		_, err := h.sms.Publish(ctx, &sns.PublishInput{
			PhoneNumber: aws.String(contact.ContactPhone),
			Message:     aws.String(buildSMS(contact, input)),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: sms: %v", ErrSendFailed, err)
		}
		output.SMSSent = true
	}

	h.logger.Info("notification delivered", map[string]interface{}{
		"assessmentId": input.AssessmentID,
		"emailSent":    output.EmailSent,
		"smsSent":      output.SMSSent,
	})

	return output, nil
}

func (h *Handler) shouldEscalate(input *Input) bool {
	if !h.config.SMSEnabled || h.sms == nil || h.config.EscalateOnStatus == "" {
		return false
	}
	for _, result := range input.ValidationResults {
		if result.Status == h.config.EscalateOnStatus {
			return true
		}
	}
	return false
}

func buildEmail(contact *store.AssessmentContact, input *Input) (subject, body string) {
	subject = fmt.Sprintf("Resultados de su evaluacion de preparacion para IA - %s", contact.Organization)

	var b strings.Builder
	fmt.Fprintf(&b, "Estimado/a %s,\n\n", contact.ContactName)
	fmt.Fprintf(&b, "La evaluacion de madurez de IA de %s ha finalizado.\n\n", contact.Organization)
	fmt.Fprintf(&b, "Nivel de madurez: %s (%.1f / 5.0)\n\n", input.MaturityLevel, input.MaturityScore)

	if len(input.ValidationResults) > 0 {
		b.WriteString("Casos de uso evaluados:\n")
		for _, result := range input.ValidationResults {
			fmt.Fprintf(&b, "  - %s: %s (preparacion %.1f / 10)\n",
				result.UseCase.Title, statusLabel(result.Status), result.ReadinessScore)
		}
		b.WriteString("\n")
	}

	b.WriteString("El informe completo con hallazgos y recomendaciones esta disponible en la plataforma.\n")
	return subject, b.String()
}

func buildSMS(contact *store.AssessmentContact, input *Input) string {
	red := 0
	for _, result := range input.ValidationResults {
		if result.Status == "red" {
			red++
		}
	}
	return fmt.Sprintf("%s: la evaluacion de IA detecto %d caso(s) de uso con bloqueos criticos. Revise el informe.",
		contact.Organization, red)
}

func statusLabel(status string) string {
	switch status {
	case "green":
		return "Listo para implementar"
	case "yellow":
		return "Requiere preparacion previa"
	case "red":
		return "No recomendado por ahora"
	default:
		return status
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
