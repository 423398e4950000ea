// internal/workers/notification/send-decision-notification/handler.go
package senddecisionnotification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	commonaws "lending-workers/internal/common/aws"
	"lending-workers/internal/common/logger"
	"lending-workers/internal/models"
)

const (
	TaskType = "send-decision-notification"
)

var (
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
)

type SESService interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type Handler struct {
	config    *Config
	sesClient SESService
	snsClient SNSService
	logger    logger.Logger
}

func NewHandler(config *Config, sesClient SESService, snsClient SNSService, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		sesClient: sesClient,
		snsClient: snsClient,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", err.Error(), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		retries := int32(0)
		if errors.Is(err, ErrNotificationSendFailed) {
			retries = 3
		}
		h.failJob(client, job, "NOTIFICATION_SEND_FAILED", err.Error(), retries)
		return
	}

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ApplicationID == "" || input.Email == "" {
		return nil, fmt.Errorf("%w: applicationId and email are required", ErrNotificationSendFailed)
	}

	subject, body := h.composeMessage(input)
	channels := []string{}

	if h.config.EmailEnabled {
		if err := h.sendEmail(ctx, input.Email, subject, body); err != nil {
			return nil, fmt.Errorf("%w: email: %v", ErrNotificationSendFailed, err)
		}
		channels = append(channels, "email")
	}

	if h.config.SMSEnabled && input.Phone != "" {
		if err := h.sendSMS(ctx, input.Phone, subject); err != nil {
			// SMS is secondary; a delivered email already satisfies the
			// notification requirement.
			h.logger.Warn("sms delivery failed", map[string]interface{}{
				"applicationId": input.ApplicationID,
				"error":         err,
			})
		} else {
			channels = append(channels, "sms")
		}
	}

	h.logger.Info("decision notification sent", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"channels":      channels,
	})
	return &Output{
		NotificationID: uuid.New().String(),
		Channels:       channels,
		SentAt:         time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// composeMessage keeps decline wording polite and free of internal
// diagnostics; the reason shown is the applicant-facing rule text only.
func (h *Handler) composeMessage(input *Input) (subject, body string) {
	if input.Status == string(models.StatusApproved) {
		subject = "Your financing application has been approved"
		body = fmt.Sprintf(
			"Hi %s,\n\nGood news: your application %s was approved. You have %d pre-approval offer(s) waiting in your dashboard.\n",
			input.FirstName, input.ApplicationID, input.OfferCount,
		)
		return subject, body
	}

	subject = "An update on your financing application"
	body = fmt.Sprintf(
		"Hi %s,\n\nThank you for applying. Unfortunately we are unable to approve application %s at this time.",
		input.FirstName, input.ApplicationID,
	)
	if input.Reason != "" {
		body += fmt.Sprintf(" Reason: %s.", input.Reason)
	}
	body += "\n\nYou are welcome to reapply once your circumstances change.\n"
	return subject, body
}

func (h *Handler) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := h.sesClient.SendEmail(ctx, commonaws.TextEmailInput(h.config.FromEmail, []string{to}, subject, body))
	return err
}

func (h *Handler) sendSMS(ctx context.Context, phone, message string) error {
	_, err := h.snsClient.Publish(ctx, commonaws.SMSInput("+1"+phone, message))
	return err
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	if retries > 0 && job.Retries > 0 {
		retriesToUse := retries
		if job.Retries < retries {
			retriesToUse = job.Retries
		}
		_, _ = client.NewFailJobCommand().
			JobKey(job.Key).
			Retries(retriesToUse).
			ErrorMessage(errorMessage).
			Send(context.Background())
		return
	}

	_, _ = client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
