package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/securepulses/gatekeeper/internal/models"
	pkglogger "github.com/securepulses/gatekeeper/pkg/logger"
)

// NotificationSender is the outbound side of the pipeline: it receives a
// sanitized, validated, clean submission and nothing else.
type NotificationSender interface {
	SendAdminNotification(ctx context.Context, sub *models.ContactSubmission) error
	SendConfirmation(ctx context.Context, sub *models.ContactSubmission) error
}

// AWSSESEmailService sends contact notifications using AWS SES
type AWSSESEmailService struct {
	sesClient    *ses.Client
	fromAddress  string
	adminAddress string
	logger       *slog.Logger
}

// NewAWSSESEmailService creates a new AWS SES email service
func NewAWSSESEmailService(region, fromAddress, adminAddress string, logger *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailService{
		sesClient:    ses.NewFromConfig(cfg),
		fromAddress:  fromAddress,
		adminAddress: adminAddress,
		logger:       logger,
	}, nil
}

// SendAdminNotification forwards the submission to the site owner. The
// parameter mapping is fixed: name as the display sender, the visitor's email
// as Reply-To.
func (s *AWSSESEmailService) SendAdminNotification(ctx context.Context, sub *models.ContactSubmission) error {
	textBody := fmt.Sprintf(`New contact form submission:

Name: %s
Email: %s
Phone: %s
Company: %s

Message:
%s
`, sub.Name, sub.Email, sub.Phone, sub.Company, sub.Message)

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{s.adminAddress},
		},
		ReplyToAddresses: []string{sub.Email},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(fmt.Sprintf("[Contact Form] New message from %s", sub.Name)),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send admin notification via SES",
			slog.String("submission_id", sub.ID),
			slog.Any("error", err))
		return fmt.Errorf("failed to send admin notification: %w", err)
	}

	s.logger.Info("admin notification sent",
		slog.String("submission_id", sub.ID),
		slog.String("message_id", aws.ToString(result.MessageId)))

	return nil
}

// SendConfirmation sends the visitor an acknowledgement of their message.
func (s *AWSSESEmailService) SendConfirmation(ctx context.Context, sub *models.ContactSubmission) error {
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #f8f9fa; padding: 20px; text-align: center; border-radius: 4px; }
        .content { padding: 20px 0; }
        .footer { color: #666; font-size: 12px; margin-top: 20px; padding-top: 20px; border-top: 1px solid #eee; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>We received your message</h1>
        </div>
        <div class="content">
            <p>Hi %s,</p>
            <p>Thank you for reaching out. Our team reviews every request and will get back to you within one business day.</p>
            <p>For urgent security incidents, please use the emergency contact listed on our website.</p>
        </div>
        <div class="footer">
            <p>This is an automated message. Please do not reply to this email.</p>
        </div>
    </div>
</body>
</html>
`, sub.Name)

	textBody := fmt.Sprintf(`Hi %s,

Thank you for reaching out. Our team reviews every request and will get back to you within one business day.

For urgent security incidents, please use the emergency contact listed on our website.

This is an automated message. Please do not reply to this email.
`, sub.Name)

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{sub.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String("We received your request"),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data: aws.String(htmlBody),
				},
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send confirmation via SES",
			slog.String("submission_id", sub.ID),
			slog.String("email", pkglogger.SanitizedEmail(sub.Email)),
			slog.Any("error", err))
		return fmt.Errorf("failed to send confirmation: %w", err)
	}

	s.logger.Info("confirmation sent",
		slog.String("submission_id", sub.ID),
		slog.String("email", pkglogger.SanitizedEmail(sub.Email)),
		slog.String("message_id", aws.ToString(result.MessageId)))

	return nil
}
