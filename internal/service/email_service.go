package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"wordmastery/internal/models"
)

// sesAPI is the part of the SES client the email service uses
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client    sesAPI
	fromEmail string
	fromName  string
	enabled   bool
	logger    *zap.Logger
}

// NewEmailService creates a new email service. Without a sender address the
// service is disabled and sending is a logged no-op.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName string, logger *zap.Logger) (*EmailService, error) {
	if fromEmail == "" {
		logger.Info("email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, logger: logger}, nil
	}

	// Load AWS configuration
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("email service enabled", zap.String("from", fromEmail), zap.String("region", awsRegion))
	return newEmailServiceWithClient(sesv2.NewFromConfig(cfg), fromEmail, fromName, logger), nil
}

func newEmailServiceWithClient(client sesAPI, fromEmail, fromName string, logger *zap.Logger) *EmailService {
	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
		logger:    logger,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

var progressReportHTML = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #4a90e2; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		table { border-collapse: collapse; width: 100%; }
		td, th { padding: 6px; border-bottom: 1px solid #ddd; text-align: left; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Vocabulary Progress for {{.Name}}</h1>
		</div>
		<div class="content">
			<p>{{.Summary.TotalWords}} words practised, average accuracy {{.Summary.AverageAccuracy}}%.
			{{.Summary.StrongWordsCount}} mastered, {{.Summary.WeakWordsCount}} need more practice.</p>
			{{if .WeakWords}}
			<h2>Words to practise</h2>
			<table>
				<tr><th>Word</th><th>Meaning</th><th>Accuracy</th><th>Try</th></tr>
				{{range .WeakWords}}<tr><td>{{.Word}}</td><td>{{.Translation}}</td><td>{{.Accuracy}}%</td><td>{{range $i, $g := .RecommendedGames}}{{if $i}}, {{end}}{{$g}}{{end}}</td></tr>
				{{end}}
			</table>
			{{end}}
			{{if .Recommendations}}
			<h2>Next steps</h2>
			<ul>
				{{range .Recommendations}}<li><strong>{{.Title}}</strong> ({{.EstimatedTime}}): {{.Description}}</li>
				{{end}}
			</ul>
			{{end}}
		</div>
		<div class="footer">
			<p>This is an automated email from Word Mastery. Please do not reply.</p>
		</div>
	</div>
</body>
</html>`))

type progressReportView struct {
	Name string
	models.WeakWordsAnalysis
}

// SendProgressReport emails a student's weak-words analysis
func (s *EmailService) SendProgressReport(ctx context.Context, toEmail, studentName string, analysis models.WeakWordsAnalysis) error {
	if !s.enabled {
		s.logger.Info("skipping email send (service disabled)", zap.String("kind", "progress_report"), zap.String("to", toEmail))
		return nil
	}

	var html bytes.Buffer
	if err := progressReportHTML.Execute(&html, progressReportView{Name: studentName, WeakWordsAnalysis: analysis}); err != nil {
		return fmt.Errorf("render progress report: %w", err)
	}

	subject := fmt.Sprintf("Vocabulary progress for %s", studentName)
	return s.sendEmail(ctx, toEmail, subject, html.String(), progressReportText(studentName, analysis))
}

func progressReportText(name string, analysis models.WeakWordsAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Vocabulary progress for %s\n\n", name)
	fmt.Fprintf(&b, "%d words practised, average accuracy %d%%.\n", analysis.Summary.TotalWords, analysis.Summary.AverageAccuracy)
	fmt.Fprintf(&b, "%d mastered, %d need more practice.\n", analysis.Summary.StrongWordsCount, analysis.Summary.WeakWordsCount)

	if len(analysis.WeakWords) > 0 {
		b.WriteString("\nWords to practise:\n")
		for _, w := range analysis.WeakWords {
			games := make([]string, len(w.RecommendedGames))
			for i, g := range w.RecommendedGames {
				games[i] = string(g)
			}
			fmt.Fprintf(&b, "- %s (%s): %d%%, try %s\n", w.Word, w.Translation, w.Accuracy, strings.Join(games, ", "))
		}
	}

	if len(analysis.Recommendations) > 0 {
		b.WriteString("\nNext steps:\n")
		for _, r := range analysis.Recommendations {
			fmt.Fprintf(&b, "- %s (%s): %s\n", r.Title, r.EstimatedTime, r.Description)
		}
	}
	return b.String()
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	fields := []zap.Field{zap.String("to", toEmail), zap.String("subject", subject)}
	if result.MessageId != nil {
		fields = append(fields, zap.String("message_id", *result.MessageId))
	}
	s.logger.Info("email sent", fields...)
	return nil
}
