package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"kidslearning/internal/models"
)

// sesAPI is the part of the SES client used to send mail
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// ProgressReport is the content of a parent report email
type ProgressReport struct {
	LearnerName  string
	Grade        models.Grade
	Overall      models.OverallProgress
	Subjects     map[models.Subject]models.SubjectStats
	Achievements []models.AchievementStatus
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     sesAPI
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		if debug {
			log.Println("[DEBUG] Email service will skip sending all emails")
		}
		return &EmailService{enabled: false, debug: debug}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing email service with AWS SES")
		log.Printf("[DEBUG] AWS Region: %s", awsRegion)
		log.Printf("[DEBUG] From Email: %s", fromEmail)
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		debug:      debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// BuildProgressReport gathers the report content from the engine
func BuildProgressReport(progress *ProgressService) ProgressReport {
	report := ProgressReport{
		LearnerName: "Your learner",
		Overall:     progress.OverallProgress(),
		Subjects:    progress.SubjectBreakdown(),
	}
	if profile := progress.Profile(); profile != nil {
		report.LearnerName = profile.Name
		report.Grade = profile.Grade
	}
	for _, a := range progress.Achievements() {
		if a.Unlocked {
			report.Achievements = append(report.Achievements, a)
		}
	}
	return report
}

// SendProgressReport emails a progress summary. It reports false without
// error when sending is disabled.
func (s *EmailService) SendProgressReport(ctx context.Context, toEmail string, report ProgressReport) (bool, error) {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): progress report to %s", toEmail)
		return false, nil
	}

	subject := fmt.Sprintf("%s's learning progress", report.LearnerName)
	htmlBody, textBody := renderProgressReport(report, s.appBaseURL)

	if s.debug {
		log.Printf("[DEBUG] Sending progress report: subject=%s, to=%s", subject, toEmail)
		log.Printf("[DEBUG] HTML body length: %d bytes", len(htmlBody))
	}

	if err := s.sendEmail(ctx, toEmail, subject, htmlBody, textBody); err != nil {
		return false, err
	}
	return true, nil
}

func renderProgressReport(report ProgressReport, appBaseURL string) (string, string) {
	subjects := make([]string, 0, len(report.Subjects))
	for subject := range report.Subjects {
		subjects = append(subjects, string(subject))
	}
	sort.Strings(subjects)

	var rows, lines strings.Builder
	for _, subject := range subjects {
		stats := report.Subjects[models.Subject(subject)]
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%d</td><td>%d%%</td></tr>\n",
			html.EscapeString(subject), stats.Activities, stats.AverageScore)
		fmt.Fprintf(&lines, "- %s: %d activities, average %d%%\n", subject, stats.Activities, stats.AverageScore)
	}

	var badges, badgeLines strings.Builder
	for _, a := range report.Achievements {
		fmt.Fprintf(&badges, "<li>%s %s</li>\n", a.Icon, html.EscapeString(a.Name))
		fmt.Fprintf(&badgeLines, "- %s %s\n", a.Icon, a.Name)
	}
	if len(report.Achievements) == 0 {
		badges.WriteString("<li>No badges yet. Keep going!</li>\n")
		badgeLines.WriteString("- No badges yet. Keep going!\n")
	}

	name := html.EscapeString(report.LearnerName)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #4a90e2; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		table { width: 100%%; border-collapse: collapse; }
		td, th { padding: 6px; border-bottom: 1px solid #ddd; text-align: left; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>%s's Progress</h1>
		</div>
		<div class="content">
			<p><strong>%d</strong> activities completed, average score <strong>%d%%</strong>, total streak <strong>%d</strong>.</p>
			<table>
				<tr><th>Subject</th><th>Activities</th><th>Average</th></tr>
				%s
			</table>
			<h3>Badges earned</h3>
			<ul>
				%s
			</ul>
			<p><a href="%s">Open Kids Learning</a></p>
		</div>
		<div class="footer">
			<p>This is an automated email from Kids Learning. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, name, report.Overall.TotalActivities, report.Overall.AverageScore, report.Overall.TotalStreak,
		rows.String(), badges.String(), appBaseURL)

	textBody := fmt.Sprintf(`%s's Progress

%d activities completed, average score %d%%, total streak %d.

Subjects:
%s
Badges earned:
%s
Open Kids Learning: %s

---
This is an automated email from Kids Learning. Please do not reply.
`, report.LearnerName, report.Overall.TotalActivities, report.Overall.AverageScore, report.Overall.TotalStreak,
		lines.String(), badgeLines.String(), appBaseURL)

	return htmlBody, textBody
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
		if s.debug {
			log.Printf("[DEBUG] SES SendEmail failed: %v", err)
		}
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] Message ID: %s", *result.MessageId)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
