package email

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mravi/bloodconnect/internal/app/models"
)

// EmailService defines the interface for email operations
type EmailService interface {
	SendNewRequestAlert(toEmail, toName string, req *models.BloodRequest) error
	SendRequestConfirmation(req *models.BloodRequest) error
	SendRequestApproved(req *models.BloodRequest) error
	SendRequestRejected(req *models.BloodRequest, reason string) error
	SendDonorsNeeded(toEmails []string, req *models.BloodRequest) error
	SendDonorAssigned(toEmail, donorName string, req *models.BloodRequest) error
	SendDonorSelectedToRequestor(req *models.BloodRequest, donorName string) error
	SendDonationCompleted(toEmail, donorName string, req *models.BloodRequest) error
	SendStudentWelcome(toEmail, toName, tempPassword string) error
	SendCertificateApproved(toEmail, toName, certificateNumber string) error
	SendCertificateReady(toEmail, toName, certificateNumber string) error
}

// SMTPConfig holds configuration for the SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
	BaseURL   string // Base URL for the application
}

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	return &EmailServiceImpl{
		config: config,
		logger: logger,
	}
}

// devMode reports whether SMTP credentials are missing, in which case
// emails are logged instead of sent.
func (s *EmailServiceImpl) devMode(toEmail, subject string) bool {
	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("subject", subject).
			Msg("SMTP credentials not configured - email not sent")
		return true
	}
	return false
}

func wrapBody(title, inner string) string {
	return fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #b71c1c;">%s</h2>
				%s
				<p>Best regards,<br>The BloodConnect Team</p>
			</div>
		</body>
		</html>
	`, title, inner)
}

func requestSummary(req *models.BloodRequest) string {
	return fmt.Sprintf(`
		<table style="border-collapse: collapse; margin: 20px 0;">
			<tr><td style="padding: 4px 12px 4px 0;"><strong>Blood Group</strong></td><td>%s</td></tr>
			<tr><td style="padding: 4px 12px 4px 0;"><strong>Units</strong></td><td>%d</td></tr>
			<tr><td style="padding: 4px 12px 4px 0;"><strong>Hospital</strong></td><td>%s</td></tr>
			<tr><td style="padding: 4px 12px 4px 0;"><strong>Location</strong></td><td>%s</td></tr>
			<tr><td style="padding: 4px 12px 4px 0;"><strong>Needed By</strong></td><td>%s</td></tr>
			<tr><td style="padding: 4px 12px 4px 0;"><strong>Urgency</strong></td><td>%s</td></tr>
		</table>
	`, req.BloodGroup, req.Units, req.HospitalName, req.Location,
		req.DateTime.Format(time.RFC1123), req.Urgency)
}

// SendNewRequestAlert notifies an admin about a newly submitted blood request
func (s *EmailServiceImpl) SendNewRequestAlert(toEmail, toName string, req *models.BloodRequest) error {
	subject := fmt.Sprintf("New Blood Request - %s (%s)", req.BloodGroup, req.Urgency)
	if s.devMode(toEmail, subject) {
		return nil
	}

	inner := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>A new blood request from <strong>%s</strong> is awaiting review.</p>
		%s
		<p>Please log in to the admin dashboard to approve or reject it.</p>
	`, toName, req.RequestorName, requestSummary(req))

	return s.sendHTMLEmail(toEmail, subject, wrapBody("New Blood Request", inner))
}

// SendRequestConfirmation acknowledges the requestor's submission
func (s *EmailServiceImpl) SendRequestConfirmation(req *models.BloodRequest) error {
	subject := "Blood Request Received - BloodConnect"
	if s.devMode(req.Email, subject) {
		return nil
	}

	inner := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>We have received your blood request. Our team will review it shortly and you will be notified once it is approved.</p>
		%s
	`, req.RequestorName, requestSummary(req))

	return s.sendHTMLEmail(req.Email, subject, wrapBody("Request Received", inner))
}

// SendRequestApproved tells the requestor their request was approved
func (s *EmailServiceImpl) SendRequestApproved(req *models.BloodRequest) error {
	subject := "Blood Request Approved - BloodConnect"
	if s.devMode(req.Email, subject) {
		return nil
	}

	inner := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>Your blood request has been approved. Matching donors are being notified and you will hear from us as soon as a donor is assigned.</p>
		%s
	`, req.RequestorName, requestSummary(req))

	return s.sendHTMLEmail(req.Email, subject, wrapBody("Request Approved", inner))
}

// SendRequestRejected tells the requestor their request was rejected
func (s *EmailServiceImpl) SendRequestRejected(req *models.BloodRequest, reason string) error {
	subject := "Blood Request Update - BloodConnect"
	if s.devMode(req.Email, subject) {
		return nil
	}
	if reason == "" {
		reason = "Request did not meet our criteria"
	}

	inner := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>We are sorry, but your blood request could not be approved.</p>
		<p><strong>Reason:</strong> %s</p>
		<p>You are welcome to submit a new request with updated details.</p>
	`, req.RequestorName, reason)

	return s.sendHTMLEmail(req.Email, subject, wrapBody("Request Not Approved", inner))
}

// SendDonorsNeeded asks matching eligible donors to opt in to an
// approved request. Sends fail independently, the first error is
// returned after all recipients were attempted.
func (s *EmailServiceImpl) SendDonorsNeeded(toEmails []string, req *models.BloodRequest) error {
	subject := fmt.Sprintf("Blood Donors Needed - %s (%s)", req.BloodGroup, req.Urgency)
	if len(toEmails) == 0 || s.devMode(strings.Join(toEmails, ", "), subject) {
		return nil
	}

	inner := fmt.Sprintf(`
		<p>Hello,</p>
		<p>A blood request matching your blood group has been approved and needs donors.</p>
		%s
		<p>If you can donate, please log in to BloodConnect and opt in to this request.</p>
	`, requestSummary(req))
	body := wrapBody("Blood Donors Needed", inner)

	var firstErr error
	for _, toEmail := range toEmails {
		if err := s.sendHTMLEmail(toEmail, subject, body); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SendDonorAssigned tells a donor they have been assigned to a request
func (s *EmailServiceImpl) SendDonorAssigned(toEmail, donorName string, req *models.BloodRequest) error {
	subject := "You Have Been Selected as a Donor - BloodConnect"
	if s.devMode(toEmail, subject) {
		return nil
	}

	inner := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>Thank you for opting in. You have been selected as the donor for the following request:</p>
		%s
		<p>Please reach the hospital at the scheduled time. The requestor may contact you for coordination.</p>
	`, donorName, requestSummary(req))

	return s.sendHTMLEmail(toEmail, subject, wrapBody("Donor Assignment", inner))
}

// SendDonorSelectedToRequestor tells the requestor a donor was assigned
func (s *EmailServiceImpl) SendDonorSelectedToRequestor(req *models.BloodRequest, donorName string) error {
	subject := "Donor Assigned to Your Request - BloodConnect"
	if s.devMode(req.Email, subject) {
		return nil
	}

	inner := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>A donor (<strong>%s</strong>) has been assigned to your blood request.</p>
		%s
	`, req.RequestorName, donorName, requestSummary(req))

	return s.sendHTMLEmail(req.Email, subject, wrapBody("Donor Assigned", inner))
}

// SendDonationCompleted thanks a donor after a completed donation
func (s *EmailServiceImpl) SendDonationCompleted(toEmail, donorName string, req *models.BloodRequest) error {
	subject := "Thank You for Your Donation - BloodConnect"
	if s.devMode(toEmail, subject) {
		return nil
	}

	inner := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>Your donation at <strong>%s</strong> has been recorded. Thank you for saving a life!</p>
		<p>Your donation certificate will be issued shortly. As a reminder, you will be eligible to donate again after three months.</p>
	`, donorName, req.HospitalName)

	return s.sendHTMLEmail(toEmail, subject, wrapBody("Donation Completed", inner))
}

// SendStudentWelcome sends login credentials to a newly registered student
func (s *EmailServiceImpl) SendStudentWelcome(toEmail, toName, tempPassword string) error {
	subject := "Welcome to BloodConnect"
	// Never log the temporary password
	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Msg("SMTP credentials not configured - welcome email with temporary password not sent")
		return nil
	}

	inner := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>An account has been created for you on BloodConnect, the campus blood donation platform.</p>
		<p>Your temporary password is: <strong>%s</strong></p>
		<p>Please log in at <a href="%s">%s</a> and change your password right away.</p>
	`, toName, tempPassword, s.config.BaseURL, s.config.BaseURL)

	return s.sendHTMLEmail(toEmail, subject, wrapBody("Welcome to BloodConnect", inner))
}

// SendCertificateApproved tells a donor their certificate request was approved
func (s *EmailServiceImpl) SendCertificateApproved(toEmail, toName, certificateNumber string) error {
	subject := "Donation Certificate Approved - BloodConnect"
	if s.devMode(toEmail, subject) {
		return nil
	}

	inner := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>Your donation certificate <strong>%s</strong> has been approved and will be generated shortly.</p>
	`, toName, certificateNumber)

	return s.sendHTMLEmail(toEmail, subject, wrapBody("Certificate Approved", inner))
}

// SendCertificateReady tells a donor their certificate is ready for download
func (s *EmailServiceImpl) SendCertificateReady(toEmail, toName, certificateNumber string) error {
	subject := "Your Donation Certificate is Ready - BloodConnect"
	if s.devMode(toEmail, subject) {
		return nil
	}

	inner := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>Your donation certificate <strong>%s</strong> has been generated. You can download it from your dashboard.</p>
	`, toName, certificateNumber)

	return s.sendHTMLEmail(toEmail, subject, wrapBody("Certificate Ready", inner))
}

// sendHTMLEmail sends an HTML email
func (s *EmailServiceImpl) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	auth := smtp.PlainAuth(
		"",
		s.config.Username,
		s.config.Password,
		s.config.Host,
	)

	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	headers["To"] = toEmail
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	message := ""
	for key, value := range headers {
		message += fmt.Sprintf("%s: %s\r\n", key, value)
	}
	message += "\r\n" + htmlBody

	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	if s.config.UseTLS {
		tlsConfig := &tls.Config{
			InsecureSkipVerify: true,
			ServerName:         s.config.Host,
		}

		conn, err := tls.Dial("tcp", serverAddress, tlsConfig)
		if err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
			return fmt.Errorf("failed to connect to SMTP server: %w", err)
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, s.config.Host)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to create SMTP client")
			return fmt.Errorf("failed to create SMTP client: %w", err)
		}
		defer client.Quit()

		if err = client.Auth(auth); err != nil {
			s.logger.Error().Err(err).Msg("SMTP authentication failed")
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}

		if err = client.Mail(s.config.FromEmail); err != nil {
			return fmt.Errorf("failed to set sender: %w", err)
		}
		if err = client.Rcpt(toEmail); err != nil {
			return fmt.Errorf("failed to set recipient: %w", err)
		}

		w, err := client.Data()
		if err != nil {
			return fmt.Errorf("failed to get data writer: %w", err)
		}
		if _, err = w.Write([]byte(message)); err != nil {
			return fmt.Errorf("failed to write email message: %w", err)
		}
		if err = w.Close(); err != nil {
			return fmt.Errorf("failed to close data writer: %w", err)
		}

		return nil
	}

	err := smtp.SendMail(
		serverAddress,
		auth,
		s.config.FromEmail,
		[]string{toEmail},
		[]byte(message),
	)
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
