package mailer

// EmailJob is the JSON payload describing one outbound email. Jobs are either
// rendered and sent inline (direct sender) or put on the RabbitMQ queue for
// the email worker.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "otp"
	Data     map[string]any `json:"data,omitempty"`
}
