package mailer

import (
	"context"

	"github.com/ineedllc/ineed-api/pkg/helpers"
	tpl "github.com/ineedllc/ineed-api/pkg/mailer/templates"
)

// Sender delivers an EmailJob. The auth flows treat a Send error as fatal for
// the surrounding operation, so both implementations fail loudly.
type Sender interface {
	Send(ctx context.Context, job EmailJob) error
}

// DirectSender renders and sends through Mailgun synchronously.
type DirectSender struct {
	MG *Mailgun
}

func NewDirectSender(mg *Mailgun) *DirectSender {
	return &DirectSender{MG: mg}
}

func (s *DirectSender) Send(ctx context.Context, job EmailJob) error {
	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		var err error
		subject, text, html, err = tpl.Render(job.Template, job.Data)
		if err != nil {
			return err
		}
	}
	return s.MG.Send(ctx, job.To, subject, text, html)
}

// QueueSender enqueues the job for the email worker. A publish failure
// surfaces to the caller the same way a direct delivery failure would.
type QueueSender struct {
	Pub *helpers.RabbitPublisher
}

func NewQueueSender(pub *helpers.RabbitPublisher) *QueueSender {
	return &QueueSender{Pub: pub}
}

func (s *QueueSender) Send(ctx context.Context, job EmailJob) error {
	return s.Pub.PublishJSON(ctx, job)
}
