package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/bizdir/app/models"
)

var templates = template.Must(template.New("mail").Parse(`
{{define "received"}}<p>Hello {{.Sub.SubmitterName}},</p>
<p>thank you for your {{.Sub.TypeLabel}} request for <strong>{{.Sub.BusinessName}}</strong>. We will review it shortly.</p>{{end}}
{{define "admin_received"}}<p>A new {{.Sub.TypeLabel}} request for <strong>{{.Sub.BusinessName}}</strong> from {{.Sub.SubmitterName}} &lt;{{.Sub.SubmitterEmail}}&gt; is waiting for review.</p>
<p><a href="{{.Link}}">Review submissions</a></p>{{end}}
{{define "verify"}}<p>Hello {{.Sub.SubmitterName}},</p>
<p>please confirm your claim for <strong>{{.Sub.BusinessName}}</strong> by opening this link:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>{{end}}
{{define "approved"}}<p>Hello {{.Sub.SubmitterName}},</p>
<p>your {{.Sub.TypeLabel}} request for <strong>{{.Sub.BusinessName}}</strong> has been approved.</p>
{{if .Link}}<p><a href="{{.Link}}">View the listing</a></p>{{end}}{{end}}
{{define "rejected"}}<p>Hello {{.Sub.SubmitterName}},</p>
<p>unfortunately your {{.Sub.TypeLabel}} request for <strong>{{.Sub.BusinessName}}</strong> was not approved.</p>
{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}{{end}}
`))

type mailData struct {
	Sub    *models.Submission
	Link   string
	Reason string
}

// Notifier mails submitters and the site admin about submission events.
// Delivery failures are logged only.
type Notifier struct {
	mailer      Mailer
	adminEmail  func() string
	baseURL     string
	businessURL func(b *models.Business) string
}

// NewNotifier builds a notifier. adminEmail is evaluated per event so changed
// settings apply immediately.
func NewNotifier(m Mailer, adminEmail func() string, baseURL string, businessURL func(b *models.Business) string) *Notifier {
	return &Notifier{mailer: m, adminEmail: adminEmail, baseURL: baseURL, businessURL: businessURL}
}

func (n *Notifier) send(to, subject, tmpl string, data mailData) {
	if to == "" {
		return
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, tmpl, data); err != nil {
		log.Errorf("[Mail] render %s: %v", tmpl, err)
		return
	}
	if err := n.mailer.Send(to, subject, buf.String()); err != nil {
		log.Errorf("[Mail] %s mail to %s failed: %v", tmpl, to, err)
	}
}

func (n *Notifier) SubmissionReceived(s *models.Submission) {
	if s.Type != models.SUBMISSION_TYPE_CLAIM {
		n.send(s.SubmitterEmail, fmt.Sprintf("We received your submission: %s", s.BusinessName), "received", mailData{Sub: s})
	}
	if admin := n.adminEmail(); admin != "" {
		n.send(admin, fmt.Sprintf("[Directory] %s pending: %s", s.TypeLabel(), s.BusinessName), "admin_received",
			mailData{Sub: s, Link: n.baseURL + "/admin/submissions"})
	}
}

func (n *Notifier) ClaimVerification(s *models.Submission, verifyURL string) {
	n.send(s.SubmitterEmail, fmt.Sprintf("Confirm your claim for %s", s.BusinessName), "verify", mailData{Sub: s, Link: verifyURL})
}

func (n *Notifier) SubmissionApproved(s *models.Submission, b *models.Business) {
	link := ""
	if b != nil && n.businessURL != nil {
		link = n.baseURL + n.businessURL(b)
	}
	n.send(s.SubmitterEmail, fmt.Sprintf("Approved: %s", s.BusinessName), "approved", mailData{Sub: s, Link: link})
}

func (n *Notifier) SubmissionRejected(s *models.Submission, reason string) {
	n.send(s.SubmitterEmail, fmt.Sprintf("Update on your submission: %s", s.BusinessName), "rejected", mailData{Sub: s, Reason: reason})
}
