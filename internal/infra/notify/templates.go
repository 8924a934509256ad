package notify

import (
	"bytes"
	"fmt"
	"text/template"

	"carrental/internal/app/policies"
)

type message struct {
	subject *template.Template
	body    *template.Template
}

var messages = map[string]message{
	policies.TemplateBookingCreated: {
		subject: mustParse("Booking {{.ID}} received"),
		body: mustParse(`Hi {{.CustomerName}},

Your booking {{.ID}} from {{.StartDate}} to {{.EndDate}} is waiting for payment.
Total: {{printf "%.2f" .TotalAmount}}
{{with .Vehicle}}Vehicle: {{.Make}} {{.Model}} ({{.Category}})
{{end}}`),
	},
	policies.TemplateBookingCancelled: {
		subject: mustParse("Booking {{.ID}} cancelled"),
		body: mustParse(`Hi {{.CustomerName}},

Your booking {{.ID}} from {{.StartDate}} to {{.EndDate}} has been cancelled.
`),
	},
	policies.TemplatePaymentConfirmed: {
		subject: mustParse("Payment received for booking {{.ID}}"),
		body: mustParse(`Hi {{.CustomerName}},

We received your payment of {{printf "%.2f" .TotalAmount}} for booking {{.ID}}.
Your car will be ready on {{.StartDate}}.
`),
	},
}

func mustParse(text string) *template.Template {
	return template.Must(template.New("").Option("missingkey=zero").Parse(text))
}

// Render returns the subject and plain-text body for a template.
func Render(name string, data any) (string, string, error) {
	msg, ok := messages[name]
	if !ok {
		return "", "", fmt.Errorf("notify: unknown template %q", name)
	}
	var subject, body bytes.Buffer
	if err := msg.subject.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("notify: render subject: %w", err)
	}
	if err := msg.body.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("notify: render body: %w", err)
	}
	return subject.String(), body.String(), nil
}
