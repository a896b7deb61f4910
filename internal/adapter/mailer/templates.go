package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

var templates = template.Must(template.New("mail").Parse(`
{{define "order_confirmation"}}
<p>Hi {{.PatientName}},</p>
<p>Thank you for your order. Your <strong>{{.TestName}}</strong> kit is on
its way. Your order reference is <strong>#{{.OrderID}}</strong>.</p>
<p>Once your sample reaches the lab we will email you again when your
results are ready.</p>
<p>Eden Clinic</p>
{{end}}

{{define "order_notice"}}
<p>New paid order <strong>#{{.OrderID}}</strong>.</p>
<p>{{.PatientName}} ordered a {{.TestName}}.</p>
{{end}}

{{define "result_ready"}}
<p>Hi {{.Name}},</p>
<p>Your <strong>{{.TestName}}</strong> results are ready. Sign in to your
account to view and download them.</p>
<p>Eden Clinic</p>
{{end}}

{{define "password_reset"}}
<p>Hi {{.Name}},</p>
<p>We received a request to reset your password. The link below is valid
for one hour:</p>
<p><a href="{{.Link}}">Reset your password</a></p>
<p>If you did not request this you can ignore this email.</p>
{{end}}

{{define "welcome"}}
<p>Hi {{.Name}},</p>
<p>An account has been created for you at Eden Clinic. Set your password
using the link below:</p>
<p><a href="{{.Link}}">Set your password</a></p>
{{end}}
`))

func renderTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
