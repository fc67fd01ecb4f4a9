package email

import (
	"bytes"
	"fmt"
	"html/template"
)

// TemplateCredentials renders the staff-account credential email.
const TemplateCredentials = "credentials"

var builtinTemplates = map[string]string{
	TemplateCredentials: `
<h2>Welcome to SchoolPay, {{.FullName}}</h2>
<p>An account has been created for you.</p>
<p>Email: <b>{{.Email}}</b><br>
Temporary password: <b>{{.TempPassword}}</b></p>
<p>Please sign in and change your password right away.</p>
`,
}

// Render executes a built-in template with the given data.
func Render(name string, data TemplateData) (string, error) {
	raw, ok := builtinTemplates[name]
	if !ok {
		return "", fmt.Errorf("unknown email template %q", name)
	}
	tmpl, err := template.New(name).Parse(raw)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
