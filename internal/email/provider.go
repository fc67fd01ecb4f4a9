package email

// Provider delivers email out of band. The messaging core only uses it for
// credential delivery when staff accounts are created.
type Provider interface {
	Send(email *Email) error
	SendTemplate(to []string, subject, templateName string, data TemplateData) error
}
