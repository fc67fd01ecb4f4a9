package email

// Email is an outbound message.
type Email struct {
	To      []string
	Subject string
	Body    string
}

// TemplateData feeds the message templates.
type TemplateData map[string]interface{}
