package mail

// Attachment is a single file included with a message.
type Attachment struct {
	Filename string
	Content  []byte
	MimeType string
}

// Message is one outbound email. The sender identity is fixed by the mailer
// configuration, not the caller.
type Message struct {
	To         string
	Subject    string
	Body       string
	Attachment *Attachment
}
