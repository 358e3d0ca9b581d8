package mail

import "strings"

// Address is a mailbox with an optional display name.
type Address struct {
	Name  string
	Email string
}

// Attachment is a single file carried by an Envelope. Content holds the raw
// bytes; senders handle transfer encoding.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Envelope is one outbound message. Delivery is a single unit: it either
// succeeds for every recipient or fails.
type Envelope struct {
	From        Address
	To          []Address
	CC          []Address
	Subject     string
	Body        string
	Attachments []Attachment
	// Args are opaque key/value pairs forwarded to the provider for tracing.
	Args map[string]string
}

// Recipients converts plain addresses to Address values.
func Recipients(emails ...string) []Address {
	out := make([]Address, 0, len(emails))
	for _, e := range emails {
		out = append(out, Address{Email: e})
	}
	return out
}

// AddCC adds email as a carbon-copy recipient when it contains "@" and is
// not already a To or CC recipient. It reports whether the address was added.
func (e *Envelope) AddCC(email string) bool {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return false
	}
	for _, a := range append(e.To, e.CC...) {
		if strings.EqualFold(a.Email, email) {
			return false
		}
	}
	e.CC = append(e.CC, Address{Email: email})
	return true
}
