package notification

// Channel delivers one message to a set of addresses (device tokens, email
// addresses).
type Channel interface {
	Send(recipients []string, subject, body string) error
}
