// Package email extracts the classifiable text of RFC 5322 messages: the
// decoded subject plus every inline text part, with HTML reduced to text.
package email

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"golang.org/x/net/html"
)

// Message is the part of an email the classifier looks at
type Message struct {
	From        string
	Subject     string
	Body        string
	Attachments []string
}

// Text is the subject followed by the body
func (m *Message) Text() string {
	switch {
	case m.Subject == "":
		return m.Body
	case m.Body == "":
		return m.Subject
	default:
		return m.Subject + "\n" + m.Body
	}
}

// ParseFile parses the message stored at path
func ParseFile(path string) (*Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open message: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads a complete message. Parts in charsets that cannot be decoded
// are kept as raw bytes.
func Parse(r io.Reader) (*Message, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	defer mr.Close()

	msg := &Message{}
	if subject, err := mr.Header.Subject(); err == nil {
		msg.Subject = strings.TrimSpace(subject)
	} else {
		msg.Subject = strings.TrimSpace(mr.Header.Get("Subject"))
	}
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		msg.From = from[0].Address
	}

	var plain, rich []string
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			return nil, fmt.Errorf("failed to read message part: %w", err)
		}
		if part == nil {
			continue
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			mediaType, _, _ := h.ContentType()
			body, err := io.ReadAll(part.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to read message body: %w", err)
			}
			switch {
			case mediaType == "text/html":
				rich = append(rich, HTMLText(body))
			case mediaType == "" || strings.HasPrefix(mediaType, "text/"):
				plain = append(plain, string(body))
			}
		case *mail.AttachmentHeader:
			name, _ := h.Filename()
			msg.Attachments = append(msg.Attachments, name)
		}
	}

	// Alternatives usually carry the same text twice; prefer the plain one.
	if len(plain) > 0 {
		msg.Body = strings.TrimSpace(strings.Join(plain, "\n"))
	} else {
		msg.Body = strings.TrimSpace(strings.Join(rich, "\n"))
	}
	return msg, nil
}

// HTMLText returns the visible text of an HTML document
func HTMLText(doc []byte) string {
	z := html.NewTokenizer(bytes.NewReader(doc))

	var b strings.Builder
	hidden := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			if isHiddenTag(z) {
				hidden++
			}
		case html.EndTagToken:
			if isHiddenTag(z) && hidden > 0 {
				hidden--
			}
		case html.TextToken:
			if hidden == 0 {
				b.Write(z.Text())
				b.WriteByte(' ')
			}
		}
	}
}

func isHiddenTag(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style", "head", "title":
		return true
	}
	return false
}
