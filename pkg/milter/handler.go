package milter

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/d--j/go-milter"
	"github.com/zpam/nbspam/pkg/config"
	"github.com/zpam/nbspam/pkg/email"
	"github.com/zpam/nbspam/pkg/learning"
)

// Limits on what is kept of each message for classification
const (
	MaxBodyBytes   = 1 << 20
	MaxHeaderBytes = 64 << 10
)

// Handler implements milter.Milter for a single SMTP connection. It
// collects the headers and body of each message and classifies the decoded
// subject and text parts at end of message.
type Handler struct {
	milter.NoOpMilter
	config     config.MilterConfig
	classifier learning.Predictor
	log        *slog.Logger

	from      string
	subject   string
	headers   strings.Builder
	body      strings.Builder
	truncated bool
	startTime time.Time
}

// NewHandler creates a handler for one connection
func NewHandler(cfg config.MilterConfig, classifier learning.Predictor, log *slog.Logger) *Handler {
	return &Handler{
		config:     cfg,
		classifier: classifier,
		log:        log,
		startTime:  time.Now(),
	}
}

// NewConnection is called when a new SMTP connection is established
func (h *Handler) NewConnection(m milter.Modifier) error {
	h.startTime = time.Now()
	return nil
}

// MailFrom starts a new message
func (h *Handler) MailFrom(from string, esmtpArgs string, m milter.Modifier) (*milter.Response, error) {
	h.reset()
	h.from = from
	h.startTime = time.Now()
	return milter.RespContinue, nil
}

// Header records a message header. Headers past MaxHeaderBytes are dropped,
// though the subject is always kept.
func (h *Handler) Header(name string, value string, m milter.Modifier) (*milter.Response, error) {
	if strings.EqualFold(name, "subject") {
		h.subject = value
	}
	line := name + ": " + value + "\r\n"
	if h.headers.Len()+len(line) > MaxHeaderBytes {
		h.truncated = true
		return milter.RespContinue, nil
	}
	h.headers.WriteString(line)
	return milter.RespContinue, nil
}

// BodyChunk appends body data up to MaxBodyBytes
func (h *Handler) BodyChunk(chunk []byte, m milter.Modifier) (*milter.Response, error) {
	room := MaxBodyBytes - h.body.Len()
	if room <= 0 {
		h.truncated = true
		return milter.RespContinue, nil
	}
	if len(chunk) > room {
		chunk = chunk[:room]
		h.truncated = true
	}
	h.body.Write(chunk)
	return milter.RespContinue, nil
}

// EndOfMessage classifies the message, tags it and decides its fate
func (h *Handler) EndOfMessage(m milter.Modifier) (*milter.Response, error) {
	v, err := h.verdict()
	if err != nil {
		h.log.Error("Classification failed", "from", h.from, "error", err)
		return milter.RespTempFail, nil
	}

	h.log.Debug("Message classified",
		"from", h.from,
		"label", v.Label,
		"spam_probability", v.Probabilities.Spam,
		"truncated", h.truncated,
		"elapsed", time.Since(h.startTime))

	if h.config.AddSpamHeaders {
		if err := h.addSpamHeaders(m, v); err != nil {
			return milter.RespTempFail, fmt.Errorf("failed to add spam headers: %w", err)
		}
	}

	return h.determineAction(v), nil
}

// Abort discards the current message
func (h *Handler) Abort(m milter.Modifier) error {
	h.reset()
	return nil
}

func (h *Handler) reset() {
	h.from = ""
	h.subject = ""
	h.headers.Reset()
	h.body.Reset()
	h.truncated = false
}

// Text is what gets classified: the subject line followed by the body.
// MIME messages are decoded; anything the parser rejects is used raw.
func (h *Handler) Text() string {
	if h.headers.Len() > 0 {
		raw := h.headers.String() + "\r\n" + h.body.String()
		msg, err := email.Parse(strings.NewReader(raw))
		if err == nil {
			if msg.Subject == "" {
				msg.Subject = strings.TrimSpace(h.subject)
			}
			return msg.Text()
		}
		h.log.Debug("Falling back to raw message text", "from", h.from, "error", err)
	}

	if h.subject == "" {
		return h.body.String()
	}
	return h.subject + "\n" + h.body.String()
}

// Verdict is the classification of one message
type Verdict struct {
	Label         learning.Label
	Probabilities learning.Probabilities
	Reject        bool
}

func (h *Handler) verdict() (Verdict, error) {
	label, probs, err := h.classifier.Classify(learning.RawText(h.Text()))
	if err != nil {
		return Verdict{}, err
	}
	return Verdict{
		Label:         label,
		Probabilities: probs,
		Reject:        shouldReject(h.config.RejectThreshold, probs.Spam),
	}, nil
}

func shouldReject(threshold, spamProb float64) bool {
	return threshold > 0 && spamProb >= threshold
}

// headerAdder is the part of milter.Modifier used to tag messages
type headerAdder interface {
	AddHeader(name, value string) error
}

func (h *Handler) addSpamHeaders(m headerAdder, v Verdict) error {
	prefix := h.config.SpamHeaderPrefix

	status := "Ham"
	if v.Label == learning.Spam {
		status = "Spam"
	}
	if err := m.AddHeader(prefix+"Status", status); err != nil {
		return err
	}
	if err := m.AddHeader(prefix+"Probability", fmt.Sprintf("%.4f", v.Probabilities.Spam)); err != nil {
		return err
	}

	elapsed := float64(time.Since(h.startTime).Microseconds()) / 1000
	return m.AddHeader(prefix+"Info", fmt.Sprintf("nbspam; %.2fms", elapsed))
}

func (h *Handler) determineAction(v Verdict) *milter.Response {
	if !v.Reject {
		return milter.RespContinue
	}

	msg := h.config.RejectMessage
	if msg == "" {
		msg = fmt.Sprintf("5.7.1 Message rejected as spam (probability: %.2f)", v.Probabilities.Spam)
	}
	resp, err := milter.RejectWithCodeAndReason(550, msg)
	if err != nil {
		h.log.Warn("Invalid reject message, using default reject", "error", err)
		return milter.RespReject
	}
	return resp
}
