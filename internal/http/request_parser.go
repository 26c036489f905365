// Package http provides HTTP server and handler implementations.
//
// This file implements parsing of inbound message requests. The webhook
// posts form-encoded fields; the API accepts JSON or form data.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// maxBodyBytes bounds any inbound message body.
const maxBodyBytes = 64 << 10

// limitBody caps the request body before anything reads it.
func limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		next.ServeHTTP(w, r)
	})
}

// Form fields Twilio posts to the webhook.
const (
	twilioBodyField = "Body"
	twilioFromField = "From"
)

// API fields.
const (
	apiTextField   = "text"
	apiSenderField = "sender"
)

var errMissingText = errors.New("text is required")

// InboundMessage is one message handed to the interpreter.
type InboundMessage struct {
	Text   string
	Sender string
}

// ParseWebhookForm reads the Twilio form fields. The rate-limit key
// extractor may already have parsed the form; ParseForm is idempotent.
func ParseWebhookForm(r *http.Request) (InboundMessage, error) {
	if err := r.ParseForm(); err != nil {
		return InboundMessage{}, err
	}
	return InboundMessage{
		Text:   sanitizeInput(r.PostForm.Get(twilioBodyField)),
		Sender: sanitizeInput(r.PostForm.Get(twilioFromField)),
	}, nil
}

// ParseAPIMessage reads an API request body. Text must be present.
func ParseAPIMessage(r *http.Request) (InboundMessage, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return InboundMessage{}, err
	}
	msg := InboundMessage{
		Text:   p.Get(apiTextField),
		Sender: p.Get(apiSenderField),
	}
	if msg.Text == "" {
		return msg, errMissingText
	}
	return msg, nil
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(r.Body)
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(p.contentType, "application/json") || trimmed[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, then trims whitespace.
func sanitizeInput(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
