package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Envelope is the uniform response shape of the remote service.
type Envelope struct {
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Status  Status          `json:"status,omitempty"`
}

// Status accepts either a numeric code (200) or a word ("success").
type Status struct {
	Code int
	Text string
}

func (s *Status) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = Status{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*s = Status{Text: text}
		if code, err := strconv.Atoi(text); err == nil {
			s.Code = code
		}
		return nil
	}
	var code int
	if err := json.Unmarshal(data, &code); err != nil {
		return fmt.Errorf("status must be a number or string: %w", err)
	}
	*s = Status{Code: code}
	return nil
}

func (s Status) MarshalJSON() ([]byte, error) {
	if s.Text != "" {
		return json.Marshal(s.Text)
	}
	return json.Marshal(s.Code)
}

// IsSet reports whether the envelope carried a status at all.
func (s Status) IsSet() bool {
	return s.Code != 0 || s.Text != ""
}

// OK reports whether the status denotes success.
func (s Status) OK() bool {
	if s.Code != 0 {
		return s.Code >= 200 && s.Code < 300
	}
	switch strings.ToLower(s.Text) {
	case "success", "ok", "true":
		return true
	}
	return false
}

// Success combines the HTTP status with the envelope status, when present.
func (e Envelope) Success(httpStatus int) bool {
	if httpStatus < 200 || httpStatus >= 300 {
		return false
	}
	return !e.Status.IsSet() || e.Status.OK()
}

// Decode unmarshals the data member into out.
func (e Envelope) Decode(out any) error {
	if out == nil || len(e.Data) == 0 || bytes.Equal(e.Data, []byte("null")) {
		return nil
	}
	return json.Unmarshal(e.Data, out)
}
