// Package hook decodes Claude Code hook input and writes decisions back using
// the hook exit-code protocol.
package hook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrNotObject is returned when the input is valid JSON but not an object.
	ErrNotObject = errors.New("hook input is not a JSON object")
	// ErrTrailingData is returned when anything but whitespace follows the object.
	ErrTrailingData = errors.New("hook input has data after the JSON object")
)

// Request is the Stop hook input.
type Request struct {
	Cwd       string `json:"cwd"`
	SessionID string `json:"session_id"`
	// StopHookActive is true when the agent is already continuing because of
	// a previous block from this hook.
	StopHookActive bool `json:"stop_hook_active"`
}

// PromptRequest is the UserPromptSubmit hook input.
type PromptRequest struct {
	Cwd       string `json:"cwd"`
	SessionID string `json:"session_id"`
	Prompt    string `json:"prompt"`
	// Message is the field older hook runners used for the prompt text.
	Message string `json:"message"`
}

// Text returns the submitted prompt.
func (p PromptRequest) Text() string {
	if p.Prompt != "" {
		return p.Prompt
	}
	return p.Message
}

// Decode reads a Stop hook request. Callers fail open on any error.
func Decode(r io.Reader) (Request, error) {
	var req Request
	if err := decodeObject(r, &req); err != nil {
		return Request{}, err
	}
	return req, nil
}

// DecodePrompt reads a UserPromptSubmit hook request.
func DecodePrompt(r io.Reader) (PromptRequest, error) {
	var req PromptRequest
	if err := decodeObject(r, &req); err != nil {
		return PromptRequest{}, err
	}
	return req, nil
}

func decodeObject(r io.Reader, v any) error {
	dec := json.NewDecoder(r)

	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode hook input: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return ErrTrailingData
	}
	if !bytes.HasPrefix(raw, []byte("{")) {
		return ErrNotObject
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode hook input: %w", err)
	}
	return nil
}
