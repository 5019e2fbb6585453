package command

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/aleister1102/webwatch/internal/common/errorwrapper"
	"github.com/aleister1102/webwatch/internal/security"
	"github.com/go-playground/validator/v10"
)

// Envelope is a command envelope ready to be published.
type Envelope struct {
	Type    CommandType `json:"type"`
	Payload any         `json:"payload"`
	TS      int64       `json:"ts"`
	HMAC    string      `json:"hmac"`
}

// Bytes encodes the envelope compactly without HTML escaping.
func (c Envelope) Bytes() ([]byte, error) {
	return marshalCompact(c)
}

// Signer builds authenticated commands for a device.
type Signer struct {
	secret   []byte
	validate *validator.Validate
	now      func() time.Time
}

// NewSigner creates a signer for the shared device secret.
func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, errorwrapper.NewValidationError("secret", "", "device secret cannot be empty")
	}
	return &Signer{secret: []byte(secret), validate: newValidator(), now: time.Now}, nil
}

// Sign validates payload for the command type and returns the signed
// envelope. UPSERT_SITE takes a SitePayload, every other type an IDPayload.
// A zero ts is replaced with the current time in milliseconds.
func (s *Signer) Sign(t CommandType, payload any, ts int64) (*Envelope, error) {
	if err := s.check(t, payload); err != nil {
		return nil, err
	}
	if ts == 0 {
		ts = s.now().UnixMilli()
	}

	cmd := Envelope{Type: t, Payload: payload, TS: ts}
	canonical, err := marshalCompact(struct {
		Type    CommandType `json:"type"`
		Payload any         `json:"payload"`
		TS      int64       `json:"ts"`
	}{t, payload, ts})
	if err != nil {
		return nil, errorwrapper.WrapError(err, "encode canonical command")
	}
	cmd.HMAC = security.HMACSHA256Base64(s.secret, canonical)
	return &cmd, nil
}

func (s *Signer) check(t CommandType, payload any) error {
	known, ok := ParseCommandType(string(t))
	if !ok || known != t {
		return errorwrapper.NewValidationError("type", string(t), "unknown command type")
	}

	switch p := payload.(type) {
	case SitePayload:
		if t != TypeUpsertSite {
			return errorwrapper.NewValidationError("payload", string(t), "site payload is only valid for UPSERT_SITE")
		}
		if err := s.validate.Struct(p); err != nil {
			return formatValidationError(err)
		}
	case IDPayload:
		if t == TypeUpsertSite {
			return errorwrapper.NewValidationError("payload", string(t), "UPSERT_SITE needs a site payload")
		}
		if err := s.validate.Struct(p); err != nil {
			return formatValidationError(err)
		}
	default:
		return errorwrapper.NewValidationError("payload", payload, "unsupported payload type")
	}
	return nil
}

func marshalCompact(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
