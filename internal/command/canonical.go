package command

import (
	"bytes"

	"github.com/aleister1102/webwatch/internal/common/errorwrapper"
	"github.com/aleister1102/webwatch/internal/security"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Canonical returns the bytes covered by a command's hmac:
// {"type":…,"payload":…,"ts":…} in that order, built from the message's own
// tokens with insignificant whitespace removed. Absent fields become null and
// every other field is excluded.
func Canonical(raw []byte) []byte {
	var b bytes.Buffer
	b.WriteString(`{"type":`)
	writeToken(&b, gjson.GetBytes(raw, "type"))
	b.WriteString(`,"payload":`)
	writeToken(&b, gjson.GetBytes(raw, "payload"))
	b.WriteString(`,"ts":`)
	writeToken(&b, gjson.GetBytes(raw, "ts"))
	b.WriteByte('}')
	return b.Bytes()
}

func writeToken(b *bytes.Buffer, r gjson.Result) {
	if !r.Exists() {
		b.WriteString("null")
		return
	}
	b.Write(pretty.Ugly([]byte(r.Raw)))
}

// Verify checks that raw is a JSON object carrying a string hmac equal to the
// HMAC-SHA256 of its canonical form under secret.
func Verify(raw []byte, secret []byte) error {
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return errorwrapper.NewValidationError("message", len(raw), "not a JSON object")
	}

	mac := gjson.GetBytes(raw, "hmac")
	if mac.Type != gjson.String {
		return errorwrapper.NewAuthenticationError("missing hmac")
	}

	expected := security.HMACSHA256Base64(secret, Canonical(raw))
	if !security.ConstantTimeEquals(mac.String(), expected) {
		return errorwrapper.NewAuthenticationError("hmac mismatch")
	}
	return nil
}
