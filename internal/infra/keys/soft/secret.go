package soft

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// SecretPayload is the JSON shape accepted from secret stores. A bare hex
// string is accepted as well.
type SecretPayload struct {
	Alg           string `json:"alg,omitempty"`
	PrivateKeyHex string `json:"private_key_hex"`
}

func (p SecretPayload) Signer() (*Signer, error) {
	if p.Alg != "" && !strings.EqualFold(p.Alg, "secp256k1") {
		return nil, errors.New("unsupported key algorithm")
	}
	if p.PrivateKeyHex == "" {
		return nil, errors.New("private_key_hex is required")
	}
	return NewSignerFromHex(p.PrivateKeyHex)
}

func NewSignerFromSecret(raw []byte) (*Signer, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var payload SecretPayload
		if err := json.Unmarshal(trimmed, &payload); err != nil {
			return nil, errors.New("invalid signing key secret")
		}
		return payload.Signer()
	}
	return NewSignerFromHex(string(trimmed))
}
