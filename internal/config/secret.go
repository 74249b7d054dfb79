package config

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Redacted is what a Secret renders as on every path that could land in
// logs, terminal output, or a serialized file.
const Redacted = "****"

// Secret holds a sensitive string and refuses to print it. All rendering
// paths (fmt verbs, JSON, YAML) yield Redacted; only Value returns the
// plaintext. The field stays unexported so reflection-based encoders see
// an empty struct instead of the plaintext.
type Secret struct {
	value string
}

func NewSecret(v string) Secret {
	return Secret{value: v}
}

// Value returns the plaintext. Call sites hand it straight to the
// provider and drop it.
func (s Secret) Value() string {
	return s.value
}

func (s Secret) String() string {
	return Redacted
}

func (s Secret) GoString() string {
	return "config.Secret(" + Redacted + ")"
}

// Format implements fmt.Formatter so no verb reaches the plaintext,
// including %v applied to a struct that embeds a Secret.
func (s Secret) Format(f fmt.State, verb rune) {
	if verb == 'v' && f.Flag('#') {
		io.WriteString(f, s.GoString())
		return
	}
	if verb == 'q' {
		fmt.Fprintf(f, "%q", Redacted)
		return
	}
	io.WriteString(f, Redacted)
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + Redacted + `"`), nil
}

func (s Secret) MarshalYAML() (interface{}, error) {
	return Redacted, nil
}

func (s *Secret) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	s.value = raw
	return nil
}
