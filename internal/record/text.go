package record

import (
	"bytes"
	"errors"
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

// TextLength is the size of each character buffer passed to the module,
// including the terminating NUL.
const TextLength = 1024

var ErrTextTooLong = errors.New("record: text does not fit buffer")

// Text is a NUL-terminated narrow character buffer.
type Text [TextLength]byte

// Encodings maps code page names accepted in configuration to charmaps.
var Encodings = map[string]*charmap.Charmap{
	"windows-1250": charmap.Windows1250,
	"windows-1251": charmap.Windows1251,
	"windows-1252": charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"ibm437":       charmap.CodePage437,
}

// DefaultEncoding is the code page used when none is configured.
const DefaultEncoding = "windows-1252"

// LookupEncoding resolves a code page name, falling back to DefaultEncoding
// for the empty string.
func LookupEncoding(name string) (*charmap.Charmap, error) {
	if name == "" {
		name = DefaultEncoding
	}
	cm, ok := Encodings[name]
	if !ok {
		return nil, fmt.Errorf("record: unknown text encoding %q", name)
	}
	return cm, nil
}

// Encode fills t with s converted to the narrow code page cm. Runes the
// code page cannot represent are an error rather than being replaced.
func (t *Text) Encode(s string, cm *charmap.Charmap) error {
	b, err := cm.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return fmt.Errorf("record: encode %q: %w", s, err)
	}
	if len(b) >= TextLength {
		return fmt.Errorf("%w: %d bytes", ErrTextTooLong, len(b))
	}
	*t = Text{}
	copy(t[:], b)
	return nil
}

// Len is the number of bytes before the first NUL.
func (t *Text) Len() int {
	if i := bytes.IndexByte(t[:], 0); i >= 0 {
		return i
	}
	return TextLength
}

// Decode converts the buffer contents back from code page cm.
func (t *Text) Decode(cm *charmap.Charmap) string {
	b, err := cm.NewDecoder().Bytes(t[:t.Len()])
	if err != nil {
		return string(t[:t.Len()])
	}
	return string(b)
}

// Write copies s verbatim into the buffer, truncating to fit. Control laws
// use it to fill the message buffer.
func (t *Text) Write(s string) {
	*t = Text{}
	copy(t[:TextLength-1], s)
}

func (t *Text) String() string {
	return string(t[:t.Len()])
}
