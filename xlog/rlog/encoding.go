package rlog

import (
	"bytes"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// encodeRecord transforms p into cfg.Encoding's byte representation,
// applying cfg.UnicodeErrorPolicy to characters the target encoding
// cannot represent. A nil cfg.Encoding is a passthrough: bytes are
// written as given.
func encodeRecord(cfg Config, p []byte) ([]byte, error) {
	if cfg.Encoding == nil {
		return p, nil
	}

	enc := cfg.Encoding
	switch cfg.UnicodeErrorPolicy {
	case PolicyStrict:
		out, _, err := transform.Bytes(enc.NewEncoder(), p)
		if err != nil {
			return nil, &EncodingError{Err: err}
		}
		return out, nil
	case PolicyReplace:
		out, _, err := transform.Bytes(encoding.ReplaceUnsupported(enc.NewEncoder()), p)
		if err != nil {
			return nil, &EncodingError{Err: err}
		}
		return out, nil
	default: // PolicyIgnore
		return encodeIgnoring(enc, p)
	}
}

// encodeIgnoring encodes rune by rune, silently dropping any rune the
// target encoding cannot represent. golang.org/x/text's encoders don't
// expose a built-in "drop unsupported" mode (only strict or replace), so
// runes are peeled off one at a time and individually tested.
func encodeIgnoring(enc encoding.Encoding, p []byte) ([]byte, error) {
	var out bytes.Buffer
	encoder := enc.NewEncoder()
	for _, r := range string(p) {
		buf := make([]byte, utf8RuneLen)
		n := copy(buf, string(r))
		chunk, _, err := transform.Bytes(encoder, buf[:n])
		if err != nil {
			continue
		}
		out.Write(chunk)
	}
	return out.Bytes(), nil
}

const utf8RuneLen = 4
