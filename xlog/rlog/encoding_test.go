package rlog

import (
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func TestEncodeRecordPassthroughWhenNoEncoding(t *testing.T) {
	got, err := encodeRecord(Config{}, []byte("hello"))
	if err != nil {
		t.Fatalf("encodeRecord: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}
}

func TestEncodeRecordStrictFailsOnUnmappableRune(t *testing.T) {
	cfg := Config{Encoding: charmap.ISO8859_1, UnicodeErrorPolicy: PolicyStrict}
	_, err := encodeRecord(cfg, []byte("emoji: \U0001F600"))
	if err == nil {
		t.Fatalf("expected *EncodingError for unmappable rune under PolicyStrict")
	}
	if _, ok := err.(*EncodingError); !ok {
		t.Fatalf("expected *EncodingError, got %T", err)
	}
}

func TestEncodeRecordReplacePolicySubstitutes(t *testing.T) {
	cfg := Config{Encoding: charmap.ISO8859_1, UnicodeErrorPolicy: PolicyReplace}
	got, err := encodeRecord(cfg, []byte("emoji: \U0001F600"))
	if err != nil {
		t.Fatalf("encodeRecord under PolicyReplace should not error: %v", err)
	}
	if len(got) == 0 {
		t.Fatalf("expected non-empty replacement output")
	}
}

func TestEncodeRecordIgnorePolicyDropsUnmappableRunes(t *testing.T) {
	cfg := Config{Encoding: charmap.ISO8859_1, UnicodeErrorPolicy: PolicyIgnore}
	got, err := encodeRecord(cfg, []byte("ok\U0001F600ok"))
	if err != nil {
		t.Fatalf("encodeRecord under PolicyIgnore should not error: %v", err)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(got)
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if string(decoded) != "okok" {
		t.Fatalf("got %q, want %q (unmappable rune should be dropped)", decoded, "okok")
	}
}

func TestEncodeRecordIgnorePolicyPreservesMappableASCII(t *testing.T) {
	cfg := Config{Encoding: charmap.ISO8859_1, UnicodeErrorPolicy: PolicyIgnore}
	got, err := encodeRecord(cfg, []byte("plain ascii text"))
	if err != nil {
		t.Fatalf("encodeRecord: %v", err)
	}
	if string(got) != "plain ascii text" {
		t.Fatalf("got %q, want %q", got, "plain ascii text")
	}
}
