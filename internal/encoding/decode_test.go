package encoding

import (
	"errors"
	"testing"
)

// TestDecode_PlainUTF8 verifies plain UTF-8 passes through unchanged.
func TestDecode_PlainUTF8(t *testing.T) {
	t.Parallel()

	got, err := Decode([]byte("héllo <b>world</b>"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "héllo <b>world</b>" {
		t.Fatalf("unexpected output: %q", got)
	}
}

// TestDecode_StripsBOM verifies a leading UTF-8 BOM is removed.
//
// Edge cases covered:
//   - BOM followed by content
//   - BOM-only input decodes to ""
//   - a BOM appearing mid-stream is NOT stripped (it is a legitimate U+FEFF)
func TestDecode_StripsBOM(t *testing.T) {
	t.Parallel()

	got, err := Decode([]byte{0xEF, 0xBB, 0xBF, 'h', 'i'})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "hi" {
		t.Fatalf("expected %q, got %q", "hi", got)
	}

	got, err = Decode([]byte{0xEF, 0xBB, 0xBF})
	if err != nil {
		t.Fatalf("Decode BOM-only: %v", err)
	}
	if got != "" {
		t.Fatalf("BOM-only input: expected empty string, got %q", got)
	}

	got, err = Decode([]byte{'h', 'i', 0xEF, 0xBB, 0xBF})
	if err != nil {
		t.Fatalf("Decode mid-stream BOM: %v", err)
	}
	if got != "hi\uFEFF" {
		t.Fatalf("mid-stream BOM: expected %q, got %q", "hi\uFEFF", got)
	}
}

// TestDecode_InvalidUTF8 verifies invalid byte sequences fail with an
// *EncodingError carrying the byte offset of the bad sequence.
func TestDecode_InvalidUTF8(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte{'o', 'k', 0xFF, 'x'})
	if err == nil {
		t.Fatalf("expected error for invalid UTF-8")
	}

	var encErr *EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected *EncodingError, got %T: %v", err, err)
	}
	if encErr.Offset != 2 {
		t.Fatalf("expected offset 2, got %d", encErr.Offset)
	}
}

// TestDecode_Empty verifies empty input decodes to "".
func TestDecode_Empty(t *testing.T) {
	t.Parallel()

	got, err := Decode(nil)
	if err != nil {
		t.Fatalf("Decode(nil): %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
