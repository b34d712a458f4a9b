package service

import (
	"errors"
	"testing"
)

func TestCanonicalizeStorageForm(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{name: "already canonical", raw: "ABCDEF-1234", want: "ABCDEF-1234"},
		{name: "no hyphen", raw: "ABCDEF1234", want: "ABCDEF-1234"},
		{name: "lowercase", raw: "abcdef-1234", want: "ABCDEF-1234"},
		{name: "surrounding whitespace", raw: "  ABCDEF1234\n", want: "ABCDEF-1234"},
		{name: "stray punctuation", raw: "ABC.DEF/12:34!", want: "ABCDEF-1234"},
		{name: "extra trailing chars", raw: "ABCDEF-123499", want: "ABCDEF-1234"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Canonicalize(tc.raw)
			if err != nil {
				t.Fatalf("Canonicalize(%q) error: %v", tc.raw, err)
			}
			if got.StorageForm != tc.want {
				t.Fatalf("StorageForm = %q, want %q", got.StorageForm, tc.want)
			}
		})
	}
}

func TestCanonicalizeRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"ABCDE-1234",   // 字母不足
		"ABCDEFG-123",  // 数字不足
		"1234567890",   // 无字母
		"ABCDEF-12A4",  // 数字段混入字母
		"кодmember",    // 非拉丁字母
	}
	for _, raw := range cases {
		if _, err := Canonicalize(raw); !errors.Is(err, ErrCodeInvalidFormat) {
			t.Fatalf("Canonicalize(%q) error = %v, want ErrCodeInvalidFormat", raw, err)
		}
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	first, err := Canonicalize("abcdef1234")
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	second, err := Canonicalize(first.StorageForm)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if second.StorageForm != first.StorageForm {
		t.Fatalf("not idempotent: %q vs %q", second.StorageForm, first.StorageForm)
	}
}

func TestCanonicalizeMatchForms(t *testing.T) {
	got, err := Canonicalize(" abcDEF-1234 ")
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	want := map[string]bool{
		"ABCDEF-1234": true,
		"ABCDEF1234":  true,
	}
	seen := make(map[string]bool, len(got.MatchForms))
	for _, form := range got.MatchForms {
		if seen[form] {
			t.Fatalf("duplicate match form %q", form)
		}
		seen[form] = true
	}
	for form := range want {
		if !seen[form] {
			t.Fatalf("missing match form %q in %v", form, got.MatchForms)
		}
	}
}
