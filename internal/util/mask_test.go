package util

import "testing"

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"":                  "",
		"ab":                "***",
		"alice@example.com": "a…@e….com",
		"  Bob@X.io ":       "b…@x.io",
	}
	for in, want := range cases {
		if got := MaskEmail(in); got != want {
			t.Fatalf("MaskEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMaskCardNumber(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"123":              "***",
		"4111111111111111": "************1111",
	}
	for in, want := range cases {
		if got := MaskCardNumber(in); got != want {
			t.Fatalf("MaskCardNumber(%q) = %q, want %q", in, got, want)
		}
	}
}
