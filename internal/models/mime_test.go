package models

import "testing"

func TestParseMimeTypeAccepted(t *testing.T) {
	for _, val := range []string{
		"image/jpeg",
		"video/mp4",
		"application/octet-stream",
		"application/json+test;charset=UTF-8",
		`application/json+test; charset="UTF-8"`,
		"text/html",
		"text/x-fasta",
		"text/plain;charset=UTF-8",
		`text/plain; charset="UTF-8"`,
	} {
		if _, err := ParseMimeType(val); err != nil {
			t.Errorf("expected %q to be ingestable: %v", val, err)
		}
	}
}

func TestParseMimeTypeRejected(t *testing.T) {
	for _, val := range []string{
		"",
		"image",
		"multipart/form-data",
		"text/*",
		"image/;;;;;;;;",
		"image/jpeg;",
		`text/plain charset="UTF-8"`,
		"invalid/octet-stream",
	} {
		if _, err := ParseMimeType(val); err == nil {
			t.Errorf("expected %q to be rejected", val)
		}
	}
}

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"report.pdf":            "report.pdf",
		"../../etc/passwd":      "passwd",
		"..\\..\\boot.ini":      "boot.ini",
		"my file (1).txt":       "my_file_1_.txt",
		".hidden":               "hidden",
		"":                      "object",
		"///":                   "object",
		"variants_2023.vcf.gz":  "variants_2023.vcf.gz",
		"weird\x00name\nhere":   "weird_name_here",
	}
	for in, want := range cases {
		if got := SanitizeName(in); got != want {
			t.Errorf("SanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
}
