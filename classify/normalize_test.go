package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"accents", "café", "cafe"},
		{"accents and case", "Café São Paulo", "cafe sao paulo"},
		{"punctuation", "Hello, World! 2024_v1", "hello world 2024_v1"},
		{"domain", "web.whatsapp.com", "webwhatsappcom"},
		{"url", "https://github.com/org/repo", "httpsgithubcomorgrepo"},
		{"symbols", "Disney+ — Séries", "disney  series"},
		{"cedilla and tilde", "AÇÃO Ñandú", "acao nandu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeAccentFolding(t *testing.T) {
	assert.Equal(t, Normalize("cafe sao paulo"), Normalize("Café São Paulo"))
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"Café São Paulo",
		"WhatsApp - João",
		"https://web.whatsapp.com/?lang=pt_BR",
		"Relatório Anual.PDF — Adobe Acrobat",
		"Ünïcödé ﬁ ligature ² ½",
		"\t tabs\nand newlines ",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalizeProcess(t *testing.T) {
	assert.Equal(t, "winwordexe", NormalizeProcess("WINWORD.EXE"))
	assert.Equal(t, "notepad++exe", NormalizeProcess("Notepad++.exe"))
	assert.Equal(t, "sublime_textexe", NormalizeProcess("sublime_text.exe"))
	assert.Equal(t, "caféexe", NormalizeProcess("Café.exe"))
	assert.Equal(t, "", NormalizeProcess(""))
}
