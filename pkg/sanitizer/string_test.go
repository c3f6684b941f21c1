package sanitizer

import (
	"reflect"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim spaces",
			input: "  Jane Wanjiru  ",
			want:  "Jane Wanjiru",
		},
		{
			name:  "multiple spaces between words",
			input: "Jane    Wanjiru",
			want:  "Jane Wanjiru",
		},
		{
			name:  "tabs and newlines",
			input: "Jane\t\nWanjiru",
			want:  "Jane Wanjiru",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   \t\n  ",
			want:  "",
		},
		{
			name:  "preserve special characters",
			input: " Zoë O'Neil-Ochieng ",
			want:  "Zoë O'Neil-Ochieng",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeName(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRemoveSpaces(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0712 345 678", "0712345678"},
		{" +254\t712345678 ", "+254712345678"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := RemoveSpaces(tt.input); got != tt.want {
			t.Errorf("RemoveSpaces(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeUpper(t *testing.T) {
	if got := NormalizeUpper("  kcb   123x "); got != "KCB 123X" {
		t.Errorf("NormalizeUpper() = %q, want %q", got, "KCB 123X")
	}
}

func TestNormalizeURLs(t *testing.T) {
	got := NormalizeURLs([]string{" https://a/1 ", "", "https://a/1", "https://a/2"})
	want := []string{"https://a/1", "https://a/2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeURLs() = %v, want %v", got, want)
	}

	if got := NormalizeURLs(nil); len(got) != 0 {
		t.Errorf("NormalizeURLs(nil) = %v, want empty", got)
	}
}
