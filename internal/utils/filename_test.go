package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "removes invalid characters",
			input:    `file<>:"/\|?*name`,
			expected: "filename",
		},
		{
			name:     "replaces newlines and tabs with spaces",
			input:    "file\nname\twith\rspaces",
			expected: "file name with spaces",
		},
		{
			name:     "collapses multiple spaces",
			input:    "file   name  with    spaces",
			expected: "file name with spaces",
		},
		{
			name:     "removes hashtags",
			input:    "#hashtag #title",
			expected: "hashtag title",
		},
		{
			name:     "replaces square brackets",
			input:    "title [subtitle]",
			expected: "title (subtitle)",
		},
		{
			name:     "trims whitespace",
			input:    "  filename  ",
			expected: "filename",
		},
		{
			name:     "returns Untitled for empty",
			input:    "",
			expected: "Untitled",
		},
		{
			name:     "returns Untitled for only special chars",
			input:    "<>:?*",
			expected: "Untitled",
		},
		{
			name:     "truncates long names",
			input:    strings.Repeat("a", 250),
			expected: strings.Repeat("a", 200),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestBookExtension(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{"gopl.epub", ".epub"},
		{"GOPL.EPUB", ".epub"},
		{"war-and-peace.fb2.zip", ".fb2.zip"},
		{"notes.fb2", ".fb2"},
		{"manual.pdf", ".pdf"},
		{"cover.jpg", ""},
		{"archive.zip", ""},
		{"noextension", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expected, BookExtension(tt.filename))
		})
	}
}

func TestBookFormat(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{"gopl.epub", "epub"},
		{"war-and-peace.fb2.zip", "fb2"},
		{"book.mobi", "mobi"},
		{"cover.jpg", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expected, BookFormat(tt.filename))
		})
	}
}

func TestExtractAuthorFromFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		title    string
		expected string
	}{
		{
			name:     "title dash author",
			filename: "The Go Programming Language - Alan Donovan.epub",
			title:    "The Go Programming Language",
			expected: "Alan Donovan",
		},
		{
			name:     "compound extension",
			filename: "War and Peace - Leo Tolstoy.fb2.zip",
			title:    "War and Peace",
			expected: "Leo Tolstoy",
		},
		{
			name:     "title not in filename",
			filename: "random-file.epub",
			title:    "Some Other Book",
			expected: "",
		},
		{
			name:     "no author suffix",
			filename: "Standalone Title.epub",
			title:    "Standalone Title",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractAuthorFromFilename(tt.filename, tt.title))
		})
	}
}
