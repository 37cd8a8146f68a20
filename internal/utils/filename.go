package utils

import (
	"regexp"
	"strings"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	// Whitespace characters to normalize
	whitespaceChars = regexp.MustCompile(`[\r\n\t]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
)

// SanitizeFilename sanitizes a book title for use as a filename.
// It removes characters that are invalid on common filesystems and
// normalizes whitespace.
func SanitizeFilename(filename string) string {
	// Remove invalid filename characters
	filename = invalidFilenameChars.ReplaceAllString(filename, "")

	// Replace newlines/tabs with spaces
	filename = whitespaceChars.ReplaceAllString(filename, " ")

	// Collapse multiple spaces
	filename = multipleSpaces.ReplaceAllString(filename, " ")

	// Trim whitespace
	filename = strings.TrimSpace(filename)

	filename = strings.ReplaceAll(filename, "#", "")
	filename = strings.ReplaceAll(filename, "[", "(")
	filename = strings.ReplaceAll(filename, "]", ")")

	// Limit length (most filesystems support 255, but leave room for extension)
	if len(filename) > 200 {
		filename = strings.TrimSpace(filename[:200])
	}

	// Ensure it's not empty
	if filename == "" {
		filename = "Untitled"
	}

	return filename
}

// KnownBookExtensions contains file extensions recognized by the library
// scanner. Compound extensions must come before their suffixes so that
// "book.fb2.zip" matches ".fb2.zip" rather than ".zip".
var KnownBookExtensions = []string{
	".fb2.zip",
	".fb2",
	".epub",
	".pdf",
	".txt",
	".docx",
	".doc",
	".mobi",
	".azw3",
	".azw",
	".djvu",
	".cbz",
	".cbr",
}

// BookExtension returns the matching book extension of a filename, or empty
// when the file is not a recognized e-book.
func BookExtension(filename string) string {
	lower := strings.ToLower(filename)
	for _, ext := range KnownBookExtensions {
		if strings.HasSuffix(lower, ext) {
			return ext
		}
	}
	return ""
}

// BookFormat returns the normalized format name for a book filename, e.g.
// "epub" for "gopl.epub" and "fb2" for "war-and-peace.fb2.zip".
func BookFormat(filename string) string {
	ext := BookExtension(filename)
	if ext == "" {
		return ""
	}
	format := strings.TrimPrefix(ext, ".")
	format = strings.TrimSuffix(format, ".zip")
	return strings.TrimSuffix(format, ".")
}

// ExtractAuthorFromFilename attempts to extract an author name from a
// "Title - Author.extension" style filename.
func ExtractAuthorFromFilename(filename, bookTitle string) string {
	// Find where the title appears in the filename
	titlePos := strings.LastIndex(filename, bookTitle)
	if titlePos == -1 {
		return ""
	}

	// Get everything after the title
	possibleAuthor := filename[titlePos+len(bookTitle):]

	// Remove known extensions
	for _, ext := range KnownBookExtensions {
		possibleAuthor = strings.TrimSuffix(possibleAuthor, ext)
	}

	// Clean up non-alphanumeric characters from beginning and end
	possibleAuthor = strings.TrimFunc(possibleAuthor, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
			r >= 0x80) // Keep unicode letters
	})

	// Also try common separators
	possibleAuthor = strings.TrimPrefix(possibleAuthor, " - ")
	possibleAuthor = strings.TrimPrefix(possibleAuthor, "-")
	possibleAuthor = strings.TrimSpace(possibleAuthor)

	return possibleAuthor
}
