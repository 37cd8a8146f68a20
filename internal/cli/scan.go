package cli

import (
	"crypto/sha256"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/avasilyev/shelfserve/internal/config"
	"github.com/avasilyev/shelfserve/internal/database"
	"github.com/avasilyev/shelfserve/internal/entities"
	"github.com/avasilyev/shelfserve/internal/utils"
)

// ScanCommand walks the library directory and registers every recognized
// e-book in the database. Books already known by path keep their UUID;
// new books get a fresh one.
type ScanCommand struct {
	LibraryDir   string
	DatabasePath string
	Verbose      bool
}

func NewScanCommand() *ScanCommand {
	return &ScanCommand{}
}

func (cmd *ScanCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)

	fs.StringVar(&cmd.LibraryDir, "library", config.DefaultLibraryDir, "Library directory to scan for e-books")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s scan [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Scan the library directory and register e-books in the database.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s scan -library ./library\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s scan -library /srv/books -db ./shelfserve.db -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	return nil
}

type scanResult struct {
	Added   int
	Updated int
	Skipped int
	Failed  int
}

func (cmd *ScanCommand) Run() error {
	if _, err := os.Stat(cmd.LibraryDir); os.IsNotExist(err) {
		return fmt.Errorf("library directory does not exist: %s", cmd.LibraryDir)
	}

	absDir, err := filepath.Abs(cmd.LibraryDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	cmd.LibraryDir = absDir

	fmt.Printf("Scanning library directory: %s\n", cmd.LibraryDir)
	if cmd.Verbose {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	result := scanResult{}
	err = filepath.WalkDir(cmd.LibraryDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if utils.BookExtension(entry.Name()) == "" {
			return nil
		}

		if err := cmd.registerBook(db, path, &result); err != nil {
			log.Printf("Failed to register %s: %v", path, err)
			result.Failed++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("library walk failed: %w", err)
	}

	fmt.Printf("\n=== Scan Results ===\n")
	fmt.Printf("Books added: %d\n", result.Added)
	fmt.Printf("Books updated: %d\n", result.Updated)
	fmt.Printf("Books unchanged: %d\n", result.Skipped)
	if result.Failed > 0 {
		fmt.Printf("Books failed: %d\n", result.Failed)
	}

	return nil
}

// registerBook upserts a single book file into the database.
func (cmd *ScanCommand) registerBook(db *database.Database, path string, result *scanResult) error {
	relPath, err := filepath.Rel(cmd.LibraryDir, path)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	fileHash, err := hashFile(path)
	if err != nil {
		return err
	}

	existing, err := db.GetBookByPath(relPath)
	if err == nil && existing.FileHash == fileHash {
		result.Skipped++
		return nil
	}

	title, author := titleAndAuthor(relPath)

	book := &entities.Book{
		UUID:     uuid.NewString(),
		Title:    title,
		Author:   author,
		Path:     relPath,
		FileHash: fileHash,
		FileSize: info.Size(),
		Format:   utils.BookFormat(path),
		HasCover: hasAdjacentCover(path),
	}

	if existing != nil {
		// Keep the stable identity of an existing entry
		book.UUID = existing.UUID
	}

	if err := db.SaveBook(book); err != nil {
		return err
	}

	if existing != nil {
		result.Updated++
		if cmd.Verbose {
			log.Printf("Updated: %s", relPath)
		}
	} else {
		result.Added++
		if cmd.Verbose {
			log.Printf("Added: %s (%s)", relPath, book.UUID)
		}
	}

	return nil
}

// titleAndAuthor derives book metadata from a "Title - Author.ext" filename.
func titleAndAuthor(relPath string) (string, string) {
	name := filepath.Base(relPath)
	if ext := utils.BookExtension(name); ext != "" {
		name = name[:len(name)-len(ext)]
	}

	if idx := strings.LastIndex(name, " - "); idx > 0 {
		return strings.TrimSpace(name[:idx]), strings.TrimSpace(name[idx+3:])
	}

	return strings.TrimSpace(name), ""
}

// hasAdjacentCover reports whether a cover.jpg sits next to the book file.
func hasAdjacentCover(bookPath string) bool {
	coverPath := filepath.Join(filepath.Dir(bookPath), "cover.jpg")
	info, err := os.Stat(coverPath)
	return err == nil && !info.IsDir()
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
