package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/hnedelkov/bookshelf/internal/config"
	"github.com/hnedelkov/bookshelf/internal/library"
	"github.com/hnedelkov/bookshelf/internal/storage"
)

// ImportCommand loads a JSON snapshot into the database, replacing whatever
// is stored there.
type ImportCommand struct {
	DatabasePath string
	InputPath    string
}

// NewImportCommand creates a new ImportCommand
func NewImportCommand() *ImportCommand {
	return &ImportCommand{}
}

// ParseFlags parses command line flags
func (cmd *ImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the snapshot database")
	fs.StringVar(&cmd.InputPath, "file", "", "JSON snapshot file to import (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import a JSON snapshot (as produced by 'export') into the database.\n")
		fmt.Fprintf(os.Stderr, "The stored library is replaced, not merged.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s import -file backup.json\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.InputPath == "" {
		fs.Usage()
		return fmt.Errorf("required flag -file not provided")
	}

	return nil
}

// Run executes the import command
func (cmd *ImportCommand) Run() error {
	data, err := os.ReadFile(cmd.InputPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cmd.InputPath, err)
	}

	var snap library.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to parse snapshot: %w", err)
	}

	// Round-trip through the library so the imported state is normalized
	// (default shelf recreated, nil book lists replaced).
	lib := library.New()
	lib.Restore(snap)

	store, err := storage.NewStore(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer store.Close()

	if err := store.Save(lib.Snapshot()); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	shelves, books := lib.Stats()
	fmt.Printf("Imported %d shelves and %d books into %s\n", shelves, books, cmd.DatabasePath)
	return nil
}
