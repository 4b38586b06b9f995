package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/hnedelkov/bookshelf/internal/config"
	"github.com/hnedelkov/bookshelf/internal/storage"
)

// ExportCommand dumps the persisted library snapshot as JSON.
type ExportCommand struct {
	DatabasePath string
	OutputPath   string
	Pretty       bool
}

// NewExportCommand creates a new ExportCommand
func NewExportCommand() *ExportCommand {
	return &ExportCommand{}
}

// ParseFlags parses command line flags
func (cmd *ExportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the snapshot database")
	fs.StringVar(&cmd.OutputPath, "output", "", "Output file for the JSON snapshot (default: stdout)")
	fs.BoolVar(&cmd.Pretty, "pretty", false, "Indent the JSON output")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s export [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Export the stored library (shelves and books) as JSON.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s export -pretty\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s export -db ./bookshelf.db -output backup.json\n", os.Args[0])
	}

	return fs.Parse(args)
}

// Run executes the export command
func (cmd *ExportCommand) Run() error {
	store, err := storage.NewStore(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer store.Close()

	snap, ok, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	if !ok {
		return fmt.Errorf("no snapshot found in %s", cmd.DatabasePath)
	}

	var data []byte
	if cmd.Pretty {
		data, err = json.MarshalIndent(snap, "", "  ")
	} else {
		data, err = json.Marshal(snap)
	}
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	if cmd.OutputPath == "" {
		fmt.Println(string(data))
		return nil
	}

	if err := os.WriteFile(cmd.OutputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", cmd.OutputPath, err)
	}
	fmt.Printf("Exported %d shelves and %d books to %s\n", len(snap.Shelves), len(snap.Books), cmd.OutputPath)
	return nil
}
