package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"versegraph/application/queries"
	"versegraph/domain/core/entities"
	"versegraph/domain/events"
	"versegraph/infrastructure/config"
	"versegraph/infrastructure/di"
	pkgerrors "versegraph/pkg/errors"
	"versegraph/pkg/utils"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type noteWriter interface {
	SaveNote(ctx context.Context, note *entities.Note) error
}

// openContainer wires the application against the SQLite file named by --db
func openContainer(cmd *cobra.Command) (*di.Container, func(), error) {
	db, _ := cmd.Flags().GetString("db")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	cfg.StorageDriver = config.StorageSQLite
	cfg.SQLitePath = db
	cfg.EnableMetrics = false
	cfg.EnableTracing = false
	cfg.LogLevel = "warn"
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return di.InitializeContainer(cmd.Context(), cfg)
}

func addStoreFlags(cmd *cobra.Command, withUser bool) {
	cmd.Flags().String("db", "versegraph.db", "SQLite database file")
	if withUser {
		cmd.Flags().String("user", "", "Owner of the notes")
		_ = cmd.MarkFlagRequired("user")
	}
}

func readNotes(path string) ([]*entities.Note, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read notes: %w", err)
	}

	var notes []*entities.Note
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &notes)
	default:
		err = json.Unmarshal(data, &notes)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	now := time.Now().UTC()
	for i, n := range notes {
		if n == nil {
			return nil, fmt.Errorf("note %d is empty", i)
		}
		if err := utils.ValidateStruct(n); err != nil {
			return nil, fmt.Errorf("note %d: %w", i, err)
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		if n.UpdatedAt.IsZero() {
			n.UpdatedAt = n.CreatedAt
		}
	}
	return notes, nil
}

func newImportNotesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-notes <notes.json>",
		Short: "Import notes into the local database",
		Long: `Import a JSON or YAML array of notes. Each saved note is announced on the
local event bus, which generates its graph unless --no-generate is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, err := readNotes(args[0])
			if err != nil {
				return err
			}

			c, cleanup, err := openContainer(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			writer, ok := c.Storage.Notes.(noteWriter)
			if !ok {
				return fmt.Errorf("storage driver %s does not accept notes", c.Config.StorageDriver)
			}
			noGenerate, _ := cmd.Flags().GetBool("no-generate")

			ctx := cmd.Context()
			for _, n := range notes {
				if err := writer.SaveNote(ctx, n); err != nil {
					return fmt.Errorf("failed to save note %s: %w", n.ID, err)
				}
				if noGenerate {
					continue
				}
				if err := c.Publisher.Publish(ctx, events.NewNoteSaved(n.ID, n.UserID, n.UpdatedAt)); err != nil {
					return fmt.Errorf("failed to announce note %s: %w", n.ID, err)
				}
			}

			printf(cmd, good, "Imported %d notes", len(notes))
			printf(cmd, faint, " into %s\n", c.Config.SQLitePath)
			return nil
		},
	}
	addStoreFlags(cmd, false)
	cmd.Flags().Bool("no-generate", false, "Save notes without generating their graph")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate graph nodes and edges from notes",
		Long: `Generate the graph for one note (--note) or for every active note of the user.

Generation is idempotent: running it twice creates nothing new.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, _ := cmd.Flags().GetString("user")
			noteID, _ := cmd.Flags().GetString("note")

			c, cleanup, err := openContainer(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			if noteID != "" {
				result, err := c.Generator.GenerateForNoteID(ctx, userID, noteID)
				if err != nil {
					if pkgerrors.IsNotFound(err) {
						return fmt.Errorf("note %s not found for user %s", noteID, userID)
					}
					return err
				}
				if jsonOutput(cmd) {
					return encodeJSON(cmd, map[string]int{
						"nodes":         len(result.Nodes),
						"nodes_created": result.NodesCreated,
						"edges_created": len(result.Edges),
						"failures":      len(result.Failures),
					})
				}
				printf(cmd, good, "Note %s: %d nodes (%d new), %d new edges\n",
					noteID, len(result.Nodes), result.NodesCreated, len(result.Edges))
				for _, f := range result.Failures {
					printf(cmd, warn, "  failed %s %s: %v\n", f.Step, f.Key, f.Err)
				}
				return nil
			}

			out, err := c.QueryBus.Ask(ctx, queries.GenerateGraphQuery{UserID: userID})
			if err != nil {
				return err
			}
			generated := out.(*queries.GeneratedGraphView)
			if jsonOutput(cmd) {
				return encodeJSON(cmd, generated)
			}

			s := generated.Summary
			printf(cmd, heading, "Generated graph for %s\n", userID)
			printf(cmd, nil, "  notes %d  passages %d  books %d  themes %d  people %d  places %d\n",
				s.Notes, s.Passages, s.Books, s.Themes, s.People, s.Places)
			printf(cmd, nil, "  new connections %d\n", s.Connections)
			if generated.Failures > 0 {
				printf(cmd, warn, "  %d steps failed, see the log\n", generated.Failures)
			}
			return nil
		},
	}
	addStoreFlags(cmd, true)
	cmd.Flags().String("note", "", "Only generate for this note")
	return cmd
}

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the user's laid-out graph as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, _ := cmd.Flags().GetString("user")

			c, cleanup, err := openContainer(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			out, err := c.QueryBus.Ask(cmd.Context(), queries.GetGraphViewQuery{UserID: userID})
			if err != nil {
				return err
			}
			return encodeJSON(cmd, out)
		},
	}
	addStoreFlags(cmd, true)
	return cmd
}

func encodeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
