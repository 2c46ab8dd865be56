package cmd

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/nfrund/binstore/internal/filestore"
	"github.com/nfrund/binstore/internal/logging"
	"github.com/nfrund/binstore/internal/storage"
	"github.com/spf13/cobra"
)

// startupSweepTTL is the age after which staging files are considered
// abandoned when a command opens the store.
const startupSweepTTL = 24 * time.Hour

// app carries the state shared by all subcommands.
type app struct {
	root     string
	logLevel string

	store   *storage.AferoStore
	service filestore.Service
}

// open creates the store under a.root and runs one sweep pass.
func (a *app) open(ctx context.Context) error {
	store, err := storage.NewFilesystemStore(a.root)
	if err != nil {
		return err
	}
	if _, err := store.Sweep(ctx, startupSweepTTL); err != nil {
		logging.FromContext(ctx).Warn("startup sweep failed", "error", err)
	}
	a.store = store
	a.service = filestore.NewService(store, nil)
	return nil
}

// NewRootCmd builds the binstore-cli command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "binstore-cli",
		Short: "Binstore CLI tool",
		Long: `binstore-cli operates directly on a binstore storage root.

It manages buckets and assets without going through the HTTP server,
which makes it useful for seeding data, backups and inspecting a root
on disk.

Use "binstore-cli [command] --help" for more information about a specific command.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewWithWriter(cmd.ErrOrStderr(), "text", a.logLevel)
			ctx := logging.WithLogger(cmd.Context(), logger)
			cmd.SetContext(ctx)
			if cmd.Annotations[annotationNoStore] == "true" {
				return nil
			}
			return a.open(ctx)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.root, "root", defaultRoot(), "Storage root directory (defaults to $STORAGE_ROOT or ./data)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newBucketsCmd(a),
		newAssetsCmd(a),
		newMkbucketCmd(a),
		newPutCmd(a),
		newGetCmd(a),
		newWatchCmd(a),
		newSweepCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// annotationNoStore marks commands that must not open the store.
const annotationNoStore = "binstore.nostore"

func defaultRoot() string {
	// A missing .env file is fine.
	_ = godotenv.Load()
	if root := os.Getenv("STORAGE_ROOT"); root != "" {
		return root
	}
	return "./data"
}

// Execute executes the root command
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
