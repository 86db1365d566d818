package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"jsoutline/internal/cache"
	"jsoutline/internal/config"
	"jsoutline/internal/crawler"
	"jsoutline/internal/extractor"
	"jsoutline/internal/index"
	"jsoutline/internal/logger"
	"jsoutline/internal/metrics"
	"jsoutline/internal/pipeline"
	"jsoutline/internal/server"
	"jsoutline/internal/signature"
	"jsoutline/internal/storage"
	"jsoutline/internal/watch"
)

const version = "0.3.0"

var (
	rootCmd = &cobra.Command{
		Use:           "jsoutline",
		Short:         "Outline JavaScript sources: signatures and selection ranges of functions and objects",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	configPath string
	dbPath     string
	format     string
	findLimit  int
	baseRef    string
	force      bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "jsoutline.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the outline index database (SQLite), overrides storage.path")

	outlineCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json or yaml")
	findCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json or yaml")
	findCmd.Flags().IntVarP(&findLimit, "limit", "n", 20, "Maximum number of results")
	updateCmd.Flags().StringVar(&baseRef, "base", "HEAD", "Git ref to diff the working tree against")
	updateCmd.Flags().BoolVar(&force, "force", false, "Rebuild the whole index when git reports no changes")

	rootCmd.AddCommand(outlineCmd, scanCmd, findCmd, updateCmd, watchCmd, serveCmd, versionCmd)
}

// app holds what every command builds from the config.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	ext     *extractor.Extractor
}

func setup() (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}

	log := logger.New(cfg.Logging)
	slog.SetDefault(log)

	resolver := signature.New(signature.WithMaxPropertyLength(cfg.Outline.MaxPropertyLength))
	ext, err := extractor.NewExtractor("javascript", extractor.WithResolver(resolver))
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: log, metrics: metrics.New(), ext: ext}, nil
}

func (a *app) crawler() *crawler.Crawler {
	return crawler.NewCrawler(a.ext,
		crawler.WithPatterns(a.cfg.Project.Include, a.cfg.Project.Exclude),
		crawler.WithLogger(a.logger),
		crawler.WithMetrics(a.metrics),
	)
}

func (a *app) openStore() (*storage.SQLiteStore, error) {
	store, err := storage.NewSQLiteStore(a.cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index %s: %w", a.cfg.Storage.Path, err)
	}
	return store, nil
}

// root picks the project root from args, falling back to the config.
func (a *app) root(args []string) (string, error) {
	root := a.cfg.Project.Root
	if len(args) > 0 {
		root = args[0]
	}
	return filepath.Abs(root)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// serveMetrics runs the metrics endpoint alongside fn when an address is configured.
func (a *app) serveMetrics(ctx context.Context, fn func(context.Context) error) error {
	if a.cfg.Metrics.Addr == "" {
		return fn(ctx)
	}
	g, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	g.Go(func() error { return a.metrics.Serve(ctx, a.cfg.Metrics.Addr, a.logger) })
	g.Go(func() error {
		defer cancel()
		return fn(ctx)
	})
	return g.Wait()
}

var outlineCmd = &cobra.Command{
	Use:   "outline <file>",
	Short: "Print the outline of a JavaScript file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		h := server.NewHandler(".", a.ext, server.WithLogger(a.logger), server.WithMetrics(a.metrics))
		units, err := h.Outline(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return writeUnits(cmd.OutOrStdout(), format, units, true)
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan the project and refresh the outline index",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		root, err := a.root(args)
		if err != nil {
			return err
		}
		store, err := a.openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, cancel := signalContext()
		defer cancel()

		idx := index.NewIndexer(a.crawler(), store, a.logger)
		stats, err := idx.Build(ctx, root)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Scanned %s: %d indexed, %d unchanged, %d removed, %d failed. Database: %s\n",
			root, stats.Indexed, stats.Unchanged, stats.Removed, stats.Failed, a.cfg.Storage.Path)
		return nil
	},
}

var findCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Search indexed signatures",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		store, err := a.openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		units, err := store.FindByLabel(cmd.Context(), args[0], findLimit)
		if err != nil {
			return err
		}
		return writeUnits(cmd.OutOrStdout(), format, units, false)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update [path]",
	Short: "Re-index the files git reports as changed and list the outline entries they touch",
	Long: `Re-index the files git reports as changed against --base and list the outline
entries they touch. Renamed files drop their old path from the index, and
untracked files that .gitignore does not exclude are indexed as new.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		root, err := a.root(args)
		if err != nil {
			return err
		}
		store, err := a.openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, cancel := signalContext()
		defer cancel()

		sync := pipeline.NewIncrementalSync(root, index.NewIndexer(a.crawler(), store, a.logger), store, a.logger)
		sync.BaseRef = baseRef
		result, err := sync.Run(ctx, force)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(result.Changes) == 0 && !result.FullResync {
			fmt.Fprintln(out, "No changes detected.")
			return nil
		}
		stats := result.Stats
		fmt.Fprintf(out, "%d changed files: %d indexed, %d unchanged, %d removed, %d failed.\n",
			len(result.Changes), stats.Indexed, stats.Unchanged, stats.Removed, stats.Failed)
		if result.Impact == nil {
			return nil
		}
		fmt.Fprintf(out, "%d outline entries changed, %d enclosing entries affected.\n",
			len(result.Impact.DirectlyAffected), len(result.Impact.Enclosing))
		return writeUnits(out, "text", result.Impact.DirectlyAffected, false)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Index the project, then keep the index current as files change",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		root, err := a.root(args)
		if err != nil {
			return err
		}
		store, err := a.openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, cancel := signalContext()
		defer cancel()

		cr := a.crawler()
		idx := index.NewIndexer(cr, store, a.logger)
		if _, err := idx.Build(ctx, root); err != nil {
			return fmt.Errorf("initial scan failed: %w", err)
		}

		w, err := watch.NewWatcher(watch.Config{
			Root:     root,
			Debounce: a.cfg.Watch.Debounce,
			Match:    cr.Match,
			Logger:   a.logger,
		}, idx)
		if err != nil {
			return err
		}
		return a.serveMetrics(ctx, w.Run)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve outline tools over MCP stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		root, err := a.root(nil)
		if err != nil {
			return err
		}
		store, err := a.openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		oc, err := cache.New(a.cfg.Cache.MaxCostBytes, 0)
		if err != nil {
			return fmt.Errorf("failed to create outline cache: %w", err)
		}
		defer oc.Close()

		h := server.NewHandler(root, a.ext,
			server.WithCache(oc),
			server.WithStore(store),
			server.WithMetrics(a.metrics),
			server.WithLogger(a.logger),
		)
		s := server.New(h, version)

		ctx, cancel := signalContext()
		defer cancel()

		a.logger.Info("MCP server starting", "root", root, "version", version)
		return a.serveMetrics(ctx, func(ctx context.Context) error {
			return mcpserver.NewStdioServer(s).Listen(ctx, os.Stdin, os.Stdout)
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "jsoutline", version)
	},
}
