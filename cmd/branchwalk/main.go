package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/smileynet/branchwalk"
	"github.com/smileynet/branchwalk/internal/config"
	"github.com/smileynet/branchwalk/internal/history"
	"github.com/smileynet/branchwalk/internal/logging"
	"github.com/smileynet/branchwalk/internal/result"
	"github.com/smileynet/branchwalk/internal/tree"
	"github.com/smileynet/branchwalk/internal/walk"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes.
const (
	exitSuccess = 0
	exitSetup   = 1 // Bad flags, config, or terminal failure.
	exitContent = 2 // Invalid tree, or articles that do not cover it.
)

// projectDir holds project-local config and content overrides.
const projectDir = ".branchwalk"

// errCoverage is returned by check when articles and leaf paths disagree.
var errCoverage = errors.New("articles do not match the tree's leaf paths")

// CLI is the top-level command structure for branchwalk.
type CLI struct {
	Version kong.VersionFlag `help:"Show version." short:"V"`
	Walk    WalkCmd          `cmd:"" default:"withargs" help:"Walk the decision tree (default)."`
	Check   CheckCmd         `cmd:"" help:"Validate a tree and its articles."`
	Names   NamesCmd         `cmd:"" help:"Print every root-to-leaf name path."`
}

// ContentFlags select the tree and article files. Empty values fall back to
// config, then to .branchwalk/, then to the embedded defaults.
type ContentFlags struct {
	Tree     string `help:"Decision tree YAML file." type:"path"`
	Articles string `help:"Articles YAML file." type:"path"`
}

// WalkCmd runs an interactive walk.
type WalkCmd struct {
	ContentFlags `embed:""`

	NoTUI    bool   `help:"Force the line-based walk even if stdout is a TTY." default:"false"`
	Watch    bool   `help:"Restart the walk when content files change." default:"false"`
	LogFile  string `help:"Append logs to this file." type:"path"`
	LogLevel string `help:"Log level (debug, info, warn, error)."`
}

// CheckCmd validates content and reports article coverage.
type CheckCmd struct {
	ContentFlags `embed:""`
}

// NamesCmd prints the article keys a tree can produce.
type NamesCmd struct {
	ContentFlags `embed:""`
}

// loadConfig loads layered config from user and project paths with env overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadLayered(
		os.ExpandEnv("$HOME/.config/branchwalk/config.yaml"),
		filepath.Join(projectDir, "config.yaml"),
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// apply overrides configured content paths with non-empty flags.
func (f ContentFlags) apply(cfg *config.Config) {
	if f.Tree != "" {
		cfg.Content.Tree = f.Tree
	}
	if f.Articles != "" {
		cfg.Content.Articles = f.Articles
	}
}

// loadContent reads the tree and articles named in c, falling back to files
// in .branchwalk/ and then the embedded defaults.
func loadContent(c config.Content) (*tree.Node, *result.Catalog, error) {
	fallback := branchwalk.OverlayFS(projectDir, branchwalk.Content)

	var root *tree.Node
	var err error
	if c.Tree != "" {
		root, err = tree.LoadFile(c.Tree)
	} else {
		root, err = tree.LoadFS(fallback, branchwalk.TreeFile)
	}
	if err != nil {
		return nil, nil, err
	}

	var catalog *result.Catalog
	if c.Articles != "" {
		catalog, err = result.LoadFS(os.DirFS(filepath.Dir(c.Articles)), filepath.Base(c.Articles))
	} else {
		catalog, err = result.LoadFS(fallback, branchwalk.ArticlesFile)
	}
	if err != nil {
		return nil, nil, err
	}
	return root, catalog, nil
}

// contentFiles lists the on-disk files content is read from. Embedded
// defaults have no file and are not listed.
func contentFiles(c config.Content) []string {
	var files []string
	for _, f := range []struct{ flag, local string }{
		{c.Tree, filepath.Join(projectDir, branchwalk.TreeFile)},
		{c.Articles, filepath.Join(projectDir, branchwalk.ArticlesFile)},
	} {
		switch {
		case f.flag != "":
			files = append(files, f.flag)
		case fileExists(f.local):
			files = append(files, f.local)
		}
	}
	return files
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Run executes the walk command.
func (w *WalkCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("walk: %w", err)
	}

	// Apply CLI flag overrides.
	w.ContentFlags.apply(cfg)
	if w.LogFile != "" {
		cfg.Log.File = w.LogFile
	}
	if w.LogLevel != "" {
		cfg.Log.Level = w.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("walk: %w", err)
	}

	root, catalog, err := loadContent(cfg.Content)
	if err != nil {
		return fmt.Errorf("walk: %w", err)
	}

	log, closer, err := logging.Open(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("walk: %w", err)
	}
	defer func() { _ = closer.Close() }()
	log.Info("walk starting", "version", version, "nodes", tree.Measure(root).Nodes, "articles", catalog.Len())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := walk.DisplayOptions{
		Writer:     os.Stdout,
		Reader:     os.Stdin,
		ForcePlain: w.NoTUI,
		Store:      history.New(root),
		Catalog:    catalog,
		Config:     *cfg,
		Logger:     log,
	}
	if w.Watch {
		content := cfg.Content
		opts.Watch = contentFiles(content)
		opts.Reload = func() (*tree.Node, *result.Catalog, error) {
			return loadContent(content)
		}
		if len(opts.Watch) == 0 {
			log.Warn("--watch has nothing to watch: content is embedded")
		}
	}
	return w.run(ctx, walk.NewDisplay(opts))
}

// run drives the display, enabling testable wiring. An interrupt is a
// normal way to leave a walk.
func (w *WalkCmd) run(ctx context.Context, display walk.Display) error {
	err := display.Run(ctx)
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return fmt.Errorf("walk: %w", err)
}

// Run executes the check command.
func (c *CheckCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}
	c.ContentFlags.apply(cfg)

	root, catalog, err := loadContent(cfg.Content)
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}
	return c.run(os.Stdout, root, catalog)
}

// run prints tree statistics and article coverage.
func (c *CheckCmd) run(w io.Writer, root *tree.Node, catalog *result.Catalog) error {
	stats := tree.Measure(root)
	paths := tree.Paths(root)
	_, _ = fmt.Fprintf(w, "nodes: %d  leaves: %d  depth: %d  paths: %d  articles: %d\n",
		stats.Nodes, stats.Leaves, stats.Depth, len(paths), catalog.Len())

	cov := catalog.Check(root)
	for _, k := range cov.Missing {
		_, _ = fmt.Fprintf(w, "missing article: %s\n", k)
	}
	for _, k := range cov.Orphans {
		_, _ = fmt.Fprintf(w, "unreachable article: %s\n", k)
	}
	if len(cov.Missing) > 0 || len(cov.Orphans) > 0 {
		return fmt.Errorf("check: %d missing, %d unreachable: %w",
			len(cov.Missing), len(cov.Orphans), errCoverage)
	}
	_, _ = fmt.Fprintln(w, "ok")
	return nil
}

// Run executes the names command.
func (n *NamesCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("names: %w", err)
	}
	n.ContentFlags.apply(cfg)

	root, _, err := loadContent(cfg.Content)
	if err != nil {
		return fmt.Errorf("names: %w", err)
	}
	n.run(os.Stdout, root)
	return nil
}

// run prints one article key per leaf path.
func (n *NamesCmd) run(w io.Writer, root *tree.Node) {
	for _, names := range tree.Paths(root) {
		_, _ = fmt.Fprintln(w, result.Key(names))
	}
}

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	if errors.Is(err, tree.ErrInvalidTree) || errors.Is(err, errCoverage) {
		return exitContent
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("branchwalk"),
		kong.Description("Walk a decision tree one question at a time."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
