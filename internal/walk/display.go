package walk

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/smileynet/branchwalk/internal/config"
	"github.com/smileynet/branchwalk/internal/history"
	"github.com/smileynet/branchwalk/internal/result"
	"github.com/smileynet/branchwalk/internal/tree"
	"github.com/smileynet/branchwalk/internal/watch"
)

// Display runs a walk to completion or until the user quits.
type Display interface {
	Run(ctx context.Context) error
}

// DisplayOptions configures display creation.
type DisplayOptions struct {
	Writer     io.Writer // Output destination (default: os.Stdout).
	Reader     io.Reader // Input source (default: os.Stdin).
	ForcePlain bool      // Force the line-based walk even on a TTY.
	Store      *history.Store
	Catalog    *result.Catalog
	Config     config.Config
	Logger     *slog.Logger

	// Watch lists content files whose changes trigger Reload. The TUI
	// restarts the walk on the reloaded content; the plain walk ignores it.
	Watch  []string
	Reload func() (*tree.Node, *result.Catalog, error)
}

// NewDisplay returns the interactive TUI when stdout is a TTY, or a
// line-based walk otherwise. ForcePlain overrides TTY detection.
func NewDisplay(opts DisplayOptions) Display {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	if opts.Reader == nil {
		opts.Reader = os.Stdin
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	if opts.ForcePlain || !isTTY(opts.Writer) {
		return newPlainDisplay(opts)
	}
	return &TUIDisplay{opts: opts}
}

// isTTY reports whether w is connected to a terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// TUIDisplay runs the walk as a full-screen Bubble Tea program.
// Falls back to PlainDisplay if the program fails to start.
type TUIDisplay struct {
	opts DisplayOptions
}

// Run starts the Bubble Tea program and blocks until it exits.
func (d *TUIDisplay) Run(ctx context.Context) error {
	model := NewModel(d.opts.Store, d.opts.Catalog, d.opts.Config,
		WithLogger(d.opts.Logger),
		WithMarkdownStyle(markdownStyle(d.opts.Writer)),
	)
	p := tea.NewProgram(model,
		tea.WithOutput(d.opts.Writer),
		tea.WithInput(d.opts.Reader),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if len(d.opts.Watch) > 0 && d.opts.Reload != nil {
		w, err := watch.New(d.opts.Watch, watch.WithLogger(d.opts.Logger))
		if err != nil {
			d.opts.Logger.Warn("content watch disabled", "error", err)
		} else {
			defer func() { _ = w.Close() }()
			go d.forwardReloads(w.Changes(), p)
		}
	}

	_, err := p.Run()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil:
		return ctx.Err()
	}

	d.opts.Logger.Warn("tui failed, falling back to plain walk", "error", err)
	return newPlainDisplay(d.opts).Run(ctx)
}

// markdownStyle picks the article style from the terminal background. It
// must run before the program starts: the query reads the terminal's reply
// from the same input the program reads keys from.
func markdownStyle(w io.Writer) string {
	if lipgloss.NewRenderer(w).HasDarkBackground() {
		return result.StyleDark
	}
	return result.StyleLight
}

// forwardReloads reloads content on every change and hands it to the
// program. Content that fails to load is logged and the walk carries on.
func (d *TUIDisplay) forwardReloads(changes <-chan struct{}, p *tea.Program) {
	for range changes {
		root, catalog, err := d.opts.Reload()
		if err != nil {
			d.opts.Logger.Warn("content reload failed", "error", err)
			continue
		}
		p.Send(reloadMsg{root: root, catalog: catalog})
	}
}
