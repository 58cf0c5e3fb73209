package walk

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"

	"github.com/smileynet/branchwalk/internal/history"
	"github.com/smileynet/branchwalk/internal/result"
)

// plainWidth is the wrap width of the line-based walk.
const plainWidth = 72

// errQuit ends a plain walk at the user's request.
var errQuit = errors.New("quit")

// PlainDisplay walks the tree one prompt per line, for pipes and dumb
// terminals. It accepts an option number for the current question,
// "step.option" to revise an earlier answer, "r" to start over and "q" to
// quit.
type PlainDisplay struct {
	in      io.Reader
	w       io.Writer
	out     *termenv.Output
	store   *history.Store
	catalog *result.Catalog
	md      *result.Renderer
	log     *slog.Logger
}

func newPlainDisplay(opts DisplayOptions) *PlainDisplay {
	return &PlainDisplay{
		in:      opts.Reader,
		w:       opts.Writer,
		out:     termenv.NewOutput(opts.Writer),
		store:   opts.Store,
		catalog: opts.Catalog,
		md:      result.NewRenderer(result.StylePlain),
		log:     opts.Logger,
	}
}

// Run prompts until the input ends, the user quits, or ctx is cancelled.
func (d *PlainDisplay) Run(ctx context.Context) error {
	sc := bufio.NewScanner(d.in)
	d.show()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, _ = fmt.Fprint(d.w, "> ")
		if !sc.Scan() {
			_, _ = fmt.Fprintln(d.w)
			return sc.Err()
		}
		err := d.apply(strings.TrimSpace(sc.Text()))
		switch {
		case errors.Is(err, errQuit):
			return nil
		case err != nil:
			_, _ = fmt.Fprintf(d.w, "  ! %v\n", err)
			continue
		}
		d.show()
	}
}

// apply executes one line of input against the history.
func (d *PlainDisplay) apply(input string) error {
	switch strings.ToLower(input) {
	case "":
		return nil
	case "q", "quit":
		return errQuit
	case "r", "reset":
		d.store.Reset()
		d.log.Info("walk reset")
		return nil
	}

	step := d.store.Len() - 1
	opt := input
	if s, o, ok := strings.Cut(input, "."); ok {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("not a step number: %q", s)
		}
		step, opt = n-1, o
	}
	n, err := strconv.Atoi(opt)
	if err != nil {
		return fmt.Errorf("not an option number: %q", opt)
	}

	ch, err := d.store.Select(step, n-1)
	if err != nil {
		d.log.Error("select rejected", "step", step, "option", n-1, "error", err)
		return err
	}
	d.log.Info("option selected", "step", step, "option", n-1, "steps", ch.Len, "state", ch.State)
	return nil
}

// show prints the frontier question, or the result once the walk has ended.
func (d *PlainDisplay) show() {
	if d.store.State() == history.Ended {
		d.showResult()
		return
	}
	i := d.store.Len() - 1
	step := d.store.Last()
	question := wordwrap.String(fmt.Sprintf("%d. %s", i+1, step.Node.Question.Label), plainWidth)
	_, _ = fmt.Fprintf(d.w, "\n%s\n", d.out.String(question).Bold())
	for j, opt := range step.Node.Options {
		label := wordwrap.String(opt.Label, plainWidth-6)
		_, _ = fmt.Fprintf(d.w, "  %d) %s\n", j+1, strings.ReplaceAll(label, "\n", "\n     "))
	}
}

func (d *PlainDisplay) showResult() {
	names := d.store.Names()
	article := d.catalog.Resolve(names)

	_, _ = fmt.Fprintf(d.w, "\n%s\n", d.out.String("Your selection:").Bold())
	for _, name := range names {
		_, _ = fmt.Fprintf(d.w, "  • %s\n", name)
	}
	_, _ = fmt.Fprintf(d.w, "\n%s\n", d.out.String(article.Title).Bold().Underline())
	if body := d.md.Render(article, plainWidth); body != "" {
		_, _ = fmt.Fprintln(d.w, body)
	}
	_, _ = fmt.Fprintln(d.w, "\nr to start over, q to quit, or step.option to revise an answer")
}
