package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/patchbay"
	"github.com/aretw0/patchbay/internal/config"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/editor"
	"golang.org/x/term"
)

// EditOptions contains the configuration for the edit command.
type EditOptions struct {
	Config *config.Config
	In     io.Reader
	Out    io.Writer
}

// Edit connects to the backend and runs the line editor until the input
// ends, the user quits or the backend goes away.
func Edit(ctx context.Context, opts EditOptions) error {
	cfg := opts.Config
	out := &syncWriter{w: opts.Out}

	ed, err := patchbay.Connect(ctx, cfg.URL,
		patchbay.WithLogger(createLogger(cfg.Verbosity)),
		patchbay.WithNoticeTTL(cfg.NoticeTTL),
		patchbay.WithHooks(domain.Hooks{
			OnNotice: func(n domain.Notice) {
				fmt.Fprintf(out, "!! %s\n", n.Text)
			},
			OnDisconnected: func(err error) {
				if !isInterrupted(err) {
					printSystemMessage(out, "Disconnected: %v", err)
				}
			},
		}),
	)
	if err != nil {
		return err
	}
	defer ed.Close()

	printSystemMessage(out, "Connected to %s (%d kinds). Type 'help' for commands.", cfg.URL, len(ed.Palette()))
	repl := NewRepl(ed.Session, opts.In, out, isTerminal(opts.In))
	return handleExecutionError(repl.Run(ctx))
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// syncWriter serializes writes from the prompt and from session hooks.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// errQuit ends the loop without error.
var errQuit = errors.New("quit")

// Repl is a line-oriented front end for an editor session.
type Repl struct {
	s      *editor.Session
	in     *bufio.Scanner
	out    io.Writer
	prompt bool
}

// NewRepl reads commands from in and reports to out. prompt enables the "> " prompt.
func NewRepl(s *editor.Session, in io.Reader, out io.Writer, prompt bool) *Repl {
	return &Repl{s: s, in: bufio.NewScanner(in), out: out, prompt: prompt}
}

// Run executes commands until the input ends, quit is typed, ctx is done or
// the session is lost.
func (r *Repl) Run(ctx context.Context) error {
	for {
		if r.prompt {
			fmt.Fprint(r.out, "> ")
		}
		line, ok := r.readLine()
		if !ok {
			return r.in.Err()
		}
		err := r.Exec(line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(r.out, describe(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.s.Done():
			return r.s.Err()
		default:
		}
	}
}

func (r *Repl) readLine() (string, bool) {
	if !r.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(r.in.Text()), true
}

// Exec runs one command line.
func (r *Repl) Exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help", "?":
		fmt.Fprint(r.out, replHelp)
		return nil
	case "quit", "exit":
		return errQuit
	case "kinds":
		return r.kinds()
	case "ls":
		r.list()
		return nil
	case "status":
		r.status()
		return nil
	case "new":
		return r.create(args)
	case "connect", "disconnect":
		if len(args) != 3 {
			return usage("%s <from> <to> <input>", cmd)
		}
		if cmd == "connect" {
			return r.s.Connect(args[0], args[1], args[2])
		}
		return r.s.Disconnect(args[0], args[1], args[2])
	case "set":
		if len(args) != 2 {
			return usage("set <name> <value|note>")
		}
		return r.s.SetValueText(args[0], args[1])
	case "move":
		return r.move(args)
	case "label":
		if len(args) < 1 {
			return usage("label <name> [text]")
		}
		return r.s.SetLabel(args[0], strings.Join(args[1:], " "))
	case "rm":
		if len(args) == 0 {
			return usage("rm <name>...")
		}
		return r.s.DestroySelection(args)
	case "dup":
		return r.duplicate(args)
	case "load":
		if len(args) != 1 {
			return usage("load <patch>")
		}
		return r.s.Load(args[0], r.confirm)
	case "save":
		if len(args) != 1 {
			return usage("save <patch>")
		}
		if err := r.s.Save(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "saving %s\n", args[0])
		return nil
	default:
		return fmt.Errorf("unknown command %q, try 'help'", cmd)
	}
}

const replHelp = `commands:
  new <kind> [top left]            create an object
  connect <from> <to> <input>      feed an input
  disconnect <from> <to> <input>   clear an input
  set <name> <value|note>          set a value object (0.5, a4, c#5)
  move <name> <top> <left>         reposition an object
  label <name> [text]              label an object
  rm <name>...                     destroy objects
  dup <name>...                    duplicate objects and their internal wiring
  load <patch> | save <patch>      replace or store the patch
  ls | kinds | status | quit
`

func usage(format string, args ...any) error {
	return fmt.Errorf("usage: "+format, args...)
}

func (r *Repl) confirm() bool {
	fmt.Fprint(r.out, "Discard unsaved changes? [y/N] ")
	line, ok := r.readLine()
	return ok && strings.EqualFold(line, "y")
}

func (r *Repl) kinds() error {
	for _, k := range r.s.Palette() {
		inputs, err := r.s.Inputs(k)
		if err != nil {
			return err
		}
		if len(inputs) == 0 {
			fmt.Fprintf(r.out, "%s\n", k)
			continue
		}
		fmt.Fprintf(r.out, "%s (%s)\n", k, strings.Join(inputs, ", "))
	}
	return nil
}

func (r *Repl) create(args []string) error {
	if len(args) != 1 && len(args) != 3 {
		return usage("new <kind> [top left]")
	}
	var d domain.Display
	if len(args) == 3 {
		top, left, err := coords(args[1], args[2])
		if err != nil {
			return err
		}
		d = domain.Display{Top: top, Left: left}
	}
	o, err := r.s.Create(args[0], d)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "created %s\n", o.Name)
	return nil
}

func (r *Repl) move(args []string) error {
	if len(args) != 3 {
		return usage("move <name> <top> <left>")
	}
	top, left, err := coords(args[1], args[2])
	if err != nil {
		return err
	}
	return r.s.Move(args[0], top, left)
}

func coords(top, left string) (int, int, error) {
	t, err := strconv.Atoi(top)
	if err != nil {
		return 0, 0, fmt.Errorf("bad top %q: %w", top, err)
	}
	l, err := strconv.Atoi(left)
	if err != nil {
		return 0, 0, fmt.Errorf("bad left %q: %w", left, err)
	}
	return t, l, nil
}

func (r *Repl) duplicate(args []string) error {
	if len(args) == 0 {
		return usage("dup <name>...")
	}
	clones, err := r.s.Duplicate(args)
	if err != nil {
		return err
	}
	names := make([]string, len(clones))
	for i, c := range clones {
		names[i] = c.Name
	}
	fmt.Fprintf(r.out, "created %s\n", strings.Join(names, " "))
	return nil
}

func (r *Repl) list() {
	objects := r.s.Objects()
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name < objects[j].Name })
	for _, o := range objects {
		line := fmt.Sprintf("%-12s %-10s @%d,%d", o.Name, o.Kind, o.Display.Top, o.Display.Left)
		if o.Kind == "value" {
			line += fmt.Sprintf(" = %g", o.Value)
		}
		if o.Display.Label != "" {
			line += fmt.Sprintf(" [%s]", o.Display.Label)
		}
		fmt.Fprintln(r.out, line)
	}
	for _, c := range r.s.Connections() {
		fmt.Fprintf(r.out, "%s -> %s.%s\n", c.From, c.To, c.Input)
	}
}

func (r *Repl) status() {
	current := r.s.Current()
	if current == "" {
		current = "(untitled)"
	}
	dirty := ""
	if r.s.IsDirty() {
		dirty = " *"
	}
	fmt.Fprintf(r.out, "patch %s%s, %d objects\n", current, dirty, len(r.s.Objects()))
	for _, n := range r.s.Notices() {
		fmt.Fprintf(r.out, "!! %s\n", n.Text)
	}
}
