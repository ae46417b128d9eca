package cleanup

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"peopledetect/internal/run"
)

// Prompter asks which action to take, asks for confirmation and runs it.
type Prompter struct {
	In      io.Reader
	Out     io.Writer
	Remover Remover
	// Menu renders the action list. A plain listing is used when nil.
	Menu func(actions []Action) string
}

// PlainMenu lists actions one per line.
func PlainMenu(actions []Action) string {
	var b strings.Builder
	b.WriteString("Next action:\n")
	for _, a := range actions {
		fmt.Fprintf(&b, "\t[%d] %s\n", int(a), a)
	}
	return b.String()
}

// Prompt reads a choice until a valid one is entered or input ends, which
// counts as ActionNone. Nothing is deleted without a "y" or "yes".
func (p *Prompter) Prompt(report *run.Report) (Action, Result, error) {
	menu := p.Menu
	if menu == nil {
		menu = PlainMenu
	}
	remover := p.Remover
	if remover == nil {
		remover = OSRemover{}
	}
	in := bufio.NewReader(p.In)

	fmt.Fprint(p.Out, menu(Actions))
	var action Action
	for {
		fmt.Fprint(p.Out, "> ")
		line, err := readLine(in)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.Out)
			return ActionNone, Result{}, nil
		}
		if err != nil {
			return ActionNone, Result{}, err
		}
		action, err = ParseAction(line)
		if err == nil {
			break
		}
		fmt.Fprintf(p.Out, "%v, choose 0-%d\n", err, len(Actions)-1)
	}
	fmt.Fprintf(p.Out, "Chosen action %d\n", int(action))

	if action == ActionNone {
		return action, Result{}, nil
	}

	targets := Targets(action, report)
	if len(targets) == 0 {
		fmt.Fprintln(p.Out, "No files to delete")
		return action, Result{}, nil
	}

	var size int64
	for _, f := range targets {
		size += f.Size
	}
	fmt.Fprintf(p.Out, "Delete %d files (%s)? [y/N] ", len(targets), humanize.IBytes(uint64(size)))
	answer, err := readLine(in)
	if err != nil && !errors.Is(err, io.EOF) {
		return action, Result{}, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
	default:
		fmt.Fprintln(p.Out, "Nothing deleted")
		return action, Result{}, nil
	}

	res := Execute(targets, remover)
	fmt.Fprintf(p.Out, "Deleted %d files, freed %s\n", len(res.Deleted), humanize.IBytes(uint64(res.FreedBytes)))
	for _, f := range res.Failed {
		fmt.Fprintf(p.Out, "Could not delete %s: %v\n", f.Path, f.Err)
	}
	return action, res, nil
}

// readLine returns the next line. A final line without newline is
// returned as is; input that is already exhausted yields io.EOF.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		return "", err
	}
	return line, nil
}
