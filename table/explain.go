package table

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
)

// Explain renders the table's conflict list per opts.Explain:
// ExplainOff is a no-op, ExplainStdout prints a colored report via
// pterm, ExplainFile writes the same report (without color codes) to
// opts.ExplainTo.
func (t *Table) Explain(opts Options) error {
	switch opts.Explain {
	case ExplainOff:
		return nil
	case ExplainStdout:
		t.explainStdout()
		return nil
	case ExplainFile:
		return t.explainFile(opts.ExplainTo)
	default:
		return fmt.Errorf("table: unknown explain mode %v", opts.Explain)
	}
}

func (t *Table) explainStdout() {
	if len(t.Conflicts) == 0 {
		pterm.Success.Println("no conflicts")
		return
	}
	pterm.DefaultSection.Println(fmt.Sprintf("%d conflict(s)", len(t.Conflicts)))
	for _, c := range t.Conflicts {
		t.printConflict(c)
	}
}

func (t *Table) printConflict(c Conflict) {
	kind := "shift/reduce"
	if c.Kind == ReduceReduce {
		kind = "reduce/reduce"
	}
	header := fmt.Sprintf("state %d, on %s: %s", c.State, t.Grammar.Symbols.Name(c.Symbol), kind)
	if c.Resolved {
		pterm.Info.Println(header + " - " + c.Reason)
	} else {
		pterm.Warning.Println(header + " - " + c.Reason)
	}
	for _, a := range c.Actions {
		pterm.Println("    " + a.String(t.Grammar.Symbols))
	}
}

func (t *Table) explainFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("table: explain: %w", err)
	}
	defer f.Close()

	fmt.Fprintf(f, "%d conflict(s)\n", len(t.Conflicts))
	for _, c := range t.Conflicts {
		kind := "shift/reduce"
		if c.Kind == ReduceReduce {
			kind = "reduce/reduce"
		}
		fmt.Fprintf(f, "state %d, on %s: %s - %s\n", c.State, t.Grammar.Symbols.Name(c.Symbol), kind, c.Reason)
		for _, a := range c.Actions {
			fmt.Fprintf(f, "    %s\n", a.String(t.Grammar.Symbols))
		}
	}
	return nil
}
