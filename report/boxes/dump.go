package boxes

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes a textual representation of the tree, one box per line,
// with absolute coordinates in points.
// The marginals of a logical page are written after its flow.
func Dump(out io.Writer, root *Box) {
	dumpBox(out, root, 0, 0, 0)
	for _, marginal := range root.Marginals {
		dumpBox(out, marginal, root.X, root.Y, 1)
	}
}

func dumpBox(out io.Writer, box *Box, parentX, parentY Unit, indent int) {
	x, y := parentX+box.X, parentY+box.Y
	fmt.Fprintf(out, "%s%s", strings.Repeat("  ", indent), box.Kind)
	if id := box.ID(); id != "" {
		fmt.Fprintf(out, " #%s", id)
	}
	fmt.Fprintf(out, ": %s %s %s %s", x, y, box.Width, box.Height)
	if box.Kind == KText {
		fmt.Fprintf(out, " %q", box.Text)
	}
	if flags := dumpFlags(box); len(flags) != 0 {
		fmt.Fprintf(out, " [%s]", strings.Join(flags, " "))
	}
	fmt.Fprintln(out)
	for _, child := range box.Children {
		dumpBox(out, child, x, y, indent+1)
	}
}

func dumpFlags(box *Box) (flags []string) {
	if box.Justified {
		flags = append(flags, "justified")
	}
	if box.HardBreak {
		flags = append(flags, "hard-break")
	}
	if box.BreakBefore == BreakPage {
		flags = append(flags, "break-before")
	}
	if box.BreakAfter == BreakPage {
		flags = append(flags, "break-after")
	}
	switch box.Repeat {
	case RepeatHeader:
		flags = append(flags, "page-header")
	case RepeatFooter:
		flags = append(flags, "page-footer")
	}
	if box.Transform != nil {
		flags = append(flags, "rotated")
	}
	return flags
}

// DumpString is a convenience wrapper around [Dump].
func DumpString(root *Box) string {
	var b strings.Builder
	Dump(&b, root)
	return b.String()
}
