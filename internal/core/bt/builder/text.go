package builder

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/zeusync/arenabot/internal/core/bt"
)

type sourceLine struct {
	no    int
	depth int
	name  string
	args  []string
}

// ParseText builds a tree from the tab-indented format:
//
//	Selector
//		Sequencer
//			GuardIsKickoff
//			TaskDashForward
//		TaskGoTowardsPoint my_goal_box
//
// Leading tabs give the depth, the first word names the node and the rest
// are its arguments. The first line is the root. Any malformed line fails
// the whole build with a *ParseError.
func ParseText(r io.Reader, reg *Registry) (*bt.Tree, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyInput
	}

	tree := bt.New()
	at := make(map[bt.NodeID]int, len(lines))
	var stack []bt.NodeID

	for i, l := range lines {
		switch {
		case i == 0 && l.depth != 0:
			return nil, &ParseError{Line: l.no, Err: ErrIndentation}
		case i > 0 && l.depth == 0:
			return nil, &ParseError{Line: l.no, Err: ErrMultipleRoots}
		case l.depth > len(stack):
			return nil, &ParseError{Line: l.no, Err: ErrIndentation}
		}

		label := strings.Join(append([]string{l.name}, l.args...), " ")
		id, err := addNode(tree, reg, l.name, l.args, label)
		if err != nil {
			return nil, &ParseError{Line: l.no, Err: err}
		}
		at[id] = l.no

		if l.depth > 0 {
			if err := tree.Attach(stack[l.depth-1], id); err != nil {
				return nil, &ParseError{Line: l.no, Err: err}
			}
		}
		stack = append(stack[:l.depth], id)
	}

	if err := tree.SetRoot(0); err != nil {
		return nil, err
	}
	for id := bt.NodeID(0); int(id) < tree.Len(); id++ {
		if tree.Kind(id) == bt.KindInvert && len(tree.Children(id)) != 1 {
			return nil, &ParseError{Line: at[id], Err: bt.ErrInvertChildren}
		}
	}
	if err := tree.Validate(); err != nil {
		return nil, err
	}
	return tree, nil
}

// ParseString is ParseText over a string.
func ParseString(src string, reg *Registry) (*bt.Tree, error) {
	return ParseText(strings.NewReader(src), reg)
}

// readLines splits the source into node lines. Trailing blank lines are
// ignored; any other blank line is an error.
func readLines(r io.Reader) ([]sourceLine, error) {
	var raw []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		raw = append(raw, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read tree source: %w", err)
	}
	for len(raw) > 0 && strings.TrimSpace(raw[len(raw)-1]) == "" {
		raw = raw[:len(raw)-1]
	}

	lines := make([]sourceLine, 0, len(raw))
	for i, text := range raw {
		if strings.TrimSpace(text) == "" {
			return nil, &ParseError{Line: i + 1, Err: ErrEmptyLine}
		}
		depth := len(text) - len(strings.TrimLeft(text, "\t"))
		fields := strings.Fields(text[depth:])
		lines = append(lines, sourceLine{no: i + 1, depth: depth, name: fields[0], args: fields[1:]})
	}
	return lines, nil
}
