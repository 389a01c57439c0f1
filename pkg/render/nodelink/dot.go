package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/quantfold/fundflow/pkg/allocate"
	"github.com/quantfold/fundflow/pkg/priority"
)

// Options configures diagram rendering.
type Options struct {
	// Detailed includes allocation totals and child weights in labels.
	Detailed bool

	// Label names an account in the diagram. Defaults to %v formatting.
	Label func(priority.Account) string
}

func (o Options) label(a priority.Account) string {
	if o.Label != nil {
		return o.Label(a)
	}
	if s, ok := a.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", a)
}

// ToDOT converts a priority tree (and optionally its allocation result) to
// Graphviz DOT format. The resulting DOT string can be rendered using
// [RenderSVG].
//
// Interior nodes are drawn as ellipses labeled with their kind; leaves are
// boxes labeled with the account and, when a result is given, the amount
// allocated to it. With Detailed set, ordered children are numbered on
// their edges and weighted children show their weight.
func ToDOT(root *priority.Node, result *allocate.Result, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	ids := make(map[*priority.Node]string)
	var next int
	var walk func(n *priority.Node) string
	walk = func(n *priority.Node) string {
		if id, ok := ids[n]; ok {
			return id
		}
		id := fmt.Sprintf("n%d", next)
		next++
		ids[n] = id

		if n.Kind() == priority.KindLeaf {
			label := opts.label(n.Account())
			if result != nil {
				if amount, ok := result.Totals[n.Account()]; ok {
					label = fmt.Sprintf("%s\n%.2f", label, amount)
				}
			}
			fmt.Fprintf(&buf, "  %s [label=%q];\n", id, label)
		} else {
			fmt.Fprintf(&buf, "  %s [label=%q, shape=ellipse, fillcolor=lightgrey];\n",
				id, n.Kind().String())
		}

		for i, child := range n.Children() {
			cid := walk(child)
			switch {
			case n.Kind() == priority.KindWeighted && opts.Detailed:
				fmt.Fprintf(&buf, "  %s -> %s [label=%q];\n", id, cid,
					strconv.FormatFloat(n.Weight(i), 'g', -1, 64))
			case n.Kind() == priority.KindOrdered && opts.Detailed:
				fmt.Fprintf(&buf, "  %s -> %s [label=%q];\n", id, cid, strconv.Itoa(i+1))
			default:
				fmt.Fprintf(&buf, "  %s -> %s;\n", id, cid)
			}
		}
		return id
	}
	walk(root)

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
