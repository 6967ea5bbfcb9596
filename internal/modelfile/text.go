package modelfile

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Text format, one directive per line:
//
//	# comment
//	name weather
//	state rainy sunny
//	symbol walk shop
//	start rainy 0.6
//	trans rainy sunny 0.3
//	emit sunny walk 0.6
func parseText(r io.Reader) (*Document, error) {
	doc := &Document{
		Start:       map[string]float64{},
		Transitions: map[string]map[string]float64{},
		Emissions:   map[string]map[string]float64{},
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)

		bad := func(format string, args ...any) error {
			return errors.Wrapf(ErrSyntax, "line %d: %s", lineNo, fmt.Sprintf(format, args...))
		}
		prob := func(s string) (float64, error) {
			p, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return 0, bad("invalid probability %q", s)
			}
			return p, nil
		}

		switch parts[0] {
		case "name":
			if len(parts) != 2 {
				return nil, bad("name takes one argument")
			}
			doc.Name = parts[1]
		case "state":
			if len(parts) < 2 {
				return nil, bad("state needs at least one name")
			}
			doc.States = append(doc.States, parts[1:]...)
		case "symbol":
			if len(parts) < 2 {
				return nil, bad("symbol needs at least one name")
			}
			doc.Symbols = append(doc.Symbols, parts[1:]...)
		case "start":
			if len(parts) != 3 {
				return nil, bad("start takes a state and a probability")
			}
			p, err := prob(parts[2])
			if err != nil {
				return nil, err
			}
			doc.Start[parts[1]] = p
		case "trans":
			if len(parts) != 4 {
				return nil, bad("trans takes two states and a probability")
			}
			p, err := prob(parts[3])
			if err != nil {
				return nil, err
			}
			setCell(doc.Transitions, parts[1], parts[2], p)
		case "emit":
			if len(parts) != 4 {
				return nil, bad("emit takes a state, a symbol and a probability")
			}
			p, err := prob(parts[3])
			if err != nil {
				return nil, err
			}
			setCell(doc.Emissions, parts[1], parts[2], p)
		default:
			return nil, bad("unknown directive %q", parts[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}

func setCell(table map[string]map[string]float64, row, col string, p float64) {
	if table[row] == nil {
		table[row] = map[string]float64{}
	}
	table[row][col] = p
}

func writeText(w io.Writer, doc *Document) error {
	bw := bufio.NewWriter(w)
	spec := doc.Spec()

	if doc.Name != "" {
		fmt.Fprintf(bw, "name %s\n", doc.Name)
	}
	fmt.Fprintf(bw, "state %s\n", strings.Join(spec.States, " "))
	if len(doc.Symbols) > 0 {
		fmt.Fprintf(bw, "symbol %s\n", strings.Join(doc.Symbols, " "))
	}

	for _, s := range spec.States {
		if p, ok := doc.Start[s]; ok {
			fmt.Fprintf(bw, "start %s %s\n", s, formatProb(p))
		}
	}
	for _, from := range spec.States {
		row := doc.Transitions[from]
		for _, to := range spec.States {
			if p, ok := row[to]; ok {
				fmt.Fprintf(bw, "trans %s %s %s\n", from, to, formatProb(p))
			}
		}
	}
	for _, s := range spec.States {
		row := doc.Emissions[s]
		syms := make([]string, 0, len(row))
		for sym := range row {
			syms = append(syms, sym)
		}
		sort.Strings(syms)
		for _, sym := range syms {
			fmt.Fprintf(bw, "emit %s %s %s\n", s, sym, formatProb(row[sym]))
		}
	}
	return bw.Flush()
}

func formatProb(p float64) string {
	return strconv.FormatFloat(p, 'g', -1, 64)
}
