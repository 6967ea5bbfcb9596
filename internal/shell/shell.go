package shell

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/trknhr/viterbi/internal/hmm"
	"github.com/trknhr/viterbi/internal/modelfile"
)

// NoStateLabel is printed where the best path has no state.
const NoStateLabel = "None"

// Outcome is everything a session collected and decoded.
type Outcome struct {
	Document     *modelfile.Document
	Observations []string
	Result       hmm.Result
}

// Session walks a user through entering an HMM and one observation
// sequence, then prints the decoded path.
type Session struct {
	in  *bufio.Reader
	out io.Writer
}

func NewSession(in io.Reader, out io.Writer) *Session {
	return &Session{in: bufio.NewReader(in), out: out}
}

// Run executes one session. Any input or decoding error is printed and
// returned.
func (s *Session) Run() (*Outcome, error) {
	outcome, err := s.run()
	if err != nil {
		fmt.Fprintln(s.out, err)
		return nil, err
	}
	return outcome, nil
}

func (s *Session) run() (*Outcome, error) {
	numStates, err := s.readInt("Enter the number of states: ")
	if err != nil {
		return nil, err
	}
	states := make([]string, 0, numStates)
	for i := 0; i < numStates; i++ {
		name, err := s.readLine("Enter state name: ")
		if err != nil {
			return nil, err
		}
		states = append(states, name)
	}

	numSymbols, err := s.readInt("Enter the number of possible observation symbols: ")
	if err != nil {
		return nil, err
	}
	symbols := make([]string, 0, numSymbols)
	known := map[string]bool{}
	for i := 0; i < numSymbols; i++ {
		sym, err := s.readLine("Enter observation symbol: ")
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, sym)
		known[sym] = true
	}

	doc := &modelfile.Document{
		States:      states,
		Symbols:     symbols,
		Start:       map[string]float64{},
		Transitions: map[string]map[string]float64{},
		Emissions:   map[string]map[string]float64{},
	}

	fmt.Fprintln(s.out, "Enter start probabilities for each state (they should sum to 1):")
	for _, st := range states {
		p, err := s.readFloat(fmt.Sprintf("P(start in %s): ", st))
		if err != nil {
			return nil, err
		}
		doc.Start[st] = p
	}

	fmt.Fprintln(s.out, "Enter transition probabilities A(i,j): Probability of going from state i to state j.")
	for _, from := range states {
		doc.Transitions[from] = map[string]float64{}
		for _, to := range states {
			p, err := s.readFloat(fmt.Sprintf("P(%s->%s): ", from, to))
			if err != nil {
				return nil, err
			}
			doc.Transitions[from][to] = p
		}
	}

	fmt.Fprintln(s.out, "Enter emission probabilities B(i,o): Probability of emitting observation o in state i.")
	for _, st := range states {
		doc.Emissions[st] = map[string]float64{}
		for _, sym := range symbols {
			p, err := s.readFloat(fmt.Sprintf("P(observation=%s|state=%s): ", sym, st))
			if err != nil {
				return nil, err
			}
			doc.Emissions[st][sym] = p
		}
	}

	fmt.Fprintln(s.out, "Now enter the observation sequence you want to decode.")
	length, err := s.readInt("Length of observation sequence: ")
	if err != nil {
		return nil, err
	}
	observations := make([]string, 0, length)
	for i := 0; i < length; i++ {
		obs, err := s.readLine(fmt.Sprintf("Observation %d: ", i+1))
		if err != nil {
			return nil, err
		}
		if !known[obs] {
			fmt.Fprintf(s.out, "Warning: %s is not in the known observation symbols. Its probability defaults to 0 if not defined.\n", obs)
		}
		observations = append(observations, obs)
	}

	m, err := doc.Model()
	if err != nil {
		return nil, err
	}
	res, err := m.Decode(observations)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(s.out, "Best hidden state sequence: %s\n", FormatPath(res.Names))
	fmt.Fprintf(s.out, "Probability of the best path: %s\n", strconv.FormatFloat(res.Probability, 'g', -1, 64))

	return &Outcome{Document: doc, Observations: observations, Result: res}, nil
}

// FormatPath renders a decoded path as [a b c], with NoStateLabel for
// positions without a state.
func FormatPath(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		if n == "" {
			n = NoStateLabel
		}
		out[i] = n
	}
	return "[" + strings.Join(out, " ") + "]"
}

func (s *Session) readLine(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	line, err := s.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", errors.Wrapf(io.ErrUnexpectedEOF, "reading %q", strings.TrimSpace(prompt))
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (s *Session) readInt(prompt string) (int, error) {
	line, err := s.readLine(prompt)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(line)
	if err != nil {
		return 0, errors.Errorf("invalid number %q", line)
	}
	if n < 0 {
		return 0, errors.Errorf("invalid number %q: must not be negative", line)
	}
	return n, nil
}

func (s *Session) readFloat(prompt string) (float64, error) {
	line, err := s.readLine(prompt)
	if err != nil {
		return 0, err
	}
	p, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return 0, errors.Errorf("invalid probability %q", line)
	}
	return p, nil
}
