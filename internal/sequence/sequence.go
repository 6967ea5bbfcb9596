package sequence

import (
	"bufio"
	"io"
	"os"
	"strings"
	"unicode"
)

// Split breaks a line into observation symbols separated by commas and/or
// whitespace.
func Split(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// Read parses one sequence per line. It supports:
// - comments starting with '#'
// - blank lines, which are skipped
// - line continuation with a trailing '\'
func Read(r io.Reader) ([][]string, error) {
	var seqs [][]string
	var current []string
	continued := false

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if !continued && (line == "" || strings.HasPrefix(line, "#")) {
			continue
		}

		if strings.HasSuffix(line, "\\") {
			current = append(current, Split(strings.TrimSuffix(line, "\\"))...)
			continued = true
			continue
		}

		current = append(current, Split(line)...)
		continued = false
		if len(current) > 0 {
			seqs = append(seqs, current)
		}
		current = nil
	}

	if len(current) > 0 {
		seqs = append(seqs, current)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return seqs, nil
}

func LoadFile(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Read(file)
}

// LoadTail returns the last n sequences of the file, or all of them when
// n is not positive.
func LoadTail(path string, n int) ([][]string, error) {
	seqs, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(seqs) > n {
		seqs = seqs[len(seqs)-n:]
	}
	return seqs, nil
}
