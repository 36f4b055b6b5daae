package repository

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// readRecords calls fn for every non-blank line of src. Errors returned by fn
// are annotated with the 1-based line number.
func readRecords(src io.Reader, fn func(line string) error) error {
	scanner := bufio.NewScanner(src)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := fn(line); err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
	}
	return scanner.Err()
}

// writeRecords writes each line followed by a newline
func writeRecords(dst io.Writer, lines []string) error {
	w := bufio.NewWriter(dst)
	for _, line := range lines {
		if _, err := w.WriteString(line); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}
