package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
)

// LineReader reads one command line at a time for the interactive shell.
// ReadLine returns io.EOF when input ends and ErrAborted on Ctrl+C.
type LineReader interface {
	ReadLine() (string, error)
}

// NewLineReader returns a promptui-backed reader when in is a terminal and
// a plain line scanner otherwise, so scripted input works unchanged.
func NewLineReader(in io.Reader, out io.Writer, label string) LineReader {
	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return &terminalReader{label: label, in: f, out: out}
	}
	return &scanReader{label: label, scanner: bufio.NewScanner(in), out: out}
}

type terminalReader struct {
	label string
	in    *os.File
	out   io.Writer
}

func (r *terminalReader) ReadLine() (string, error) {
	p := promptui.Prompt{
		Label: r.label,
		Stdin: io.NopCloser(r.in),
	}
	if wc, ok := r.out.(io.WriteCloser); ok {
		p.Stdout = nopWriteCloser{wc}
	}

	line, err := p.Run()
	if errors.Is(err, promptui.ErrEOF) {
		return "", io.EOF
	}
	return line, wrapError(err)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

type scanReader struct {
	label   string
	scanner *bufio.Scanner
	out     io.Writer
}

func (r *scanReader) ReadLine() (string, error) {
	_, _ = fmt.Fprintf(r.out, "%s: ", r.label)
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimRight(r.scanner.Text(), "\r"), nil
}
