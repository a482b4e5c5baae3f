package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"web_controller/domain/interfaces"
)

type line struct {
	text string
	err  error
}

// console reads operator input line by line. Lines are read by a single
// background goroutine so that a pending prompt can be abandoned when the
// context is cancelled.
type console struct {
	out   io.Writer
	in    *bufio.Reader
	lines chan line
	start sync.Once
}

// NewConsole - creates a console reading from in and writing to out
func NewConsole(in io.Reader, out io.Writer) interfaces.Console {
	return &console{
		out:   out,
		in:    bufio.NewReader(in),
		lines: make(chan line, 1),
	}
}

func (c *console) read() {
	defer close(c.lines)
	for {
		text, err := c.in.ReadString('\n')
		if err != nil {
			// a final line without a newline still counts
			if text != "" {
				c.lines <- line{text: text}
			}
			c.lines <- line{err: err}
			return
		}
		c.lines <- line{text: text}
	}
}

// Prompt - prints question and waits for the next input line
func (c *console) Prompt(ctx context.Context, question string) (string, error) {
	c.start.Do(func() { go c.read() })

	fmt.Fprint(c.out, question)

	select {
	case <-ctx.Done():
		fmt.Fprintln(c.out)
		return "", ctx.Err()
	case l, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		if l.err != nil {
			return "", l.err
		}
		return strings.TrimSpace(l.text), nil
	}
}

// Printf - writes a message for the operator
func (c *console) Printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
