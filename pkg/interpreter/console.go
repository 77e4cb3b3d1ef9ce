package interpreter

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/peterh/liner"

	"github.com/AnnerChan/SMPLPROJECT/pkg/runtime"
)

// Console supplies line-oriented input to read and read-integer.
type Console interface {
	ReadLine() (string, error)
	ReadInteger() (int64, error)
}

// lineConsole buffers the remainder of a line after read-integer consumed a
// token from it. read returns that remainder when it holds any non-space
// text; otherwise both forms pull a fresh line.
type lineConsole struct {
	next    func() (string, error)
	pending string
}

func (c *lineConsole) ReadLine() (string, error) {
	if rest := strings.TrimLeftFunc(c.pending, unicode.IsSpace); rest != "" {
		c.pending = ""
		return rest, nil
	}
	c.pending = ""
	return c.next()
}

func (c *lineConsole) ReadInteger() (int64, error) {
	for strings.TrimSpace(c.pending) == "" {
		line, err := c.next()
		if err != nil {
			return 0, fmt.Errorf("read-integer: %w", err)
		}
		c.pending = line
	}
	text := strings.TrimLeftFunc(c.pending, unicode.IsSpace)
	end := strings.IndexFunc(text, unicode.IsSpace)
	if end < 0 {
		end = len(text)
	}
	token := text[:end]
	n, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		// The token stays pending so a following read can still see it.
		c.pending = text
		return 0, runtime.NewTypeError("read-integer", runtime.String(token), runtime.KindInteger)
	}
	c.pending = text[end:]
	return n, nil
}

// NewReaderConsole reads lines from r.
func NewReaderConsole(r io.Reader) Console {
	br := bufio.NewReader(r)
	return &lineConsole{next: func() (string, error) {
		line, err := br.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}
		line = strings.TrimSuffix(line, "\n")
		return strings.TrimSuffix(line, "\r"), nil
	}}
}

// NewLinerConsole reads lines interactively through a liner prompt, keeping
// non-empty lines in the history.
func NewLinerConsole(state *liner.State, prompt string) Console {
	return &lineConsole{next: func() (string, error) {
		line, err := state.Prompt(prompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				return "", io.EOF
			}
			return "", err
		}
		if strings.TrimSpace(line) != "" {
			state.AppendHistory(line)
		}
		return line, nil
	}}
}
