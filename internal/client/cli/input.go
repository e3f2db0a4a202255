package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// GetPassword prints prompt to w and reads a secret from the terminal on
// stdin without echo. The caller should wipe the result.
func GetPassword(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

type promptReply struct {
	line string
	ok   bool
}

type promptRequest struct {
	text  string
	reply chan promptReply
}

// console owns the input stream. One goroutine reads lines; the REPL and
// background prompts (such as an interactive sign-in started by a session
// restore) take turns consuming them.
type console struct {
	in  io.Reader
	out io.Writer

	once    sync.Once
	lines   chan string
	prompts chan promptRequest
}

func newConsole(in io.Reader, out io.Writer) *console {
	return &console{
		in:      in,
		out:     out,
		lines:   make(chan string),
		prompts: make(chan promptRequest),
	}
}

// start begins reading input. Nothing else may read from in afterwards.
func (c *console) start() {
	c.once.Do(func() {
		go func() {
			defer close(c.lines)
			sc := bufio.NewScanner(c.in)
			for sc.Scan() {
				c.lines <- strings.TrimRight(sc.Text(), "\r")
			}
		}()
	})
}

// ReadLine returns the next line of input, answering pending prompts first.
// ok is false on end of input or when ctx is done.
func (c *console) ReadLine(ctx context.Context) (line string, ok bool) {
	for {
		select {
		case req := <-c.prompts:
			c.answer(ctx, req)
		case line, ok := <-c.lines:
			return line, ok
		case <-ctx.Done():
			return "", false
		}
	}
}

// Wait answers prompts until done is closed or ctx is done.
func (c *console) Wait(ctx context.Context, done <-chan struct{}) {
	for {
		select {
		case req := <-c.prompts:
			c.answer(ctx, req)
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (c *console) answer(ctx context.Context, req promptRequest) {
	fmt.Fprint(c.out, req.text)
	select {
	case line, ok := <-c.lines:
		req.reply <- promptReply{line: line, ok: ok}
	case <-ctx.Done():
		req.reply <- promptReply{}
	}
}

// Prompt shows text and returns the next line. It blocks until the REPL
// or a waiting command is ready to hand over the input.
func (c *console) Prompt(ctx context.Context, text string) (string, error) {
	req := promptRequest{text: text, reply: make(chan promptReply, 1)}
	select {
	case c.prompts <- req:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case r := <-req.reply:
		if !r.ok {
			return "", io.EOF
		}
		return r.line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
