// ABOUTME: Interactive prompting for usernames, passwords, homeserver URLs and confirmations
// ABOUTME: Secrets are read without echo when stdin is a terminal; piped input is read line by line

package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNoInput is returned when input ends before an answer was given.
var ErrNoInput = errors.New("prompt: no input")

// Prompter asks the operator for values.
type Prompter interface {
	Ask(label string) (string, error)
	AskSecret(label string) (string, error)
	Confirm(label string) (bool, error)
	Say(format string, args ...any)
}

// Terminal prompts on out and reads from in.
type Terminal struct {
	reader *bufio.Reader
	out    io.Writer
	fd     int
	tty    bool
	ctx    context.Context
}

// NewTerminal prompts on out (usually os.Stderr) and reads from in,
// disabling echo for secrets when in is a terminal.
func NewTerminal(in *os.File, out io.Writer) *Terminal {
	fd := int(in.Fd())
	return &Terminal{
		reader: bufio.NewReader(in),
		out:    out,
		fd:     fd,
		tty:    term.IsTerminal(fd),
	}
}

// New prompts on out and reads lines from in. Secrets are read like any
// other line.
func New(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{reader: bufio.NewReader(in), out: out}
}

// WithContext makes every prompt give up with ctx.Err() once ctx is done,
// even while it waits for input.
func (t *Terminal) WithContext(ctx context.Context) *Terminal {
	t.ctx = ctx
	return t
}

func (t *Terminal) Ask(label string) (string, error) {
	if err := t.interrupted(); err != nil {
		return "", err
	}
	fmt.Fprintf(t.out, "%s: ", label)
	return t.await(t.readLine)
}

func (t *Terminal) AskSecret(label string) (string, error) {
	if err := t.interrupted(); err != nil {
		return "", err
	}
	fmt.Fprintf(t.out, "%s: ", label)
	if !t.tty {
		return t.await(t.readLine)
	}

	state, err := term.GetState(t.fd)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	secret, err := t.await(func() (string, error) {
		b, err := term.ReadPassword(t.fd)
		return string(b), err
	})
	if t.interrupted() == nil {
		fmt.Fprintln(t.out)
	}
	if err != nil {
		// ReadPassword only restores echo when it returns.
		_ = term.Restore(t.fd, state)
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	return secret, nil
}

// Confirm accepts y/yes in any case; everything else, including an empty
// answer, is no.
func (t *Terminal) Confirm(label string) (bool, error) {
	if err := t.interrupted(); err != nil {
		return false, err
	}
	fmt.Fprintf(t.out, "%s [y/N]: ", label)
	answer, err := t.await(t.readLine)
	if err != nil && !errors.Is(err, ErrNoInput) {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (t *Terminal) Say(format string, args ...any) {
	fmt.Fprintf(t.out, format+"\n", args...)
}

func (t *Terminal) interrupted() error {
	if t.ctx == nil {
		return nil
	}
	return t.ctx.Err()
}

// await runs read and returns early when the context ends. The abandoned
// read keeps its goroutine until input arrives or the process exits.
func (t *Terminal) await(read func() (string, error)) (string, error) {
	if t.ctx == nil {
		return read()
	}
	type answer struct {
		value string
		err   error
	}
	done := make(chan answer, 1)
	go func() {
		v, err := read()
		done <- answer{v, err}
	}()
	select {
	case a := <-done:
		return a.value, a.err
	case <-t.ctx.Done():
		fmt.Fprintln(t.out)
		return "", t.ctx.Err()
	}
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
