package launch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"dataclassification/config"
	"dataclassification/query"
)

var ErrNoDateRange = errors.New("no date range given: use -from and -to or query.from/query.to")

// Options are the run parameters given on the command line. Empty fields
// fall back to the prompt, then to the configuration.
type Options struct {
	UserName string
	From     string
	To       string
	NoPrompt bool

	In  io.Reader
	Out io.Writer
}

// Interactive reports whether missing options should be asked for.
func (o Options) Interactive() bool {
	if o.NoPrompt {
		return false
	}
	if o.In != nil {
		return true
	}
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Prompter reads answers line by line.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask prints label and returns the trimmed answer, or def when the answer
// is empty.
func (p *Prompter) Ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}

	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}

	if answer := strings.TrimSpace(line); answer != "" {
		return answer, nil
	}
	return def, nil
}

// AskDate asks until the answer is a YYYY-MM-DD date.
func (p *Prompter) AskDate(label, def string) (string, error) {
	for {
		answer, err := p.Ask(label, def)
		if err != nil {
			return "", err
		}
		if _, err := time.Parse(time.DateOnly, answer); err == nil {
			return answer, nil
		}
		fmt.Fprintf(p.out, "invalid date %q, expected YYYY-MM-DD\n", answer)
	}
}

// resolve fills the missing options and returns the date range.
func (o *Options) resolve(q config.QueryConfig) (query.DateRange, error) {
	userName := firstNonEmpty(o.UserName, q.UserName)
	from := firstNonEmpty(o.From, q.From)
	to := firstNonEmpty(o.To, q.To)

	if o.Interactive() {
		p := NewPrompter(o.In, o.Out)
		var err error

		if o.UserName == "" {
			if userName, err = p.Ask(`User name (DOMAIN\user, empty for all)`, userName); err != nil {
				return query.DateRange{}, fmt.Errorf("prompt: %w", err)
			}
		}
		if o.From == "" {
			if from, err = p.AskDate("Start date (YYYY-MM-DD)", from); err != nil {
				return query.DateRange{}, fmt.Errorf("prompt: %w", err)
			}
		}
		if o.To == "" {
			if to, err = p.AskDate("End date (YYYY-MM-DD)", firstNonEmpty(to, from)); err != nil {
				return query.DateRange{}, fmt.Errorf("prompt: %w", err)
			}
		}
	}

	if from == "" || to == "" {
		return query.DateRange{}, ErrNoDateRange
	}

	o.UserName, o.From, o.To = userName, from, to
	return query.ParseDateRange(from, to, q.Location())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
