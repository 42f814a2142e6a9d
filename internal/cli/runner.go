// Package cli is the terminal front-end: it drives the same practice flow as
// the web pages from a line-oriented prompt.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"pdf-quiz/internal/domain"
	"pdf-quiz/internal/dto"
	"pdf-quiz/internal/service"
	"pdf-quiz/internal/util"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"

	checkMark = "✅"
	crossMark = "❌"
)

// Runner reads commands from in and writes the quiz to out.
type Runner struct {
	svc       service.PracticeService
	in        *bufio.Scanner
	out       io.Writer
	color     bool
	sessionID string
}

// Option configures a Runner.
type Option func(*Runner)

// WithColor toggles ANSI colors. On by default.
func WithColor(enabled bool) Option {
	return func(r *Runner) { r.color = enabled }
}

// WithSessionID pins the session id, mostly for tests.
func WithSessionID(id string) Option {
	return func(r *Runner) { r.sessionID = id }
}

// NewRunner creates a Runner.
func NewRunner(svc service.PracticeService, in io.Reader, out io.Writer, opts ...Option) *Runner {
	r := &Runner{
		svc:   svc,
		in:    bufio.NewScanner(in),
		out:   out,
		color: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.sessionID == "" {
		r.sessionID = util.NewULID()
	}
	return r
}

func (r *Runner) colorize(s, code string) string {
	if !r.color {
		return s
	}
	return code + s + colorReset
}

func (r *Runner) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.out, format, args...)
}

func (r *Runner) printErr(err error) {
	msg := err.Error()
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		msg = domainErr.Message
	}
	r.printf("%s\n", r.colorize(msg, colorRed))
}

// Run uploads file, generates a quiz and plays it until the user quits or
// input ends.
func (r *Runner) Run(ctx context.Context, file service.FileInput) error {
	r.printf("%s\n", r.colorize("AI Study Planner", colorBold+colorCyan))
	r.printf("Processing %s...\n", file.Name)

	p, err := r.svc.Upload(ctx, r.sessionID, file)
	if err != nil {
		return err
	}
	view := dto.NewPracticeResponse(p)
	if view.SelectedFile != nil {
		r.printf("Uploaded %s (%s)\n", view.SelectedFile.Name, view.SelectedFile.SizeLabel)
	}

	r.printf("Generating quiz...\n")
	p, err = r.svc.GenerateQuiz(ctx, r.sessionID)
	if err != nil {
		return err
	}

	r.printAttempts(ctx, p.PDFID)
	return r.loop(ctx, p)
}

func (r *Runner) printAttempts(ctx context.Context, pdfID string) {
	attempts, err := r.svc.Attempts(ctx, pdfID)
	if err != nil {
		r.printf("%s\n", r.colorize("Attempt history is unavailable right now.", colorYellow))
		return
	}
	if len(attempts) == 0 {
		r.printf("No previous attempts yet.\n")
		return
	}
	r.printf("%s\n", r.colorize("Quiz Attempts", colorBold))
	for _, a := range dto.NewAttemptsResponse(pdfID, attempts).Attempts {
		when := a.TimestampLabel
		if when == "" {
			when = "unknown time"
		}
		r.printf("  %s  %d/%d  %s%%\n", when, a.CorrectAnswers, a.TotalQuestions,
			strconv.FormatFloat(a.ScorePercentage, 'f', -1, 64))
	}
}

func (r *Runner) loop(ctx context.Context, p *domain.Practice) error {
	for {
		r.render(dto.NewPracticeResponse(p))

		r.printf("> ")
		if !r.in.Scan() {
			r.printf("\n")
			return r.in.Err()
		}
		cmd := strings.TrimSpace(r.in.Text())
		if cmd == "" {
			continue
		}

		var err error
		var next *domain.Practice
		switch strings.ToLower(cmd) {
		case "n":
			next, err = r.svc.Next(ctx, r.sessionID)
		case "p":
			next, err = r.svc.Previous(ctx, r.sessionID)
		case "r":
			if !p.IsComplete() {
				r.printf("%s\n", r.colorize("Restart is available once every question is answered.", colorYellow))
				continue
			}
			next, err = r.svc.Restart(ctx, r.sessionID)
		case "q", "back", "quit":
			_, err = r.svc.BackToUpload(ctx, r.sessionID)
			if err == nil {
				r.printf("Bye.\n")
			}
			return err
		default:
			option, ok := parseOption(cmd)
			if !ok {
				r.printf("%s\n", r.colorize("Unknown command: "+cmd, colorYellow))
				continue
			}
			next, err = r.svc.Answer(ctx, r.sessionID, option)
		}
		if err != nil {
			r.printErr(err)
		}
		if next != nil {
			p = next
		}
	}
}

// parseOption accepts a letter (a, B) or a 1-based number. The letters n, p, r
// and q are taken by commands; numbers always work.
func parseOption(cmd string) (int, bool) {
	if n, err := strconv.Atoi(cmd); err == nil {
		return n - 1, n > 0
	}
	runes := []rune(cmd)
	if len(runes) != 1 || !unicode.IsLetter(runes[0]) {
		return 0, false
	}
	ch := unicode.ToUpper(runes[0])
	if ch < 'A' || ch > 'Z' {
		return 0, false
	}
	return int(ch - 'A'), true
}

func (r *Runner) render(v *dto.PracticeResponse) {
	q := v.Quiz
	if q == nil {
		return
	}
	r.printf("\n%s\n", r.colorize(fmt.Sprintf("Question %d of %d", q.Number, q.Total), colorBold+colorCyan))
	r.printf("%d/%d answered | Score %d%% (%d/%d)\n", q.Stats.Answered, q.Stats.Total, q.Stats.Score, q.Stats.Correct, q.Stats.Answered)
	r.printf("%s\n\n", r.colorize(q.Question, colorBold))

	for _, opt := range q.Options {
		line := fmt.Sprintf("  %s) %s", opt.Letter, opt.Text)
		switch opt.State {
		case domain.OptionCorrect:
			line = r.colorize(line, colorGreen) + " " + checkMark
		case domain.OptionWrong:
			line = r.colorize(line, colorRed) + " " + crossMark
		case domain.OptionSelected:
			line = r.colorize(line, colorYellow)
		}
		r.printf("%s\n", line)
	}

	if q.HasAnswered {
		if q.IsCorrect {
			r.printf("\n%s\n", r.colorize("Correct!", colorGreen+colorBold))
		} else {
			r.printf("\n%s\n", r.colorize("Incorrect", colorRed+colorBold))
		}
		if q.Explanation != "" {
			r.printf("%s\n", q.Explanation)
		}
	}

	help := []string{"[letter] answer"}
	if q.HasPrevious {
		help = append(help, "p previous")
	}
	if q.HasNext {
		help = append(help, "n next")
	}
	if q.IsComplete {
		help = append(help, "r restart")
	}
	help = append(help, "q back")
	r.printf("\n%s\n", r.colorize(strings.Join(help, " | "), colorYellow))
}
