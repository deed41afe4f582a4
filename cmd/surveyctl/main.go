package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"surveyflow/internal/client"
	"surveyflow/internal/engine"
	"surveyflow/internal/model"
)

const tokenEnv = "SURVEYFLOW_TOKEN"

func main() {
	api := flag.String("api", "http://localhost:8080", "backend base URL")
	surveyID := flag.String("survey", "", "survey to answer")
	userID := flag.String("user", "", "user answering the survey")
	flag.Parse()

	if *surveyID == "" || *userID == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// the token is read on every request, so a refreshed value is picked up
	ctl, err := engine.New(engine.Config{
		SurveyID:    *surveyID,
		UserID:      *userID,
		Persistence: client.New(*api, client.EnvToken(tokenEnv)),
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := run(ctx, ctl, os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// run drives ctl from line-based input until the survey is completed, the
// user quits, or input ends
func run(ctx context.Context, ctl *engine.Controller, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Loading survey...")
	if err := ctl.Load(ctx); err != nil {
		if errors.Is(err, engine.ErrUnauthorized) {
			return fmt.Errorf("%w (is %s set?)", err, tokenEnv)
		}
		return err
	}
	if issues := ctl.LoadIssues(); len(issues) > 0 {
		fmt.Fprintf(out, "note: %d saved answers could not be restored\n", len(issues))
	}

	lines := bufio.NewScanner(in)
	render(out, ctl.View())
	for {
		fmt.Fprint(out, "> ")
		if !lines.Scan() {
			ctl.Abandon()
			fmt.Fprintln(out)
			return lines.Err()
		}
		line := strings.TrimSpace(lines.Text())

		switch line {
		case ":quit", ":q":
			ctl.Abandon()
			fmt.Fprintln(out, "Bye. Answers you moved past are saved.")
			return nil

		case ":back", ":b":
			if err := ctl.Retreat(); err != nil {
				fmt.Fprintf(out, "! %v\n", err)
			}
			render(out, ctl.View())

		case ":next", ":n":
			outcome, err := ctl.Advance(ctx)
			if outcome.Warning != nil {
				fmt.Fprintf(out, "~ could not save your answer, continuing: %v\n", outcome.Warning.Err)
			}
			var (
				verr *engine.ValidationError
				cerr *engine.CompletionError
			)
			switch {
			case errors.As(err, &verr):
				fmt.Fprintf(out, "! %s\n", verr.Reason)
				continue
			case errors.As(err, &cerr):
				fmt.Fprintf(out, "! submitting failed: %v\n  type :next to retry or :back to review\n", cerr.Err)
				continue
			case err != nil:
				return err
			}
			if outcome.Status == model.SessionCompleted {
				fmt.Fprintln(out, "Thanks! Your answers were submitted.")
				return nil
			}
			render(out, ctl.View())

		default:
			if err := edit(ctl, line); err != nil {
				fmt.Fprintf(out, "! %v\n", err)
				continue
			}
			render(out, ctl.View())
		}
	}
}

// edit turns an input line into an answer edit: option numbers for choice
// questions, the line itself for free text
func edit(ctl *engine.Controller, line string) error {
	q, ok := ctl.CurrentQuestion()
	if !ok {
		return engine.ErrNotActive
	}
	if !q.Kind.IsChoice() {
		return ctl.SetAnswer(engine.TextEdit(line))
	}

	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(q.Options) {
		return fmt.Errorf("enter an option number between 1 and %d", len(q.Options))
	}
	return ctl.SetAnswer(engine.OptionEdit(q.Options[n-1].ID))
}

func render(out io.Writer, v model.SessionView) {
	if v.Question == nil {
		return
	}
	q := v.Question

	required := ""
	if q.IsRequired {
		required = " *"
	}
	fmt.Fprintf(out, "\n[%d/%d] %s%s\n", v.Progress.Current, v.Progress.Total, q.Title, required)
	if q.Description != "" {
		fmt.Fprintf(out, "      %s\n", q.Description)
	}

	if !q.Kind.IsChoice() {
		text := ""
		if v.Answer != nil {
			text = v.Answer.TextAnswer
		}
		if text == "" && q.Input != nil {
			fmt.Fprintf(out, "  (%s)\n", q.Input.Placeholder)
		} else {
			fmt.Fprintf(out, "  %q\n", text)
		}
		return
	}

	hint := "pick one"
	if q.Kind == model.KindMultiChoice {
		hint = "toggle any"
	}
	for i, o := range q.Options {
		mark := " "
		if v.Answer != nil && v.Answer.HasOption(o.ID) {
			mark = "x"
		}
		fmt.Fprintf(out, "  %d) [%s] %s\n", i+1, mark, o.Label)
	}
	fmt.Fprintf(out, "  (%s; :next, :back, :quit)\n", hint)
}
