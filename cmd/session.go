package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/intervue/internal/app"
	"github.com/abhisek/intervue/internal/interview"
	"github.com/abhisek/intervue/internal/scoring"
)

// sessionOp runs one machine operation against the persisted session.
type sessionOp func(ctx context.Context, a *app.App, cmd *cobra.Command, args []string) (interview.View, error)

// sessionCommand wraps op in a command that opens the session, runs op and
// prints the resulting view. Every invocation is a fresh process, so an
// in-flight session is always restored suspended; commands that mutate it
// accept --continue to resume it first.
func sessionCommand(use, short string, args cobra.PositionalArgs, mutates bool, op sessionOp) *cobra.Command {
	c := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, "console", app.Options{})
			if err != nil {
				return err
			}
			defer closeApp(a)

			ctx := cmd.Context()
			suspended := a.Machine.View().Suspended
			if cont, _ := cmd.Flags().GetBool("continue"); mutates && cont && suspended {
				if _, err := a.Machine.ResumeOrRestart(ctx, interview.ResumeContinue); err != nil {
					return err
				}
				suspended = false
			}

			v, err := op(ctx, a, cmd, args)
			if err != nil {
				if suspended && errors.Is(err, interview.ErrInvalidState) {
					return fmt.Errorf("%w (the session was interrupted: pass --continue or run `intervue resume`)", err)
				}
				return err
			}
			asJSON, _ := cmd.Flags().GetBool("json")
			return printView(cmd.OutOrStdout(), v, asJSON)
		},
	}
	c.Flags().Bool("json", false, "Print the session as JSON")
	if mutates {
		c.Flags().Bool("continue", false, "Continue an interrupted session before running")
	}
	return c
}

func addSessionCommands(root *cobra.Command) {
	candidate := sessionCommand("candidate", "Record the candidate's details", cobra.NoArgs, true,
		func(ctx context.Context, a *app.App, cmd *cobra.Command, _ []string) (interview.View, error) {
			var info interview.CandidateInfo
			info.Name, _ = cmd.Flags().GetString("name")
			info.Email, _ = cmd.Flags().GetString("email")
			info.Phone, _ = cmd.Flags().GetString("phone")
			info.ResumeRef, _ = cmd.Flags().GetString("resume")
			return a.Machine.SetCandidateInfo(ctx, info)
		})
	candidate.Flags().String("name", "", "Full name")
	candidate.Flags().String("email", "", "Email address")
	candidate.Flags().String("phone", "", "Phone number")
	candidate.Flags().String("resume", "", "Reference to the uploaded resume")

	start := sessionCommand("start", "Load the questions and start the first countdown", cobra.NoArgs, true,
		func(ctx context.Context, a *app.App, _ *cobra.Command, _ []string) (interview.View, error) {
			qs, err := a.Questions.Questions(ctx)
			if err != nil {
				return interview.View{}, fmt.Errorf("load questions: %w", err)
			}
			return a.Machine.StartInterview(ctx, qs)
		})

	status := sessionCommand("status", "Show the current session", cobra.NoArgs, false,
		func(_ context.Context, a *app.App, _ *cobra.Command, _ []string) (interview.View, error) {
			return a.Machine.View(), nil
		})

	answer := sessionCommand("answer <text>", "Answer the current question and move on", cobra.MinimumNArgs(1), true,
		func(ctx context.Context, a *app.App, _ *cobra.Command, args []string) (interview.View, error) {
			return a.Machine.Answer(ctx, strings.Join(args, " "))
		})

	timeout := sessionCommand("timeout", "Record that the current question ran out of time", cobra.NoArgs, true,
		func(ctx context.Context, a *app.App, _ *cobra.Command, _ []string) (interview.View, error) {
			return a.Machine.HandleTimeout(ctx)
		})

	pause := sessionCommand("pause", "Pause the countdown", cobra.NoArgs, true,
		func(ctx context.Context, a *app.App, _ *cobra.Command, _ []string) (interview.View, error) {
			return a.Machine.SetTimerActive(ctx, false)
		})

	resumeTimer := sessionCommand("resume-timer", "Resume a paused countdown", cobra.NoArgs, true,
		func(ctx context.Context, a *app.App, _ *cobra.Command, _ []string) (interview.View, error) {
			return a.Machine.SetTimerActive(ctx, true)
		})

	resume := sessionCommand("resume", "Continue or restart a session left in progress", cobra.NoArgs, false,
		func(ctx context.Context, a *app.App, cmd *cobra.Command, _ []string) (interview.View, error) {
			cont, _ := cmd.Flags().GetBool("continue")
			restart, _ := cmd.Flags().GetBool("restart")
			switch {
			case cont == restart:
				return interview.View{}, errors.New("pass exactly one of --continue or --restart")
			case cont:
				return a.Machine.ResumeOrRestart(ctx, interview.ResumeContinue)
			default:
				return a.Machine.ResumeOrRestart(ctx, interview.ResumeRestart)
			}
		})
	resume.Flags().Bool("continue", false, "Pick up where the session stopped")
	resume.Flags().Bool("restart", false, "Discard the session and start over")

	score := sessionCommand("score", "Score the finished interview with the configured scorer", cobra.NoArgs, true,
		func(ctx context.Context, a *app.App, _ *cobra.Command, _ []string) (interview.View, error) {
			s, err := a.Scorer(ctx)
			if err != nil {
				return interview.View{}, err
			}
			return scoring.Finalize(ctx, a.Machine, s)
		})

	complete := sessionCommand("complete <score> <summary>", "Record a score computed elsewhere", cobra.MinimumNArgs(2), true,
		func(ctx context.Context, a *app.App, _ *cobra.Command, args []string) (interview.View, error) {
			n, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return interview.View{}, fmt.Errorf("invalid score %q: %w", args[0], err)
			}
			return a.Machine.CompleteInterview(ctx, n, strings.Join(args[1:], " "))
		})

	reset := sessionCommand("reset", "Discard the session and return to idle", cobra.NoArgs, false,
		func(ctx context.Context, a *app.App, _ *cobra.Command, _ []string) (interview.View, error) {
			return a.Machine.ResetInterview(ctx)
		})

	root.AddCommand(candidate, start, status, answer, timeout, pause, resumeTimer, resume, score, complete, reset)
}

func printView(w io.Writer, v interview.View, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	s := v.State
	fmt.Fprintf(w, "Phase:      %s\n", v.Phase)
	if s.SessionID != "" {
		fmt.Fprintf(w, "Session:    %s\n", s.SessionID)
	}
	if s.CandidateInfo != nil {
		fmt.Fprintf(w, "Candidate:  %s <%s>\n", s.CandidateInfo.Name, s.CandidateInfo.Email)
	}
	if q, ok := s.CurrentQuestion(); ok {
		timer := "running"
		if !s.IsTimerRunning {
			timer = "paused"
		}
		fmt.Fprintf(w, "Question:   %d of %d [%s] %s\n", s.CurrentQuestionIndex+1, len(s.Questions), q.Difficulty, q.Text)
		fmt.Fprintf(w, "Time left:  %ds of %ds (%s)\n", s.TimeRemainingSeconds, q.TimeLimitSeconds, timer)
	}
	if len(s.Questions) > 0 {
		fmt.Fprintf(w, "Answered:   %d of %d\n", len(s.Answers), len(s.Questions))
	}
	if s.FinalScore != nil {
		fmt.Fprintf(w, "Score:      %.1f\n", *s.FinalScore)
	}
	if s.Summary != nil {
		fmt.Fprintf(w, "Summary:    %s\n", *s.Summary)
	}
	if v.Suspended {
		fmt.Fprintln(w, "\nThis session was interrupted. Run `intervue resume --continue` or `intervue resume --restart`.")
	}
	if v.Degraded {
		fmt.Fprintln(w, "\nWarning: storage is unavailable, this change was not saved.")
	}
	return nil
}
