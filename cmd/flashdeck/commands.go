package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/conorfennell/flashdeck/internal/config"
	"github.com/conorfennell/flashdeck/internal/deck"
	"github.com/conorfennell/flashdeck/internal/importer"
	"github.com/conorfennell/flashdeck/internal/study"
	"github.com/conorfennell/flashdeck/internal/web"
)

func runServe(ctx context.Context, args []string) error {
	fs := config.Flags("serve")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}
	a, err := newApp(ctx, fs)
	if err != nil {
		return err
	}
	defer a.close()

	imp := importer.New(a.decks, a.cfg.Import.ReposDir, a.logger)
	srv := web.NewServer(a.decks, a.stats, imp, a.logger, a.studyOptions()...)
	return srv.ListenAndServe(ctx, a.cfg.HTTP.Addr, a.cfg.HTTP.ShutdownTimeout)
}

func runDecks(ctx context.Context, args []string, out io.Writer) error {
	fs := config.Flags("decks")
	category := fs.String("category", "", "Only list decks in this category")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}
	a, err := newApp(ctx, fs)
	if err != nil {
		return err
	}
	defer a.close()

	decks, err := deck.NewService(a.decks).List(ctx, *category)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tCARDS")
	for _, d := range decks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", d.ID, d.Name, d.Category, len(d.Cards))
	}
	return tw.Flush()
}

func runImport(ctx context.Context, args []string, out io.Writer) error {
	fs := config.Flags("import")
	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return fmt.Errorf("import needs exactly one source: %w", errUsage)
	}
	a, err := newApp(ctx, fs)
	if err != nil {
		return err
	}
	defer a.close()

	report, err := importer.New(a.decks, a.cfg.Import.ReposDir, a.logger).Import(ctx, rest[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Imported %d decks, %d cards (%d new, %d removed), %d errors.\n",
		report.Decks, report.Cards, report.Added, report.Removed, len(report.Errors))
	for _, e := range report.Errors {
		fmt.Fprintf(out, "- %s\n", e)
	}
	return nil
}

func runStats(ctx context.Context, args []string, out io.Writer) error {
	fs := config.Flags("stats")
	recent := fs.Int("recent", 5, "Number of recent sessions to show")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}
	a, err := newApp(ctx, fs)
	if err != nil {
		return err
	}
	defer a.close()

	totals, err := a.stats.Totals(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Sessions: %d  Cards studied: %d  Average accuracy: %d%%  Study time: %d min\n",
		totals.TotalStudySessions, totals.TotalCardsStudied, totals.AverageAccuracy, totals.StudyTime)

	sessions, err := a.stats.Recent(ctx, a.decks, *recent)
	if err != nil {
		return err
	}
	if len(sessions) > 0 {
		fmt.Fprintln(out, "\nRecent sessions:")
		for _, s := range sessions {
			result := "completed"
			if s.Failed {
				result = "failed"
			}
			fmt.Fprintf(out, "  %s  %-24s %3d%%  %s\n", s.Date.Format("2006-01-02 15:04"), s.DeckName, s.Accuracy, result)
		}
	}

	progress, err := a.stats.DeckProgress(ctx, a.decks)
	if err != nil {
		return err
	}
	if len(progress) > 0 {
		fmt.Fprintln(out, "\nDeck progress:")
		for _, p := range progress {
			fmt.Fprintf(out, "  %-24s %d/%d (%d%%)\n", p.DeckName, p.Studied, p.TotalCards, p.Percent)
		}
	}
	return nil
}

// runStudy drives a session from stdin. Enter reveals the answer, y/n
// records the outcome, r restarts and q quits.
func runStudy(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	fs := config.Flags("study")
	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return fmt.Errorf("study needs exactly one deck id: %w", errUsage)
	}
	a, err := newApp(ctx, fs)
	if err != nil {
		return err
	}
	defer a.close()

	runner := study.NewRunner(a.decks, a.decks, a.stats, a.logger, a.studyOptions()...)
	st, err := runner.Start(ctx, rest[0])
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for {
		printState(out, st)
		if st.Phase == study.PhaseComplete {
			fmt.Fprint(out, "[r]estart or [q]uit: ")
		} else if st.Phase == study.PhaseAwaitingOutcome {
			fmt.Fprint(out, "Correct? [y/n] ")
		} else {
			fmt.Fprint(out, "Press Enter to reveal ([q]uit): ")
		}

		if !scanner.Scan() {
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		input := strings.ToLower(strings.TrimSpace(scanner.Text()))
		var cmdErr error
		switch {
		case input == "q":
			return nil
		case input == "r":
			st, cmdErr = runner.Restart(ctx)
		case st.Phase == study.PhaseAwaitingReveal:
			st, cmdErr = runner.Reveal(ctx)
		case st.Phase == study.PhaseAwaitingOutcome && (input == "y" || input == "n"):
			st, cmdErr = runner.Answer(ctx, input == "y")
		default:
			continue
		}
		if cmdErr != nil {
			if st.Phase == study.PhaseError {
				return cmdErr
			}
			fmt.Fprintf(out, "%v\n", cmdErr)
		}
	}
}

func printState(out io.Writer, st study.State) {
	switch st.Phase {
	case study.PhaseComplete:
		if st.Outcome == study.OutcomeSuccess {
			fmt.Fprintf(out, "\nDeck complete: %s\n", st.DeckName)
		} else {
			fmt.Fprintf(out, "\nOut of lives: %s\n", st.DeckName)
		}
		if st.Summary != nil {
			fmt.Fprintf(out, "Correct %d, incorrect %d, accuracy %d%%\n",
				st.Summary.CorrectAnswers, st.Summary.IncorrectAnswers, st.Summary.Accuracy)
		}
	case study.PhaseAwaitingReveal:
		fmt.Fprintf(out, "\n[%s] %d left, lives %d\nQ: %s\n", st.DeckName, st.Remaining, st.Lives, st.Card.Question)
	case study.PhaseAwaitingOutcome:
		fmt.Fprintf(out, "A: %s\n", st.Card.Answer)
		if st.Card.Context != "" {
			fmt.Fprintf(out, "   (%s)\n", st.Card.Context)
		}
	}
}
