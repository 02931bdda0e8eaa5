package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/timelinetracker/backend/internal/export"
	"github.com/timelinetracker/backend/internal/models"
	"github.com/timelinetracker/backend/internal/timeline"
)

// barWidth is the number of cells the chart row is drawn with.
const barWidth = 40

var (
	errIDRequired    = errors.New("ticket id is required")
	errValueRequired = errors.New("timeframe value is required")
)

type command struct {
	usage string
	short string
	flags *flag.FlagSet
	exec  func(ctx context.Context, s *session, args []string) error
}

var commandOrder = []string{"show", "add", "edit", "rm", "timeframe", "export", "reset"}

// commands builds a fresh set of commands, so flag values never leak
// between runs.
func commands() map[string]*command {
	return map[string]*command{
		"show":      showCmd(),
		"add":       addCmd(),
		"edit":      editCmd(),
		"rm":        rmCmd(),
		"timeframe": timeframeCmd(),
		"export":    exportCmd(),
		"reset":     resetCmd(),
	}
}

func showCmd() *command {
	return &command{
		usage: "show",
		short: "Show tickets, remaining days and the chart",
		flags: flag.NewFlagSet("show", flag.ContinueOnError),
		exec: func(_ context.Context, s *session, _ []string) error {
			printTimeline(s.out, s.model.Document())
			return nil
		},
	}
}

func addCmd() *command {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	name := fs.StringP("name", "n", "", "Ticket name (required)")
	best := fs.IntP("best", "b", 0, "Best case in days (> 0)")
	worst := fs.IntP("worst", "w", 0, "Worst case in days (>= best)")
	link := fs.StringP("link", "l", "", "Optional link")

	return &command{
		usage: "add -n <name> -b <days> -w <days>",
		short: "Add a ticket",
		flags: fs,
		exec: func(_ context.Context, s *session, _ []string) error {
			t, err := s.model.AddTicket(timeline.TicketInput{Name: *name, BestCase: *best, WorstCase: *worst, Link: *link})
			if err != nil {
				return err
			}
			fmt.Fprintf(s.out, "added %d %s\n", t.ID, t.Name)
			return nil
		},
	}
}

func editCmd() *command {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	name := fs.StringP("name", "n", "", "New name")
	best := fs.IntP("best", "b", 0, "New best case in days")
	worst := fs.IntP("worst", "w", 0, "New worst case in days")
	link := fs.StringP("link", "l", "", "New link")

	return &command{
		usage: "edit <id> [flags]",
		short: "Edit a ticket; unset flags keep their value",
		flags: fs,
		exec: func(_ context.Context, s *session, args []string) error {
			id, err := parseID(args)
			if err != nil {
				return err
			}
			cur, ok := s.model.Ticket(id)
			if !ok {
				return fmt.Errorf("%w: %d", timeline.ErrTicketNotFound, id)
			}
			in := timeline.TicketInput{Name: cur.Name, BestCase: cur.BestCase, WorstCase: cur.WorstCase, Link: cur.Link}
			if fs.Changed("name") {
				in.Name = *name
			}
			if fs.Changed("best") {
				in.BestCase = *best
			}
			if fs.Changed("worst") {
				in.WorstCase = *worst
			}
			if fs.Changed("link") {
				in.Link = *link
			}
			t, err := s.model.EditTicket(id, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(s.out, "updated %d %s\n", t.ID, t.Name)
			return nil
		},
	}
}

func rmCmd() *command {
	return &command{
		usage: "rm <id>",
		short: "Delete a ticket",
		flags: flag.NewFlagSet("rm", flag.ContinueOnError),
		exec: func(_ context.Context, s *session, args []string) error {
			id, err := parseID(args)
			if err != nil {
				return err
			}
			if !s.model.DeleteTicket(id) {
				return fmt.Errorf("%w: %d", timeline.ErrTicketNotFound, id)
			}
			fmt.Fprintf(s.out, "deleted %d\n", id)
			return nil
		},
	}
}

func timeframeCmd() *command {
	return &command{
		usage: "timeframe <days>",
		short: "Set the total timeframe in days",
		flags: flag.NewFlagSet("timeframe", flag.ContinueOnError),
		exec: func(_ context.Context, s *session, args []string) error {
			if len(args) == 0 {
				return errValueRequired
			}
			s.model.SetTimeframe(args[0])
			fmt.Fprintf(s.out, "timeframe %s (%s)\n", args[0], export.Days(models.Timeframe(args[0]).Days()))
			return nil
		},
	}
}

func exportCmd() *command {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	format := fs.StringP("format", "f", "csv", "csv or xlsx")
	out := fs.StringP("out", "o", "", "Output file; '-' for stdout (default: timeline.<format>)")

	return &command{
		usage: "export [-f csv|xlsx] [-o file]",
		short: "Export the timeline as a spreadsheet",
		flags: fs,
		exec: func(_ context.Context, s *session, _ []string) error {
			f, err := export.ParseFormat(*format)
			if err != nil {
				return err
			}
			doc := s.model.Document()
			if *out == "-" {
				return export.Write(s.out, f, doc)
			}
			path := *out
			if path == "" {
				path = f.Filename()
			}
			file, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := export.Write(file, f, doc); err != nil {
				_ = file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			fmt.Fprintf(s.out, "wrote %s\n", path)
			return nil
		},
	}
}

func resetCmd() *command {
	return &command{
		usage: "reset",
		short: "Delete the stored timeline and start over",
		flags: flag.NewFlagSet("reset", flag.ContinueOnError),
		exec: func(ctx context.Context, s *session, _ []string) error {
			if err := s.model.Reset(ctx); err != nil {
				return err
			}
			fmt.Fprintln(s.out, "timeline reset")
			return nil
		},
	}
}

func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, errIDRequired
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ticket id %q", args[0])
	}
	return id, nil
}

func printTimeline(w io.Writer, doc models.Document) {
	days := doc.Timeframe.Days()
	fmt.Fprintf(w, "Timeframe: %s\n", export.Days(days))

	if len(doc.Tickets) == 0 {
		fmt.Fprintln(w, "No tickets yet.")
	} else {
		segments := timeline.SegmentsFor(doc)
		offset := 0.0
		for i, t := range doc.Tickets {
			seg := segments[i]
			fmt.Fprintf(w, "%-14d %-24s %8s %8s  %s\n", t.ID, truncate(t.Name, 24), export.Days(t.BestCase), export.Days(t.WorstCase), bar(offset, seg))
			if t.Link != "" {
				fmt.Fprintf(w, "%15s%s\n", "", t.Link)
			}
			offset += seg.Width()
		}
	}

	r := timeline.RemainingFor(doc)
	fmt.Fprintf(w, "Remaining: %s best case, %s worst case\n", export.Days(r.BestCase), export.Days(r.WorstCase))
	if r.WorstCase < 0 {
		fmt.Fprintf(w, "Worst case runs %s over the timeframe.\n", export.Days(-r.WorstCase))
	}
}

// bar draws one ticket on the shared row: solid cells for the best case,
// shaded cells for the spread up to the worst case.
func bar(offset float64, seg timeline.Segment) string {
	start := cells(offset)
	solid := cells(offset+seg.Solid) - start
	light := cells(offset+seg.Width()) - start - solid
	end := start + solid + light
	if end > barWidth {
		end = barWidth
	}
	return "|" + strings.Repeat(" ", start) + strings.Repeat("█", solid) + strings.Repeat("░", light) + strings.Repeat(" ", barWidth-end) + "|"
}

func cells(fraction float64) int {
	n := int(math.Round(fraction * barWidth))
	if n < 0 {
		return 0
	}
	if n > barWidth {
		return barWidth
	}
	return n
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
