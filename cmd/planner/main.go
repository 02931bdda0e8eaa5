// Command planner is a terminal client for the timeline API. It keeps a
// generated identifier on disk and edits the timeline stored for it.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/timelinetracker/backend/internal/client"
	"github.com/timelinetracker/backend/internal/identity"
	"github.com/timelinetracker/backend/internal/timeline"
)

const defaultAPI = "http://localhost:8080/api/timeline"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := map[string]string{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}

	os.Exit(run(ctx, os.Stdout, os.Stderr, os.Args[1:], env))
}

// session is what every command works against.
type session struct {
	out    io.Writer
	model  *timeline.Model
	client *client.Client

	mu       sync.Mutex
	saveErrs []error
}

func (s *session) recordSaveError(err error) {
	s.mu.Lock()
	s.saveErrs = append(s.saveErrs, err)
	s.mu.Unlock()
}

// close flushes pending saves and reports the first one that failed.
func (s *session) close() error {
	s.model.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.saveErrs) > 0 {
		return fmt.Errorf("save timeline: %w", s.saveErrs[0])
	}
	return nil
}

func run(ctx context.Context, stdout, stderr io.Writer, args []string, env map[string]string) int {
	api := env["TIMELINE_API_URL"]
	if api == "" {
		api = defaultAPI
	}

	global := flag.NewFlagSet("planner", flag.ContinueOnError)
	global.SetInterspersed(false)
	global.SetOutput(&strings.Builder{})
	flagAPI := global.String("api", api, "Timeline API endpoint")
	flagIDFile := global.String("id-file", "", "File holding the user identifier (default: user config dir)")
	flagTimeframe := global.String("default-timeframe", timeline.DefaultTimeframe, "Timeframe for a timeline with nothing stored yet")
	flagLogLevel := global.String("log-level", "warn", "Log level for background saves")
	flagHelp := global.BoolP("help", "h", false, "Show help")

	if err := global.Parse(args); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		printUsage(stderr, global)
		return 1
	}
	rest := global.Args()
	if *flagHelp || len(rest) == 0 {
		printUsage(stdout, global)
		return 0
	}

	cmd, ok := commands()[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "error: unknown command %q\n", rest[0])
		printUsage(stderr, global)
		return 1
	}

	fs := cmd.flags
	fs.SetOutput(&strings.Builder{})
	if err := fs.Parse(rest[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printCommandHelp(stdout, cmd, fs)
			return 0
		}
		fmt.Fprintln(stderr, "error:", err)
		printCommandHelp(stderr, cmd, fs)
		return 1
	}

	level, err := zerolog.ParseLevel(*flagLogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.WarnLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	idPath := *flagIDFile
	if idPath == "" {
		if idPath, err = identity.DefaultPath(); err != nil {
			fmt.Fprintln(stderr, "error:", err)
			return 1
		}
	}
	userID, err := identity.LoadOrCreate(idPath)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	logger.Debug().Str("user_id", userID).Str("api", *flagAPI).Msg("session")

	s := &session{out: stdout, client: client.New(*flagAPI)}
	s.model, err = timeline.Open(ctx, s.client, userID, timeline.Options{
		Logger:           logger,
		OnSaveError:      s.recordSaveError,
		DefaultTimeframe: *flagTimeframe,
	})
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	execErr := cmd.exec(ctx, s, fs.Args())
	closeErr := s.close()
	if err := errors.Join(execErr, closeErr); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer, global *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: planner [global flags] <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	all := commands()
	for _, name := range commandOrder {
		c := all[name]
		fmt.Fprintf(w, "  %-34s %s\n", c.usage, c.short)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags:")
	var buf strings.Builder
	global.SetOutput(&buf)
	global.PrintDefaults()
	global.SetOutput(&strings.Builder{})
	fmt.Fprint(w, buf.String())
}

func printCommandHelp(w io.Writer, c *command, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: planner", c.usage)
	fmt.Fprintln(w)
	fmt.Fprintln(w, c.short)
	if fs.HasFlags() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		var buf strings.Builder
		fs.SetOutput(&buf)
		fs.PrintDefaults()
		fmt.Fprint(w, buf.String())
	}
}
