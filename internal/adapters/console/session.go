// Package console runs the interactive menu session over a line-oriented
// reader and writer.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/okian/matchdesk/internal/adapters/repository"
	"github.com/okian/matchdesk/internal/adapters/source"
	service "github.com/okian/matchdesk/internal/app"
	"github.com/okian/matchdesk/internal/domain/model"
	"github.com/okian/matchdesk/internal/domain/selector"
	"github.com/okian/matchdesk/pkg/logger"
	"github.com/okian/matchdesk/pkg/metrics"
)

// Engine is the set of operations the session drives.
type Engine interface {
	Ready(ctx context.Context) (bool, error)
	Bootstrap(ctx context.Context, professionalsPath, demandsPath string) (service.Result, error)
	Ingest(ctx context.Context, professionalsPath, demandsPath string) (service.Result, error)
	Retire(ctx context.Context, sel selector.Selector) (int, error)
	All(ctx context.Context) ([]model.Assignment, error)
	ByProfessional(ctx context.Context, name string) ([]model.Assignment, error)
	ByID(ctx context.Context, id model.ID) ([]model.Assignment, error)
	ByDueDate(ctx context.Context) ([]model.Assignment, error)
}

type command int

const (
	cmdShowAll command = iota + 1
	cmdShowProfessional
	cmdShowByDueDate
	cmdSearchID
	cmdAddDemands
	cmdCompleteDemands
	cmdExit
)

var commandNames = map[command]string{
	cmdShowAll:          "show_all",
	cmdShowProfessional: "show_professional",
	cmdShowByDueDate:    "show_by_due_date",
	cmdSearchID:         "search_id",
	cmdAddDemands:       "add_demands",
	cmdCompleteDemands:  "complete_demands",
	cmdExit:             "exit",
}

func (c command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "invalid"
}

func parseCommand(choice string) (command, error) {
	choice = strings.TrimSpace(choice)
	if len(choice) == 1 && choice[0] >= '1' && choice[0] <= '7' {
		return command(choice[0] - '0'), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidChoice, choice)
}

const mainMenu = `
Main Menu:
1. Show all matched data
2. Show specific data for a professional
3. Show demands organized by due date
4. Search for data by ID
5. Add more demands
6. Complete demands
7. Exit
`

const completionMenu = `Choose completion method:
1. Complete all demands of a specific professional
2. Complete specific demand by ID
3. Complete demands by date range
`

// Session is one interactive run against an Engine.
type Session struct {
	engine    Engine
	in        *bufio.Scanner
	lines     chan inputLine
	readOnce  sync.Once
	out       io.Writer
	printer   *message.Printer
	storePath string
	logger    logger.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithLocale sets the locale used to format counts.
func WithLocale(tag language.Tag) Option {
	return func(s *Session) {
		s.printer = message.NewPrinter(tag)
	}
}

// WithStorePath names the store in status messages.
func WithStorePath(path string) Option {
	return func(s *Session) {
		s.storePath = path
	}
}

// WithLogger sets the session logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSession returns a session reading commands from in and writing to out.
func NewSession(engine Engine, in io.Reader, out io.Writer, opts ...Option) *Session {
	s := &Session{
		engine:    engine,
		in:        bufio.NewScanner(in),
		lines:     make(chan inputLine),
		out:       out,
		printer:   message.NewPrinter(language.English),
		storePath: service.DefaultStorePath,
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run prepares the store, then serves the main menu until the user exits,
// input ends or ctx is cancelled. Failures of individual commands are
// reported to the user and the menu is shown again.
func (s *Session) Run(ctx context.Context) error {
	if err := s.prepare(ctx); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.print(mainMenu)
		choice, err := s.prompt(ctx, "Enter your choice (1-7): ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		cmd, err := parseCommand(choice)
		if err != nil {
			s.println("Invalid choice. Please enter a number between 1 and 7.")
			continue
		}
		metrics.RecordCommand(cmd.String())
		s.logger.Debug(ctx, "command selected", logger.String("command", cmd.String()))

		if cmd == cmdExit {
			s.println("Exiting the program. Goodbye!")
			return nil
		}
		if err := s.dispatch(ctx, cmd); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// prepare bootstraps the store from user-supplied sources when none exists.
// A source that cannot be read or lacks a column is reported and the paths
// are asked for again.
func (s *Session) prepare(ctx context.Context) error {
	ready, err := s.engine.Ready(ctx)
	if err != nil {
		return err
	}
	if ready {
		s.printf("Using existing database: %s\n", s.storePath)
		return nil
	}

	for {
		professionals, demands, err := s.promptSources(ctx)
		if err != nil {
			return err
		}
		res, err := s.engine.Bootstrap(ctx, professionals, demands)
		if err == nil {
			s.printf("Matching subjects saved to %s (%s, %s merged)\n",
				s.storePath,
				countLine(s.printer, res.Stats.Added, "entry", "entries"),
				s.printer.Sprintf("%d", res.Stats.Merged),
			)
			return nil
		}

		s.printf("Could not create the database: %v\n", err)
		if !errors.Is(err, source.ErrMissingColumn) && !errors.Is(err, source.ErrSourceUnreadable) {
			return err
		}
		s.logger.Warn(ctx, "bootstrap sources rejected", logger.Error(err))
		s.println("Please enter the source files again.")
	}
}

func (s *Session) dispatch(ctx context.Context, cmd command) error {
	switch cmd {
	case cmdShowAll:
		rows, err := s.engine.All(ctx)
		s.show(ctx, rows, err, "")

	case cmdShowProfessional:
		name, err := s.prompt(ctx, "Enter the professional name: ")
		if err != nil {
			return err
		}
		rows, err := s.engine.ByProfessional(ctx, name)
		s.show(ctx, rows, err, "No data found for professional: "+name)

	case cmdShowByDueDate:
		rows, err := s.engine.ByDueDate(ctx)
		s.show(ctx, rows, err, "")

	case cmdSearchID:
		id, err := s.prompt(ctx, "Enter the ID to search for: ")
		if err != nil {
			return err
		}
		rows, err := s.engine.ByID(ctx, model.ID(strings.TrimSpace(id)))
		s.show(ctx, rows, err, "No data found for ID: "+strings.TrimSpace(id))

	case cmdAddDemands:
		professionals, demands, err := s.promptSources(ctx)
		if err != nil {
			return err
		}
		res, err := s.engine.Ingest(ctx, professionals, demands)
		if err != nil {
			s.printf("Could not add demands: %v\n", err)
			return nil
		}
		s.printf("New demands added to the database (%s, %s merged).\n",
			countLine(s.printer, res.Stats.Added, "new entry", "new entries"),
			s.printer.Sprintf("%d", res.Stats.Merged),
		)

	case cmdCompleteDemands:
		return s.complete(ctx)
	}
	return nil
}

// complete runs the completion submenu.
func (s *Session) complete(ctx context.Context) error {
	s.print(completionMenu)
	choice, err := s.prompt(ctx, "Enter your choice (1-3): ")
	if err != nil {
		return err
	}
	kind, err := selector.ParseKind(choice)
	if err != nil {
		s.println("Invalid choice.")
		return nil
	}

	var (
		sel      selector.Selector
		done     string
		notFound string
	)
	switch kind {
	case selector.KindProfessional:
		name, err := s.prompt(ctx, "Enter the professional name: ")
		if err != nil {
			return err
		}
		sel = selector.ByProfessional(name)
		done = fmt.Sprintf("All demands for %s completed.", name)
		notFound = fmt.Sprintf("No demands found for %s.", name)

	case selector.KindID:
		id, err := s.prompt(ctx, "Enter the demand ID to complete: ")
		if err != nil {
			return err
		}
		id = strings.TrimSpace(id)
		sel = selector.ByID(model.ID(id))
		done = fmt.Sprintf("Demand with ID %s completed.", id)
		notFound = fmt.Sprintf("No demand found with ID %s.", id)

	case selector.KindDateRange:
		start, err := s.prompt(ctx, "Enter the start date (YYYY-MM-DD): ")
		if err != nil {
			return err
		}
		end, err := s.prompt(ctx, "Enter the end date (YYYY-MM-DD): ")
		if err != nil {
			return err
		}
		start, end = strings.TrimSpace(start), strings.TrimSpace(end)
		if sel, err = selector.ByDateRange(start, end); err != nil {
			s.printf("Invalid date range: %v\n", err)
			return nil
		}
		done = fmt.Sprintf("All demands in the date range %s to %s completed.", start, end)
		notFound = "No demands found in the specified date range."
	}

	n, err := s.engine.Retire(ctx, sel)
	switch {
	case errors.Is(err, service.ErrNoMatchFound):
		s.println(notFound)
	case err != nil:
		s.printf("Could not complete demands: %v\n", err)
	default:
		s.println("Database updated after completing demands.")
		s.printf("%s (%s)\n", done, countLine(s.printer, n, "row removed", "rows removed"))
	}
	return nil
}

func (s *Session) promptSources(ctx context.Context) (professionals, demands string, err error) {
	if professionals, err = s.prompt(ctx, "Enter the path to the professionals CSV file: "); err != nil {
		return "", "", err
	}
	if demands, err = s.prompt(ctx, "Enter the path to the demands CSV file: "); err != nil {
		return "", "", err
	}
	return strings.TrimSpace(professionals), strings.TrimSpace(demands), nil
}

// show renders rows or reports why there are none.
func (s *Session) show(ctx context.Context, rows []model.Assignment, err error, notFound string) {
	switch {
	case errors.Is(err, service.ErrEmptyStore):
		s.println("The database is empty.")
	case errors.Is(err, service.ErrNoMatchFound):
		s.println(notFound)
	case errors.Is(err, repository.ErrStoreNotFound):
		s.printf("No database found at %s.\n", s.storePath)
	case err != nil:
		s.printf("Could not read the database: %v\n", err)
	default:
		if err := renderTable(s.out, s.printer, rows); err != nil {
			s.logger.Warn(ctx, "render failed", logger.Error(err))
		}
	}
}

// inputLine is one line read from the session input, or the error that
// ended it.
type inputLine struct {
	text string
	err  error
}

// readLines feeds input lines to s.lines until input ends. It runs in its own
// goroutine so a prompt can give up on cancellation while a read is pending.
func (s *Session) readLines() {
	for s.in.Scan() {
		s.lines <- inputLine{text: s.in.Text()}
	}
	err := s.in.Err()
	if err == nil {
		err = io.EOF
	}
	s.lines <- inputLine{err: err}
	close(s.lines)
}

// prompt writes label and returns the next input line. io.EOF is returned
// once input is exhausted and ctx.Err() as soon as ctx is cancelled.
func (s *Session) prompt(ctx context.Context, label string) (string, error) {
	s.print(label)
	s.readOnce.Do(func() { go s.readLines() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-s.lines:
		if !ok {
			return "", io.EOF
		}
		return l.text, l.err
	}
}

func (s *Session) print(msg string)                  { _, _ = io.WriteString(s.out, msg) }
func (s *Session) println(msg string)                { _, _ = io.WriteString(s.out, msg+"\n") }
func (s *Session) printf(format string, args ...any) { _, _ = fmt.Fprintf(s.out, format, args...) }
