package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sloppy/scanreport-console/internal/config"
	"github.com/sloppy/scanreport-console/internal/db"
	"github.com/sloppy/scanreport-console/internal/export"
	"github.com/sloppy/scanreport-console/internal/filters"
	"github.com/sloppy/scanreport-console/internal/listctl"
	"github.com/sloppy/scanreport-console/internal/metrics"
	"github.com/sloppy/scanreport-console/internal/rest"
	"github.com/sloppy/scanreport-console/internal/web"
)

const defaultConfigPath = "config.yaml"

// stdin answers the delete confirmation; tests replace it.
var stdin io.Reader = os.Stdin

func usage() string {
	return "Usage: scanreport-console <serve|list|logs|delete|export|journal>"
}

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	if len(args) < 2 {
		fmt.Fprintln(out, usage())
		return 1
	}

	command := strings.ToLower(args[1])
	switch command {
	case "serve":
		return runServe(args[2:], out, errOut)
	case "list":
		return runList(args[2:], out, errOut)
	case "logs":
		return runLogs(args[2:], out, errOut)
	case "delete":
		return runDelete(args[2:], out, errOut)
	case "export":
		return runExport(args[2:], out, errOut)
	case "journal":
		return runJournal(args[2:], out, errOut)
	case "help", "-h", "--help":
		fmt.Fprintln(out, usage())
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n", command)
		fmt.Fprintln(out, usage())
		return 1
	}
}

func configPathDefault() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return defaultConfigPath
}

func newLogger(errOut io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))
}

func newClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*rest.Client, error) {
	return rest.New(rest.Options{
		BaseURL:  cfg.REST.BaseURL,
		Username: cfg.REST.Username,
		Password: cfg.REST.Password,
		Timeout:  cfg.REST.Timeout,
		Logger:   logger,
		Metrics:  m,
	})
}

func runServe(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(errOut)
	configPath := fs.String("config", configPathDefault(), "path to config file")
	port := fs.Int("port", 0, "port to listen on (overrides config)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(errOut, "load config: %v\n", err)
		return 1
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	loc, err := cfg.Location()
	if err != nil {
		fmt.Fprintf(errOut, "display time zone: %v\n", err)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(errOut, nil))
	m := metrics.New()
	client, err := newClient(cfg, logger, m)
	if err != nil {
		fmt.Fprintf(errOut, "rest client: %v\n", err)
		return 1
	}
	database, err := db.Open(cfg.Journal.Path)
	if err != nil {
		fmt.Fprintf(errOut, "open db: %v\n", err)
		return 1
	}
	defer database.Close()

	server := web.NewServer(client, database, web.Options{
		Logger:         logger,
		Metrics:        m,
		Location:       loc,
		DefaultLimit:   cfg.List.Limit,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		fmt.Fprintf(out, "listening on http://localhost:%d (backend %s)\n", cfg.Server.Port, client.BaseURL())
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(errOut, "serve: %v\n", err)
			return 1
		}
		return 0
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(errOut, "shutdown: %v\n", err)
		return 1
	}
	return 0
}

// listFlags registers the list query flags shared by list and export.
type listFlags struct {
	configPath *string
	search     *string
	limit      *int
	offset     *int
	orderBy    *string
	order      *string
	verbose    *bool
}

func registerListFlags(fs *flag.FlagSet) listFlags {
	return listFlags{
		configPath: fs.String("config", configPathDefault(), "path to config file"),
		search:     fs.String("search", "", "backend search expression (_s)"),
		limit:      fs.Int("limit", 0, "page size (defaults to list.limit from config)"),
		offset:     fs.Int("offset", 0, "first item offset"),
		orderBy:    fs.String("order-by", listctl.DefaultOrderBy, "sort property"),
		order:      fs.String("order", listctl.DefaultOrder, "sort direction (asc|desc)"),
		verbose:    fs.Bool("v", false, "verbose logging"),
	}
}

// refreshList runs one list refresh and returns the resulting state.
func refreshList(ctx context.Context, cfg *config.Config, lf listFlags, logger *slog.Logger) (listctl.State, error) {
	client, err := newClient(cfg, logger, nil)
	if err != nil {
		return listctl.State{}, fmt.Errorf("rest client: %w", err)
	}
	limit := *lf.limit
	if limit <= 0 {
		limit = cfg.List.Limit
	}
	state := listctl.NewState(limit)
	state.Query.SearchParam = *lf.search
	state.Query.SetOffset(*lf.offset)
	state.Query.OrderBy = *lf.orderBy
	state.Query.Order = strings.ToLower(*lf.order)

	expired := false
	ctl := listctl.New(client, state, listctl.Options{
		Session: listctl.SessionFunc(func(context.Context) { expired = true }),
		Logger:  logger,
	})
	_, err = ctl.Refresh(ctx)
	if expired {
		return listctl.State{}, errors.New("session expired: check rest.username and rest.password")
	}
	if err != nil {
		return listctl.State{}, err
	}
	return ctl.Snapshot(), nil
}

func runList(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(errOut)
	lf := registerListFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 1
	}
	cfg, format, ok := loadDisplayConfig(*lf.configPath, errOut)
	if !ok {
		return 1
	}

	state, err := refreshList(context.Background(), cfg, lf, newLogger(errOut, *lf.verbose))
	if err != nil {
		fmt.Fprintf(errOut, "list: %v\n", err)
		return 1
	}
	if err := export.ExportListText(state, format, out); err != nil {
		fmt.Fprintf(errOut, "write list: %v\n", err)
		return 1
	}
	return 0
}

func runExport(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(errOut)
	lf := registerListFlags(fs)
	formatName := fs.String("format", "json", "export format (json|csv)")
	outputPath := fs.String("o", "", "output file (defaults to stdout)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(errOut, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return 1
	}
	kind := strings.ToLower(*formatName)
	if kind != "json" && kind != "csv" {
		fmt.Fprintf(errOut, "unknown export format: %s\n", *formatName)
		return 1
	}
	cfg, format, ok := loadDisplayConfig(*lf.configPath, errOut)
	if !ok {
		return 1
	}

	state, err := refreshList(context.Background(), cfg, lf, newLogger(errOut, *lf.verbose))
	if err != nil {
		fmt.Fprintf(errOut, "export: %v\n", err)
		return 1
	}

	w := out
	if *outputPath != "" {
		file, err := os.Create(*outputPath)
		if err != nil {
			fmt.Fprintf(errOut, "create output: %v\n", err)
			return 1
		}
		defer file.Close()
		w = file
	}

	switch kind {
	case "json":
		err = export.ExportListJSON(state, time.Now(), w)
	case "csv":
		err = export.ExportReportsCSV(state.Items, format, w)
	}
	if err != nil {
		fmt.Fprintf(errOut, "export %s: %v\n", kind, err)
		return 1
	}
	if *outputPath != "" {
		fmt.Fprintf(out, "exported %s (%s)\n", *outputPath, kind)
	}
	return 0
}

func runLogs(args []string, out, errOut io.Writer) int {
	configPath, remaining, err := extractFlag(args, "config", configPathDefault())
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if len(remaining) != 1 {
		fmt.Fprintln(errOut, "logs requires a scan report id")
		return 1
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(errOut, "load config: %v\n", err)
		return 1
	}
	client, err := newClient(cfg, newLogger(errOut, false), nil)
	if err != nil {
		fmt.Fprintf(errOut, "rest client: %v\n", err)
		return 1
	}

	logs, err := client.Logs(context.Background(), remaining[0])
	if err != nil {
		if errors.Is(err, rest.ErrSessionExpired) {
			fmt.Fprintln(errOut, "logs: session expired: check rest.username and rest.password")
			return 1
		}
		fmt.Fprintf(errOut, "logs: %v\n", err)
		return 1
	}
	if logs.Text == "" {
		fmt.Fprintf(errOut, "no logs recorded for %s\n", remaining[0])
		return 0
	}
	fmt.Fprintln(out, strings.TrimRight(logs.Text, "\n"))
	return 0
}

// promptConfirmer asks on the terminal and accepts y or yes.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func (p promptConfirmer) Confirm(_ context.Context, prompt string) bool {
	fmt.Fprintf(p.out, "%s [y/N] ", prompt)
	answer, err := p.in.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func runDelete(args []string, out, errOut io.Writer) int {
	configPath, remaining, err := extractFlag(args, "config", configPathDefault())
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	assumeYes := false
	var positional []string
	for _, arg := range remaining {
		if arg == "--yes" || arg == "-y" {
			assumeYes = true
			continue
		}
		positional = append(positional, arg)
	}
	if len(positional) != 1 {
		fmt.Fprintln(errOut, "delete requires a scan report id")
		return 1
	}
	id := positional[0]

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(errOut, "load config: %v\n", err)
		return 1
	}
	logger := newLogger(errOut, false)
	client, err := newClient(cfg, logger, nil)
	if err != nil {
		fmt.Fprintf(errOut, "rest client: %v\n", err)
		return 1
	}
	database, err := db.Open(cfg.Journal.Path)
	if err != nil {
		fmt.Fprintf(errOut, "open db: %v\n", err)
		return 1
	}
	defer database.Close()

	var confirm listctl.Confirmer = promptConfirmer{in: bufio.NewReader(stdin), out: out}
	if assumeYes {
		confirm = listctl.ConfirmFunc(func(context.Context, string) bool { return true })
	}

	expired := false
	ctl := listctl.New(client, listctl.NewState(cfg.List.Limit), listctl.Options{
		Session: listctl.SessionFunc(func(context.Context) { expired = true }),
		Logger:  logger,
	})
	result, err := ctl.Delete(context.Background(), rest.ScanReport{ID: id}, confirm)
	if result != listctl.DeleteCancelled {
		detail := ""
		if err != nil {
			detail = err.Error()
		}
		if _, recErr := database.RecordAction(db.ActionDelete, id, result.String(), detail); recErr != nil {
			logger.Error("record journal entry", "err", recErr)
		}
	}
	if expired {
		fmt.Fprintln(errOut, "delete: session expired: check rest.username and rest.password")
		return 1
	}

	switch result {
	case listctl.DeleteRemoved:
		fmt.Fprintf(out, "removed scan report %s\n", id)
	case listctl.DeleteAlreadyGone:
		fmt.Fprintf(out, "scan report %s was already removed\n", id)
	case listctl.DeleteCancelled:
		fmt.Fprintln(out, "cancelled")
		return 0
	default:
		fmt.Fprintf(errOut, "delete: %v\n", err)
		return 1
	}
	if err != nil {
		fmt.Fprintf(errOut, "refresh after delete: %v\n", err)
	}
	return 0
}

func runJournal(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("journal", flag.ContinueOnError)
	fs.SetOutput(errOut)
	configPath := fs.String("config", configPathDefault(), "path to config file")
	limit := fs.Int("limit", 50, "number of entries")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	cfg, format, ok := loadDisplayConfig(*configPath, errOut)
	if !ok {
		return 1
	}
	database, err := db.Open(cfg.Journal.Path)
	if err != nil {
		fmt.Fprintf(errOut, "open db: %v\n", err)
		return 1
	}
	defer database.Close()

	entries, err := database.ListJournal(*limit)
	if err != nil {
		fmt.Fprintf(errOut, "list journal: %v\n", err)
		return 1
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\n", format.Timestamp(e.CreatedAt), e.Action, e.ReportID, e.Result, e.Detail)
	}
	return 0
}

func loadDisplayConfig(path string, errOut io.Writer) (*config.Config, filters.Formatter, bool) {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(errOut, "load config: %v\n", err)
		return nil, filters.Formatter{}, false
	}
	loc, err := cfg.Location()
	if err != nil {
		fmt.Fprintf(errOut, "display time zone: %v\n", err)
		return nil, filters.Formatter{}, false
	}
	return cfg, filters.Formatter{Location: loc}, true
}

// extractFlag finds a string flag (e.g., --config value) anywhere in args and returns its value and remaining args.
func extractFlag(args []string, name string, defaultVal string) (string, []string, error) {
	val := defaultVal
	var remaining []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--"+name || arg == "-"+name {
			if i+1 >= len(args) {
				return "", nil, fmt.Errorf("%s flag requires a value", arg)
			}
			val = args[i+1]
			i++
			continue
		}
		remaining = append(remaining, arg)
	}
	return val, remaining, nil
}
