package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"

	"http-relay-go/internal/client"
	"http-relay-go/internal/composer"
	"http-relay-go/internal/config"
	"http-relay-go/internal/model"
	"http-relay-go/internal/output"
	"http-relay-go/internal/relay"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// CLI holds relayctl arguments parsed by Kong.
type CLI struct {
	Method  string           `kong:"arg,help='HTTP method: GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS.'"`
	URL     string           `kong:"arg,name='url',help='Absolute target URL.'"`
	Header  []string         `kong:"short='H',sep='none',help='Request header as Name:value. Repeatable.'"`
	Data    string           `kong:"short='d',help='Request body (JSON). Use @- to read from stdin.'"`
	Relay   string           `kong:"default='http://localhost:3000',env='RELAY_URL',help='Relay server base URL.'"`
	Direct  bool             `kong:"help='Perform the call in-process instead of through a relay server.'"`
	Timeout int              `kong:"name='timeout-ms',help='Call timeout in milliseconds, 0 for none.'"`
	Color   string           `kong:"default='auto',enum='auto,always,never',help='Colorize output: auto|always|never.'"`
	Headers bool             `kong:"default='true',negatable,help='Print response headers.'"`
	Version kong.VersionFlag `kong:"help='Print version and exit.'"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("relayctl"),
		kong.Description("Compose a request, send it through the HTTP relay and print the result."),
		kong.Vars{"version": fmt.Sprintf("%s (%s, %s)", version, commit, date)},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ok, err := run(ctx, &cli, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "relayctl: %v\n", err)
		os.Exit(2)
	}
	if !ok {
		os.Exit(1)
	}
}

// run submits the composed request and prints its Result. It reports false
// when the Result is a Failure.
func run(ctx context.Context, cli *CLI, stdin io.Reader, stdout *os.File) (bool, error) {
	form, err := buildForm(cli, stdin)
	if err != nil {
		return false, err
	}

	c := composer.New(newInvoker(cli))
	st := c.Submit(ctx, form)

	w := bufio.NewWriter(stdout)
	defer w.Flush()
	printer := output.NewPrinter(w, output.Options{
		EnableColor: colorEnabled(cli.Color, stdout),
		HideHeaders: !cli.Headers,
	})
	if err := printer.Print(st.Last); err != nil {
		return false, err
	}

	_, failed := st.Last.(*model.Failure)
	return !failed, nil
}

func newInvoker(cli *CLI) model.Invoker {
	timeout := time.Duration(cli.Timeout) * time.Millisecond
	if !cli.Direct {
		return composer.NewRemoteInvoker(cli.Relay, timeout)
	}

	cfg := &config.Config{Relay: config.RelayConfig{TimeoutMs: cli.Timeout, IdleConnections: 1}}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	return relay.New(client.NewTargetClient(cfg, logger, nil), relay.OptionsFromConfig(cfg), logger, nil)
}

func colorEnabled(mode string, f *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
}
