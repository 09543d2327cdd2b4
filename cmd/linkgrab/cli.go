package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/linkgrab/internal/config"
	"github.com/hpungsan/linkgrab/internal/errors"
	"github.com/hpungsan/linkgrab/internal/extract"
	"github.com/hpungsan/linkgrab/internal/session"
	"github.com/hpungsan/linkgrab/internal/view"
	"github.com/hpungsan/linkgrab/internal/web"
)

// appDeps holds what the commands need at run time.
type appDeps struct {
	store  *session.Store
	cfg    *config.Config
	logger *log.Logger
}

// fetchResult is the JSON shape printed by fetch --json.
type fetchResult struct {
	*session.FetchOutput
	Status session.Status `json:"status"`
}

// newCLIApp creates the CLI application with all commands.
// deps may be nil when only help or version output is needed.
func newCLIApp(deps *appDeps) *cli.App {
	if deps == nil {
		deps = &appDeps{cfg: config.DefaultConfig()}
	}
	app := &cli.App{
		Name:    "linkgrab",
		Usage:   "Fetch a page and keep the links it contains",
		Version: Version,
		Commands: []*cli.Command{
			fetchCmd(deps),
			showCmd(deps),
			clearCmd(deps),
			extractCmd(deps),
			serveCmd(deps),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// fetchCmd creates the fetch command.
func fetchCmd(deps *appDeps) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Fetch a URL, extract its links and save them as the current session",
		ArgsUsage: "<url>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print the result as JSON"},
		},
		Action: func(c *cli.Context) error {
			raw := c.Args().First()

			if c.Bool("json") {
				m := view.NewModel()
				out, err := deps.store.FetchAndStore(c.Context, m, raw)
				if err != nil {
					return outputError(err)
				}
				return outputJSON(fetchResult{FetchOutput: out, Status: m.Status})
			}

			if _, err := deps.store.FetchAndStore(c.Context, view.NewConsole(os.Stdout, os.Stderr), raw); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// showCmd creates the show command.
func showCmd(deps *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Show the saved session without fetching",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print the session as JSON"},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("json") {
				m := view.NewModel()
				if err := deps.store.LoadState(c.Context, m); err != nil {
					return outputError(err)
				}
				if m.Links == nil {
					m.Links = []string{}
				}
				return outputJSON(m)
			}

			console := view.NewConsole(os.Stdout, os.Stderr)
			if err := deps.store.LoadState(c.Context, &inputEcho{Console: console}); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// clearCmd creates the clear command.
func clearCmd(deps *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Wipe the saved session",
		Action: func(c *cli.Context) error {
			if err := deps.store.ClearAll(c.Context, view.NewConsole(os.Stdout, os.Stderr)); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// extractCmd creates the extract command.
func extractCmd(deps *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "extract",
		Usage: "Extract links from text piped via stdin (nothing is fetched or saved)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "base", Aliases: []string{"b"}, Usage: "Absolute URL used to resolve relative hrefs"},
			&cli.BoolFlag{Name: "json", Usage: "Print the links as JSON"},
		},
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("text must be piped via stdin"))
			}

			text, err := readStdin(deps.cfg.MaxBodyBytes)
			if err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}

			links := extract.Links(text, c.String("base"))
			if c.Bool("json") {
				return outputJSON(map[string]any{"links": links, "count": len(links)})
			}

			view.NewConsole(os.Stdout, os.Stderr).RenderLinks(links)
			return nil
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(deps *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the link panel over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8080, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv, err := web.NewServer(deps.store, deps.logger, Version, c.String("bind"), c.Int("port"))
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if err := web.Run(srv, deps.logger); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// inputEcho prints the restored input above the console rows.
type inputEcho struct {
	*view.Console
}

func (e *inputEcho) SetInput(value string) {
	if value != "" {
		fmt.Fprintf(os.Stdout, "URL: %s\n", value)
	}
}

// Helper functions

// outputJSON writes JSON output to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var lErr *errors.LinkError
	if stderrors.As(err, &lErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", lErr.Code, lErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin. A positive limit caps the size.
func readStdin(limit int64) (string, error) {
	var r io.Reader = os.Stdin
	if limit > 0 {
		r = io.LimitReader(os.Stdin, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if limit > 0 && int64(len(data)) > limit {
		return "", fmt.Errorf("input exceeds %d bytes", limit)
	}
	return strings.TrimSpace(string(data)), nil
}
