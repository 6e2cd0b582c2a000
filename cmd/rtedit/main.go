package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/term"

	"rtedit/internal/config"
	"rtedit/pkg/editor"
)

// env is the state shared by all subcommands
type env struct {
	cfg config.Config
	log *zap.Logger
	ed  *editor.Editor
}

type envKey struct{}

func envFromContext(ctx context.Context) *env {
	if e, ok := ctx.Value(envKey{}).(*env); ok {
		return e
	}
	return &env{cfg: config.Default(), log: zap.NewNop()}
}

// initializeAppContext loads the configuration and prepares logging after
// the command line has been parsed
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	e := envFromContext(ctx)

	configFile := cmd.String("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		cfg.Logging.Level = "debug"
	}
	e.cfg = cfg
	if e.log, err = e.cfg.Logging.Prepare(); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	e.ed = editor.New(e.cfg, e.log)

	e.log.Debug("Program started", zap.Strings("args", os.Args), zap.String("runtime", runtime.Version()))
	if len(configFile) == 0 {
		e.log.Debug("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, _ *cli.Command) error {
	e := envFromContext(ctx)
	if e.log != nil {
		e.log.Debug("Program ended")
		// stderr cannot always be synced, nothing useful to do about it
		_ = e.log.Sync()
	}
	return nil
}

var errWasHandled bool

func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	if e := envFromContext(ctx); e.log != nil && err != nil {
		e.log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.WithValue(context.Background(), envKey{}, &env{}), os.Interrupt, syscall.SIGTERM)

	inputUsage := fmt.Sprintf(`%s
SOURCE:
    HTML file to read, "-" or nothing reads STDIN. The selection is written
    into the text with markers: "[" and "]" around a range, "|" for a caret.
`, cli.CommandHelpTemplate)

	app := &cli.Command{
		Name:            "rtedit",
		Usage:           "applies rich text editing commands to HTML documents",
		Version:         runtime.Version(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "log every command phase"},
		},
		Commands: []*cli.Command{
			{
				Name:         "exec",
				Usage:        "Runs a formatting command on the marked selection",
				OnUsageError: usageErrorHandler,
				Action:       runExec,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "action", Aliases: []string{"a"}, Value: editor.Tag.String(),
						Usage: "command `NAME` (tag, firstlevel, plusindent, minusindent, image, link)"},
					&cli.StringSliceFlag{Name: "tag", Aliases: []string{"t"}, Usage: "tag `NAME` to apply, may be repeated (ul --tag li)"},
					&cli.StringFlag{Name: "class", Usage: "class attribute for new elements"},
					&cli.StringFlag{Name: "href", Usage: "link target for the link action"},
					&cli.StringFlag{Name: "image", Usage: "image source for the image action"},
					&cli.BoolFlag{Name: "diff", Usage: "print a diff against the input instead of the result"},
				},
				ArgsUsage:          "[SOURCE]",
				CustomHelpTemplate: inputUsage,
			},
			{
				Name:         "delete",
				Usage:        "Handles a delete key at the marked selection",
				OnUsageError: usageErrorHandler,
				Action:       runDelete,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "forward", Aliases: []string{"f"}, Usage: "delete forward instead of backward"},
					&cli.StringFlag{Name: "key", Aliases: []string{"k"}, Usage: "key that was pressed, typed at the join when printable"},
					&cli.BoolFlag{Name: "diff", Usage: "print a diff against the input instead of the result"},
				},
				ArgsUsage:          "[SOURCE]",
				CustomHelpTemplate: inputUsage,
			},
			{
				Name:               "tags",
				Usage:              "Lists the tags shared by the whole marked selection",
				OnUsageError:       usageErrorHandler,
				Action:             runTags,
				ArgsUsage:          "[SOURCE]",
				CustomHelpTemplate: inputUsage,
			},
			{
				Name:               "enabled",
				Usage:              "Reports which commands would change the marked selection",
				OnUsageError:       usageErrorHandler,
				Action:             runEnabled,
				ArgsUsage:          "[SOURCE]",
				CustomHelpTemplate: inputUsage,
			},
			{
				Name:               "normalize",
				Usage:              "Rewrites a document into canonical form",
				OnUsageError:       usageErrorHandler,
				Action:             runNormalize,
				ArgsUsage:          "[SOURCE]",
				CustomHelpTemplate: inputUsage,
			},
			{
				Name:         "dumpconfig",
				Usage:        "Dumps either default or actual configuration (YAML)",
				OnUsageError: usageErrorHandler,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default configuration"},
				},
				Action: outputConfiguration,
			},
		},
	}

	var err error
	defer func() {
		stop()
		if err != nil {
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

// readSource returns the document named by the first argument or STDIN
func readSource(cmd *cli.Command) (string, error) {
	src := cmd.Args().Get(0)
	if src == "" || src == "-" {
		if src == "" && term.IsTerminal(int(os.Stdin.Fd())) {
			return "", errors.New("no input source has been specified")
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("unable to read STDIN: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("unable to read source '%s': %w", src, err)
	}
	return string(data), nil
}

func parseMarked(ctx context.Context, cmd *cli.Command) (*env, *editor.Document, string, error) {
	e := envFromContext(ctx)
	if cmd.Args().Len() > 1 {
		e.log.Warn("Malformed command line, too many sources", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}
	content, err := readSource(cmd)
	if err != nil {
		return nil, nil, "", err
	}
	doc, err := e.ed.ParseMarked(content)
	if err != nil {
		return nil, nil, "", err
	}
	before, err := doc.MarkedHTML()
	if err != nil {
		return nil, nil, "", err
	}
	return e, doc, before, nil
}

func runExec(ctx context.Context, cmd *cli.Command) error {
	e, doc, before, err := parseMarked(ctx, cmd)
	if err != nil {
		return err
	}
	action, err := editor.ParseAction(cmd.String("action"))
	if err != nil {
		return err
	}
	c := editor.Command{Action: action, Tags: cmd.StringSlice("tag")}
	for _, a := range []struct {
		flag string
		dst  **string
	}{
		{"class", &c.Attributes.Class},
		{"href", &c.Attributes.Href},
		{"image", &c.Attributes.Image},
	} {
		if cmd.IsSet(a.flag) {
			v := cmd.String(a.flag)
			*a.dst = &v
		}
	}

	if !e.ed.ExecuteCommand(doc, c) {
		e.log.Info("Command changed nothing", zap.Stringer("action", action), zap.Strings("tags", c.Tags))
	}
	return writeResult(cmd, doc, before)
}

func runDelete(ctx context.Context, cmd *cli.Command) error {
	e, doc, before, err := parseMarked(ctx, cmd)
	if err != nil {
		return err
	}
	dir := editor.Backward
	if cmd.Bool("forward") {
		dir = editor.Forward
	}
	if !e.ed.Delete(doc, dir, cmd.String("key")) {
		e.log.Info("Delete changed nothing", zap.Stringer("direction", dir))
	}
	return writeResult(cmd, doc, before)
}

func writeResult(cmd *cli.Command, doc *editor.Document, before string) error {
	after, err := doc.MarkedHTML()
	if err != nil {
		return err
	}
	if cmd.Bool("diff") {
		diff := editor.Diff
		if term.IsTerminal(int(os.Stdout.Fd())) {
			diff = editor.ColorDiff
		}
		_, err = fmt.Fprintln(os.Stdout, diff(before, after))
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, after)
	return err
}

func runTags(ctx context.Context, cmd *cli.Command) error {
	e, doc, _, err := parseMarked(ctx, cmd)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, strings.Join(e.ed.SharedTags(doc), " "))
	return err
}

func runEnabled(ctx context.Context, cmd *cli.Command) error {
	e, doc, _, err := parseMarked(ctx, cmd)
	if err != nil {
		return err
	}
	for _, a := range editor.Actions() {
		if _, err := fmt.Fprintf(os.Stdout, "%-12s %t\n", a, e.ed.IsOperationEnabled(doc, a)); err != nil {
			return err
		}
	}
	return nil
}

func runNormalize(ctx context.Context, cmd *cli.Command) error {
	e := envFromContext(ctx)
	content, err := readSource(cmd)
	if err != nil {
		return err
	}
	doc, err := e.ed.ParseMarked(content)
	if errors.Is(err, editor.ErrNoMarkers) {
		doc, err = e.ed.Parse(content)
	}
	if err != nil {
		return err
	}
	e.ed.Normalize(doc)
	out, err := doc.MarkedHTML()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, out)
	return err
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {
	e := envFromContext(ctx)

	cfg, state := e.cfg, "actual"
	if cmd.Bool("default") {
		cfg, state = config.Default(), "default"
	}
	data, err := config.Dump(cfg)
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}
	e.log.Debug("Outputing configuration", zap.String("state", state))

	if _, err = os.Stdout.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
