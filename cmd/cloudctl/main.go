// Command cloudctl is a minimal demo host for the command core: it
// registers a handful of example commands against a Manager, then
// either runs one line given on the command line or drops into an
// interactive REPL reading lines from stdin.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cloudcmd/cloud/caption"
	"github.com/cloudcmd/cloud/cerr"
	"github.com/cloudcmd/cloud/cloud"
	"github.com/cloudcmd/cloud/cmdcontext"
	"github.com/cloudcmd/cloud/cursor"
	"github.com/cloudcmd/cloud/flag"
	"github.com/cloudcmd/cloud/parser"
	"github.com/cloudcmd/cloud/tree"
	"github.com/cloudcmd/cloud/vtype"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	verbose bool

	rootCmd = &cobra.Command{
		Use:   "cloudctl [line]",
		Short: "Run or explore example commands against the cloud command core",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logrus.StandardLogger()
			if verbose {
				logger.SetLevel(logrus.DebugLevel)
			}

			m := buildManager()
			m.SetState(tree.Sealed)

			if len(args) > 0 {
				return runLine(logger, m, strings.Join(args, " "))
			}
			return repl(logger, m)
		},
	}
)

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	if err := rootCmd.Execute(); err != nil {
		logrus.StandardLogger().WithError(err).Error("cloudctl failed")
		os.Exit(1)
	}
}

func strParser() parser.Parser { return parser.Erase(parser.NewStringParser(parser.WordMode)) }

func intParser(r cursor.Range[int]) parser.Parser { return parser.Erase(parser.NewIntegerParser(r)) }

// buildManager registers the example commands this demo host exposes:
// "greet <name>" and "give <player> <item> [amount=1] [--silent|-s]".
func buildManager() *cloud.Manager {
	m := cloud.New(
		cloud.WithCaptionProvider(caption.MapProvider{
			"cmd.no-such-command":            "no such command: <input>",
			"argument.parse.failure.integer": "invalid number: <input>",
		}),
	)

	greet := tree.NewBuilder().LiteralStep("greet").
		Required("name", strParser()).
		Description("greet someone by name").
		Handler(func(ctx *cmdcontext.Context) error {
			name, _ := ctx.Get("name", vtype.Of[string]())
			fmt.Printf("Hello, %s!\n", name)
			return nil
		})
	if _, err := m.Register(greet); err != nil {
		logrus.WithError(err).Fatal("failed to register greet")
	}

	silent, err := flag.New("silent", []rune{'s'}, nil, flag.Single)
	if err != nil {
		logrus.WithError(err).Fatal("failed to build silent flag")
	}
	flags, err := flag.NewGroup(silent)
	if err != nil {
		logrus.WithError(err).Fatal("failed to build give flag group")
	}

	give := tree.NewBuilder().LiteralStep("give").
		Required("player", strParser()).
		Required("item", strParser()).
		Optional("amount", intParser(cursor.Range[int]{Min: 1, HasMin: true}), 1).
		FlagGroupStep(flags).
		Description("give a player an item").
		Handler(func(ctx *cmdcontext.Context) error {
			player, _ := ctx.Get("player", vtype.Of[string]())
			item, _ := ctx.Get("item", vtype.Of[string]())
			amount, _ := ctx.Get("amount", vtype.Of[int]())
			if ctx.Flags().Present("silent") {
				return nil
			}
			fmt.Printf("Gave %s %d %s\n", player, amount, item)
			return nil
		})
	if _, err := m.Register(give); err != nil {
		logrus.WithError(err).Fatal("failed to register give")
	}

	return m
}

func runLine(logger *logrus.Logger, m *cloud.Manager, line string) error {
	_, ferr := m.Execute(context.Background(), "cli", line)
	if ferr == nil {
		return nil
	}
	if msg, ok := m.Render(ferr, "cli"); ok {
		fmt.Fprintln(os.Stderr, msg)
	} else {
		fmt.Fprintln(os.Stderr, ferr.Error())
	}
	logger.WithField("kind", ferr.Kind).Debug("execution failed")
	if ferr.Kind == cerr.CommandExecution {
		return ferr
	}
	return nil
}

func repl(logger *logrus.Logger, m *cloud.Manager) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("cloudctl> type a command, or 'exit' to quit")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		if err := runLine(logger, m, line); err != nil {
			logger.WithError(err).Error("command execution failed")
		}
	}
}
