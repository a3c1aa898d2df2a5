package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/stampver/cli/cmd"
	"github.com/ardnew/stampver/pkg"
)

// CLI is the top-level command-line interface for stampver.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Script  string           `help:"Version script; searched for from the working directory upward when unset" name:"script" short:"s" type:"path"`
	Version kong.VersionFlag `help:"Print version and exit"                                                      short:"V"`

	Run    cmd.Run    `cmd:"" default:"withargs" help:"Run an operation and stamp the targets"`
	Vars   cmd.Vars   `cmd:""                    help:"Print the run variables"`
	Fmt    cmd.Fmt    `cmd:""                    help:"Reformat the version script"`
	Init   cmd.Init   `cmd:""                    help:"Write a starter version script"`
	Config cmd.Config `cmd:""                    help:"Save the current flags as configured defaults"`
}

// Run executes the stampver CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		"version":            pkg.Version(),
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Boolean logger flags do not pass through a TextUnmarshaler, so scan
	// for them before kong reports anything.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve(baseConfig), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithScript(ctx, cli.Script)

	cli.Log.start(ctx)

	// No-op unless built with tag pprof and a mode is selected.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
