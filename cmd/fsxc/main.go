package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"fsxc/convert"
	"fsxc/misc"
	"fsxc/state"
)

func main() {
	misc.SetAppNameFromArgs(os.Args[0])

	// allow graceful shutdown on interrupt, conversion checks context
	// between files and while decoding
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	var err error
	// NOTE: os.Exit is called at the end of main to set exit code, make sure
	// there are no other deffered functions after that
	defer func() {
		stop()
		if err != nil {
			// It may happen that log is either not set yet (argument parsing) or already closed,
			// report errors to stderr directly
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = newApp().Run(ctx, legacyArgs(os.Args))
}

// legacyArgs supports invocation inherited from document processor plugin:
// "program [/P] <file.fsx>", source is the last argument other than "/P".
// Such command line is turned into convert subcommand which always replaces
// existing output.
func legacyArgs(args []string) []string {
	if len(args) < 2 {
		return args
	}
	var (
		preserve bool
		sources  []string
	)
	for _, arg := range args[1:] {
		if strings.EqualFold(arg, convert.LegacyPreserveArg) {
			preserve = true
			continue
		}
		sources = append(sources, arg)
	}
	if len(sources) != 1 || !strings.EqualFold(filepath.Ext(sources[0]), ".fsx") {
		return args
	}
	if fi, err := os.Stat(sources[0]); err != nil || !fi.Mode().IsRegular() {
		return args
	}
	out := []string{args[0], "convert", "--overwrite"}
	if preserve {
		out = append(out, "--preserve")
	}
	return append(out, sources[0])
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "converter of escape coded FSX text streams to DOCX documents",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		CommandNotFound: subcommandNotFoundHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "changes program behavior to help troubleshooting, produces report archive"},
		},
		Commands: []*cli.Command{
			{
				Name:         "convert",
				Usage:        "Converts FSX stream(s) to DOCX documents",
				OnUsageError: usageErrorHandler,
				Action:       convert.Run,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "preserve", Aliases: []string{"p"}, Usage: "keep source file(s) after successful conversion (legacy " + convert.LegacyPreserveArg + " argument is also accepted)"},
					&cli.StringFlag{Name: "template", Aliases: []string{"t"}, Usage: "use document template `FILE` (DOCX) instead of configured or built-in one"},
					&cli.BoolFlag{Name: "nodirs", Aliases: []string{"nd"}, Usage: "when producing output do not keep input directory structure"},
					&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "continue even if destination exits, overwrite files"},
					&cli.StringFlag{Name: "force-zip-cp",
						Usage: "Force `ENCODING` for ALL non UTF-8 file names in processed archives (see IANA.org for character set names)"},
				},
				ArgsUsage: "SOURCE [DESTINATION]",
				CustomHelpTemplate: fmt.Sprintf(`%s
SOURCE:
    path to fsx file(s) to process, following formats are supported:
        path to a file: "[path_to_file]file.fsx"
        path to a directory: "[path_to_directory]directory" - recursively process all files under directory (symbolic links are not followed)
        path to archive with path inside archive to a particular fsx file: "[path_to_archive]archive.zip[path_in_archive]/file.fsx"
        path to archive with path inside archive: "[path_to_archive]archive.zip[path_in_archive]" - recursively process all fsx files under archive path

	Files are processed in natural name order. Successfully converted source
	files are removed unless --preserve is given, files inside archives are
	never removed.

DESTINATION:
    always a path, output file name(s) will be derived from source names or
    output name template
    if absent - next to the source
`, cli.CommandHelpTemplate),
			},
			{
				Name:  "dumpconfig",
				Usage: "Dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "DESTINATION",
				CustomHelpTemplate: fmt.Sprintf(`%s

DESTINATION:
    file name to write configuration to, if absent - STDOUT

Produces file with actual "active" configuration values which is composition of
default values and values specified in configuration file. To see default
configuration embedded into the program use --default flag.
`, cli.CommandHelpTemplate),
			},
		},
	}

}
