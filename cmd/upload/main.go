package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gostones/resumable/internal/upload"
)

func init() {
	cobra.EnableCaseInsensitive = true
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Resumable Upload")
	fmt.Fprintln(w, "================")
	fmt.Fprintln(w, "Usage\n\tupload [apikey] [url] [file]")
}

// parseUploadArgs takes the leading options off args. Everything from the
// first other token on is positional, so an api key may start with a dash.
func parseUploadArgs(args []string) (rest []string, verbose, help bool) {
	for len(args) > 0 {
		switch args[0] {
		case "-h", "--help":
			help = true
		case "-v", "--verbose":
			verbose = true
		case "--":
			return args[1:], verbose, help
		default:
			return args, verbose, help
		}
		args = args[1:]
	}
	return args, verbose, help
}

func newRootCmd(rep upload.Reporter) *cobra.Command {
	root := &cobra.Command{
		Use:                "resumable-upload",
		Short:              "Upload a file in resumable chunks",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
				return &upload.UsageError{}
			}
			return &upload.UsageError{Msg: fmt.Sprintf("Invalid command: %s", args[0])}
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		printUsage(cmd.OutOrStdout())
	})

	uploadCmd := &cobra.Command{
		Use:                "upload [apikey] [url] [file]",
		Short:              "Upload file to remote server",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			args, verbose, help := parseUploadArgs(args)
			if help {
				return &upload.UsageError{}
			}
			if len(args) < 3 {
				return &upload.UsageError{Msg: "Too few arguments"}
			}

			logger := logrus.New()
			logger.SetOutput(cmd.ErrOrStderr())
			logger.SetLevel(logrus.WarnLevel)
			if verbose {
				logger.SetLevel(logrus.DebugLevel)
			}

			u := upload.NewResumableUploader(rep, upload.Options{Logger: logger})
			_, err := u.Upload(context.Background(), upload.Request{
				Credential: args[0],
				Endpoint:   args[1],
				SourcePath: args[2],
			})
			return err
		},
	}
	root.AddCommand(uploadCmd)

	return root
}

// run executes the command line and returns the process exit code.
func run(args []string, out io.Writer) int {
	rep := upload.NewConsoleReporter(out)

	cmd := newRootCmd(rep)
	// cobra falls back to os.Args on nil
	cmd.SetArgs(append([]string{}, args...))
	cmd.SetOut(out)
	cmd.SetErr(out)

	err := cmd.Execute()
	if err == nil {
		return 0
	}

	var ue *upload.UsageError
	if errors.As(err, &ue) {
		printUsage(out)
		if ue.Help() {
			return 0
		}
	}
	rep.Error(fmt.Sprintf("Error: %s", err.Error()))
	return 1
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}
