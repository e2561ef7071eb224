package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/redact"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	tpsread "github.com/galler-alexander/tpsread"
	"github.com/galler-alexander/tpsread/internal/errs"
)

var (
	flagEncoding string
	flagPassword string
	flagCheck    bool
	flagCached   bool
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "tpsdump",
		Short: "Inspect and export TopSpeed (.tps) database files",
	}
	root.PersistentFlags().StringVar(&flagEncoding, "encoding", "", "byte encoding for strings (cp1251, cp437)")
	root.PersistentFlags().StringVar(&flagPassword, "password", "", "file password, if encrypted")
	root.PersistentFlags().BoolVar(&flagCheck, "check", false, "enable integrity checks")
	root.PersistentFlags().BoolVar(&flagCached, "cached", false, "enable the page cache")

	root.AddCommand(newTablesCommand())
	root.AddCommand(newExportCommand())
	root.AddCommand(newWatchCommand())
	return root
}

// openWithPasswordPrompt opens path, retrying once with an
// interactively-prompted password when the header comes back BadMagic
// and none was supplied on the command line.
func openWithPasswordPrompt(path string) (*tpsread.File, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	encoding := flagEncoding
	if encoding == "" {
		encoding = defaults.Encoding
	}

	opts := tpsread.Options{
		Filename: path,
		Encoding: encoding,
		Password: flagPassword,
		Check:    flagCheck || defaults.Check,
		Cached:   flagCached,
	}

	f, err := tpsread.Open(opts)
	if err == nil || flagPassword != "" || !errs.Is(err, errs.BadMagic) {
		return f, err
	}

	fmt.Fprint(os.Stderr, "password: ")
	pw, readErr := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if readErr != nil {
		return nil, readErr
	}

	opts.Password = string(pw)
	f, err = tpsread.Open(opts)
	if err != nil {
		// opts.Password is never Safe-marked, so Redact() strips it from
		// whatever sink renders this diagnostic.
		diag := redact.Sprintf("%s: prompted password %s still rejected: %v", redact.Safe(path), opts.Password, err)
		fmt.Fprintln(os.Stderr, diag.Redact())
	}
	return f, err
}
