package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/strictemit/manifest"
	"github.com/chazu/strictemit/pkg/metadata"
	"github.com/chazu/strictemit/pkg/resolve"
	"github.com/chazu/strictemit/pkg/symtab"
)

var rootCmd = &cobra.Command{
	Use:   "strictemit",
	Short: "Resolve members and emit call instructions",
	Long: `strictemit resolves constructor and method references against declared
type metadata and emits call-family instructions into method bodies.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

var (
	manifestPath string
	symbolFiles  []string
	verbosity    int
	colorMode    string

	// project is the loaded manifest, or nil when none was found.
	project *manifest.Manifest
)

func main() {
	rootCmd.Version = Version

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(emitCmd)
	rootCmd.AddCommand(disasmCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVar(&manifestPath, "manifest", "", "path to strictemit.toml or its directory (default: search upward)")
	rootCmd.PersistentFlags().StringArrayVar(&symbolFiles, "symbols", nil, "symbol file to load (repeatable)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "colorize output (auto|on|off)")

	if err := rootCmd.Execute(); err != nil {
		errorColor.Fprint(os.Stderr, "error: ")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func logger() commonlog.Logger {
	return commonlog.GetLogger("strictemit")
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	if project, err = loadManifest(manifestPath); err != nil {
		return err
	}

	level, logPath := verbosity, ""
	if project != nil {
		level = max(level, project.Log.Verbosity)
		logPath = project.LogPath()
	}
	if logPath != "" {
		commonlog.Configure(level, &logPath)
	} else {
		commonlog.Configure(level, nil)
	}

	enabled, err := useColor(colorMode, os.Stdout)
	if err != nil {
		return err
	}
	color.NoColor = !enabled
	return nil
}

// loadManifest loads the manifest named by path, which may be the file or
// its directory. An empty path searches upward from the working directory.
func loadManifest(path string) (*manifest.Manifest, error) {
	if path == "" {
		return manifest.FindAndLoad(".")
	}
	if filepath.Base(path) == manifest.FileName {
		path = filepath.Dir(path)
	}
	return manifest.Load(path)
}

// useColor decides whether output to f is colorized.
func useColor(mode string, f *os.File) (bool, error) {
	switch strings.ToLower(mode) {
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	case "auto", "":
		if os.Getenv("NO_COLOR") != "" {
			return false, nil
		}
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()), nil
	default:
		return false, fmt.Errorf("unsupported color mode %q (must be auto, on or off)", mode)
	}
}

// symbolPaths returns the manifest's symbol files followed by those given
// with --symbols.
func symbolPaths(m *manifest.Manifest, extra []string) []string {
	var paths []string
	if m != nil {
		paths = append(paths, m.SymbolPaths()...)
	}
	return append(paths, extra...)
}

// loadTable loads the configured symbol files into one table.
func loadTable() (*metadata.Table, error) {
	paths := symbolPaths(project, symbolFiles)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no symbol files: pass --symbols or set [metadata] files in %s", manifest.FileName)
	}
	return symtab.Load(paths...)
}

// newResolver builds a resolver over table with the manifest's options.
func newResolver(table *metadata.Table) *resolve.Resolver {
	var opts []resolve.Option
	if project != nil {
		opts = project.ResolverOptions()
	}
	return resolve.New(table, opts...)
}
