// Package main provides the entry point for the fieldspeech CLI application.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/fieldspeech/internal/config"
	"github.com/dgnsrekt/fieldspeech/internal/markdown"
	"github.com/dgnsrekt/fieldspeech/pkg/speech"
	"github.com/muesli/gitcha"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	markdownExtensions = []string{
		"*.md", "*.mdown", "*.mkdn", "*.mkd", "*.markdown",
	}

	configFile  string
	width       uint
	noCache     bool
	focusMoves  bool
	copyOutput  bool
	watchFile   bool
	showStats   bool
	showAll     bool
	debug       bool
	isTerminal  bool
	speechCfg   config.Config
	transcriptF string

	rootCmd = &cobra.Command{
		Use:   "fieldspeech [FILE|DIR|-]",
		Short: "Read markdown documents the way a screen reader speaks them",
		Long: paragraph(
			fmt.Sprintf("\nWalk markdown documents unit by unit and print what a screen reader would %s, announcing each region just before its first content.", keyword("say")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(expandPath(configFile))
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}

	// grab config values from Viper
	width = viper.GetUint("width")
	debug = viper.GetBool("debug")

	if err := speech.InitializeLogging(debug, viper.GetBool("trace")); err != nil {
		return fmt.Errorf("unable to initialize logging: %w", err)
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	speechCfg = cfg
	transcriptF = expandPath(cfg.Transcript)

	isTerminal = term.IsTerminal(int(os.Stdout.Fd()))

	// Detect terminal width
	if !cmd.Flags().Changed("width") { //nolint:nestif
		if width == 0 && cfg.Width > 0 {
			width = uint(cfg.Width) //nolint:gosec
		}
		if isTerminal && width == 0 {
			w, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err == nil {
				width = uint(w) //nolint:gosec
			}

			if width > 120 {
				width = 120
			}
		}
		if width == 0 {
			width = 80
		}
	}
	return nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

func execute(cmd *cobra.Command, args []string) error {
	r, err := newReader(os.Stdout)
	if err != nil {
		return err
	}
	defer r.Close() //nolint:errcheck

	// if stdin is a pipe then use stdin for input. note that you can also
	// explicitly use a - to read from stdin.
	if len(args) == 0 || args[0] == "-" {
		if yes, err := stdinIsPipe(); err != nil {
			return err
		} else if yes || (len(args) == 1 && args[0] == "-") {
			if watchFile {
				return errors.New("cannot watch standard input")
			}
			return r.speakReader("stdin", os.Stdin)
		}
	}

	arg := "."
	if len(args) == 1 {
		arg = args[0]
	}

	info, err := os.Stat(arg)
	if err != nil {
		return fmt.Errorf("unable to open file: %w", err)
	}

	if info.IsDir() {
		if watchFile {
			return errors.New("--watch needs a file, not a directory")
		}
		paths, err := findMarkdownFiles(arg)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return errors.New("missing markdown source")
		}
		for _, p := range paths {
			if err := r.speakFile(p); err != nil {
				return err
			}
		}
		return r.finish()
	}

	path, err := filepath.Abs(arg)
	if err != nil {
		return fmt.Errorf("unable to get absolute path: %w", err)
	}
	if err := r.speakFile(path); err != nil {
		return err
	}
	if watchFile {
		if err := r.watch(cmd.Context(), path); err != nil {
			return err
		}
	}
	return r.finish()
}

// findMarkdownFiles returns the markdown files below dir, sorted.
func findMarkdownFiles(dir string) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to get absolute path: %w", err)
	}

	// Switch between FindFiles and FindAllFiles to bypass .gitignore rules
	var ch chan gitcha.SearchResult
	if showAll {
		ch, err = gitcha.FindAllFilesExcept(abs, markdownExtensions, nil)
	} else {
		ch, err = gitcha.FindFilesExcept(abs, markdownExtensions, nil)
	}
	if err != nil {
		log.Error("error finding local files", "error", err)
		return nil, fmt.Errorf("unable to search %s: %w", dir, err)
	}

	var paths []string
	for res := range ch {
		paths = append(paths, res.Path)
	}
	sort.Strings(paths)
	log.Debug("local file search finished", "dir", abs, "files", len(paths))
	return paths, nil
}

func (r *reader) speakReader(id string, in io.Reader) error {
	b, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("unable to read from reader: %w", err)
	}
	doc, err := markdown.Parse(id, b)
	if err != nil {
		return err
	}
	if err := r.speakDocument(doc); err != nil {
		return err
	}
	return r.finish()
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().UintVarP(&width, "width", "w", 0, "word-wrap at width (set to 0 to detect)")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "speak every position without the previous context")
	rootCmd.PersistentFlags().StringVar(&transcriptF, "transcript", "", "write a zstd-compressed JSON lines transcript to this path")
	rootCmd.PersistentFlags().BoolVar(&copyOutput, "copy", false, "copy the spoken output to the clipboard")
	rootCmd.PersistentFlags().BoolVar(&showStats, "stats", false, "print a summary when done")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log queries to the log file")
	rootCmd.PersistentFlags().Bool("trace", false, "also write query metrics to their own log file")
	_ = rootCmd.PersistentFlags().MarkHidden("trace")

	rootCmd.Flags().StringP("unit", "u", "line", "unit to walk by (character, word, line, paragraph, cell, none)")
	rootCmd.Flags().StringP("reason", "r", "caret", "reason given for each query")
	rootCmd.Flags().String("ordering", config.OrderingContentFirst, "announcement ordering (content-first, immediate)")
	rootCmd.Flags().BoolVar(&focusMoves, "focus", false, "record every move as a focus jump")
	rootCmd.Flags().Bool("lang-switching", true, "emit language switches")
	rootCmd.Flags().Bool("report-clickable", true, "announce clickable elements")
	rootCmd.Flags().String("indentation", "off", "report line indentation (off, speech, tones, both)")
	rootCmd.Flags().BoolVar(&watchFile, "watch", false, "re-speak the file whenever it changes")
	rootCmd.Flags().BoolVarP(&showAll, "all", "a", false, "include hidden and ignored files in directories")

	// Config bindings
	_ = viper.BindPFlag("width", rootCmd.PersistentFlags().Lookup("width"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("trace", rootCmd.PersistentFlags().Lookup("trace"))
	_ = viper.BindPFlag("speech.transcript.path", rootCmd.PersistentFlags().Lookup("transcript"))
	_ = viper.BindPFlag("speech.unit", rootCmd.Flags().Lookup("unit"))
	_ = viper.BindPFlag("speech.reason", rootCmd.Flags().Lookup("reason"))
	_ = viper.BindPFlag("speech.ordering", rootCmd.Flags().Lookup("ordering"))
	_ = viper.BindPFlag("speech.language_switching", rootCmd.Flags().Lookup("lang-switching"))
	_ = viper.BindPFlag("speech.report_clickable", rootCmd.Flags().Lookup("report-clickable"))
	_ = viper.BindPFlag("speech.report_indentation", rootCmd.Flags().Lookup("indentation"))
	_ = viper.BindPFlag("all", rootCmd.Flags().Lookup("all"))

	viper.SetDefault("width", 0)
	viper.SetDefault("all", false)

	rootCmd.AddCommand(configCmd, manCmd, replayCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "fieldspeech")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "fieldspeech")}, dirs...)
	}

	if c := os.Getenv("FIELDSPEECH_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("fieldspeech")
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "fieldspeech.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
