// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/dirsum/internal/classifier"
	"github.com/temirov/dirsum/internal/commands"
	"github.com/temirov/dirsum/internal/config"
	"github.com/temirov/dirsum/internal/output"
	"github.com/temirov/dirsum/internal/services/clipboard"
	"github.com/temirov/dirsum/internal/services/stream"
	"github.com/temirov/dirsum/internal/services/watch"
	"github.com/temirov/dirsum/internal/tokenizer"
	"github.com/temirov/dirsum/internal/types"
	"github.com/temirov/dirsum/internal/utils"
)

const (
	exclusionFlagName       = "exclude"
	exclusionFlagShorthand  = "e"
	noGitignoreFlagName     = "no-gitignore"
	noIgnoreFlagName        = "no-ignore"
	includeGitFlagName      = "git"
	hiddenFlagName          = "hidden"
	sampleSizeFlagName      = "sample-size"
	binaryThresholdFlagName = "binary-threshold"
	formatFlagName          = "format"
	tokensFlagName          = "tokens"
	modelFlagName           = "model"
	copyFlagName            = "copy"
	watchFlagName           = "watch"
	configFlagName          = "config"
	versionFlagName         = "version"
	versionFlagShorthand    = "V"
	globalFlagName          = "global"
	forceFlagName           = "force"

	versionTemplate      = "dirsum version: %s\n"
	rootUse              = "dirsum [OPTIONS] <INPUT_DIR> <OUTPUT_FILE>"
	rootShortDescription = "summarize a directory tree into a single report"
	rootLongDescription  = `dirsum walks INPUT_DIR and writes OUTPUT_FILE containing the directory tree,
the numbered contents of every text file and project statistics.
Binary files are listed but their contents are omitted.

Defaults are read from ~/.dirsum/config.yaml, ./.dirsum.yaml (or --config) and
DIRSUM_* environment variables; explicitly set flags take precedence.`
	rootUsageExample = `  # Summarize the current project
  dirsum . summary.txt

  # Exclude build output and logs
  dirsum -e "target,*.log" -e node_modules . summary.txt

  # Produce JSON and keep regenerating on changes
  dirsum --format json --watch ./src summary.json`

	initUse              = "init"
	initShortDescription = "write a default configuration file"
	initLongDescription  = `Write the default configuration to ./.dirsum.yaml, or to
~/.dirsum/config.yaml with --global. Use "./init" to summarize a directory named init.`

	exclusionFlagDescription        = "comma-separated exclusion globs (repeatable)"
	disableGitignoreFlagDescription = "do not use .gitignore"
	disableIgnoreFlagDescription    = "do not use .ignore"
	includeGitFlagDescription       = "include git directory"
	hiddenFlagDescription           = "include hidden files and directories"
	sampleSizeFlagDescription       = "bytes sampled when classifying a file"
	binaryThresholdFlagDescription  = "non-printable ratio above which a file is binary"
	formatFlagDescription           = "output format (raw or json)"
	tokensFlagDescription           = "include token counts"
	modelFlagDescription            = "tokenizer model to use for token counting"
	copyFlagDescription             = "copy the report to the system clipboard"
	watchFlagDescription            = "regenerate the report whenever the input changes"
	configFlagDescription           = "configuration file used instead of ./.dirsum.yaml"
	versionFlagDescription          = "display application version"
	globalFlagDescription           = "write the global configuration"
	forceFlagDescription            = "overwrite an existing configuration"

	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	errorTokenizerFormat        = "initialize tokenizer: %w"
	configurationWrittenFormat  = "configuration written to %s\n"

	logReportWrittenMessage = "report written"
	logCopiedMessage        = "report copied to clipboard"
	logCopyFailedMessage    = "unable to copy report to clipboard"
	logSkipOutputMessage    = "output file lies inside the input directory and is skipped"
)

// CounterFactory builds the token counter for a model.
type CounterFactory func(tokenizer.Config) (tokenizer.Counter, string, error)

// Dependencies holds the collaborators of the command tree. Zero values are
// replaced with the production implementations.
type Dependencies struct {
	Logger           *zap.Logger
	Copier           clipboard.Copier
	NewCounter       CounterFactory
	WorkingDirectory string
}

func (dependencies Dependencies) withDefaults() Dependencies {
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.Copier == nil {
		dependencies.Copier = clipboard.NewService()
	}
	if dependencies.NewCounter == nil {
		dependencies.NewCounter = tokenizer.NewCounter
	}
	return dependencies
}

// Execute runs the dirsum application until ctx is cancelled or the command
// completes.
func Execute(ctx context.Context, logger *zap.Logger) error {
	rootCommand := NewRootCommand(Dependencies{Logger: logger})
	return rootCommand.ExecuteContext(ctx)
}

// summarizeFlags stores the values bound to the root command flags.
type summarizeFlags struct {
	exclusionPatterns []string
	disableGitignore  bool
	disableIgnoreFile bool
	includeGit        bool
	includeHidden     bool
	sampleSize        int
	binaryThreshold   float64
	format            string
	tokensEnabled     bool
	model             string
	copyEnabled       bool
	watchEnabled      bool
	configPath        string
	showVersion       bool
}

// NewRootCommand builds the root Cobra command.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	dependencies = dependencies.withDefaults()
	var flags summarizeFlags

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(command *cobra.Command, arguments []string) error {
			if flags.showVersion {
				return nil
			}
			return cobra.ExactArgs(2)(command, arguments)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			if flags.showVersion {
				_, err := fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return err
			}
			workingDirectory, err := resolveWorkingDirectory(dependencies.WorkingDirectory)
			if err != nil {
				return err
			}
			loaded, err := config.LoadApplicationConfiguration(config.LoadOptions{
				WorkingDirectory: workingDirectory,
				ExplicitFilePath: flags.configPath,
			})
			if err != nil {
				return err
			}
			settings, err := applyFlags(command, flags, loaded).Resolve()
			if err != nil {
				return err
			}
			plan := summaryPlan{
				inputPath:  resolveAgainst(workingDirectory, arguments[0]),
				outputPath: resolveAgainst(workingDirectory, arguments[1]),
				settings:   settings,
				watch:      flags.watchEnabled,
			}
			return runSummary(command.Context(), dependencies, plan)
		},
	}

	flagSet := rootCommand.Flags()
	flagSet.StringArrayVarP(&flags.exclusionPatterns, exclusionFlagName, exclusionFlagShorthand, nil, exclusionFlagDescription)
	flagSet.BoolVar(&flags.disableGitignore, noGitignoreFlagName, false, disableGitignoreFlagDescription)
	flagSet.BoolVar(&flags.disableIgnoreFile, noIgnoreFlagName, false, disableIgnoreFlagDescription)
	flagSet.BoolVar(&flags.includeGit, includeGitFlagName, false, includeGitFlagDescription)
	flagSet.BoolVar(&flags.includeHidden, hiddenFlagName, false, hiddenFlagDescription)
	flagSet.IntVar(&flags.sampleSize, sampleSizeFlagName, classifier.DefaultSampleSize, sampleSizeFlagDescription)
	flagSet.Float64Var(&flags.binaryThreshold, binaryThresholdFlagName, classifier.DefaultThreshold, binaryThresholdFlagDescription)
	flagSet.StringVar(&flags.format, formatFlagName, types.FormatRaw, formatFlagDescription)
	flagSet.BoolVar(&flags.tokensEnabled, tokensFlagName, false, tokensFlagDescription)
	flagSet.StringVar(&flags.model, modelFlagName, tokenizer.DefaultModel, modelFlagDescription)
	flagSet.BoolVar(&flags.copyEnabled, copyFlagName, false, copyFlagDescription)
	flagSet.BoolVar(&flags.watchEnabled, watchFlagName, false, watchFlagDescription)
	flagSet.StringVar(&flags.configPath, configFlagName, "", configFlagDescription)
	flagSet.BoolVarP(&flags.showVersion, versionFlagName, versionFlagShorthand, false, versionFlagDescription)

	rootCommand.AddCommand(createInitCommand(dependencies))
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// applyFlags overlays the flags the user set explicitly onto the loaded
// configuration. Exclusion patterns from flags extend the configured ones.
func applyFlags(command *cobra.Command, flags summarizeFlags, loaded config.ApplicationConfiguration) config.ApplicationConfiguration {
	changed := command.Flags().Changed
	var override config.ApplicationConfiguration
	if changed(exclusionFlagName) {
		override.Exclude = append(append([]string{}, loaded.Exclude...), flags.exclusionPatterns...)
	}
	if changed(noGitignoreFlagName) {
		override.UseGitignore = boolPointer(!flags.disableGitignore)
	}
	if changed(noIgnoreFlagName) {
		override.UseIgnoreFile = boolPointer(!flags.disableIgnoreFile)
	}
	if changed(includeGitFlagName) {
		override.IncludeGit = boolPointer(flags.includeGit)
	}
	if changed(hiddenFlagName) {
		override.Hidden = boolPointer(flags.includeHidden)
	}
	if changed(sampleSizeFlagName) {
		sampleSize := flags.sampleSize
		override.SampleSize = &sampleSize
	}
	if changed(binaryThresholdFlagName) {
		threshold := flags.binaryThreshold
		override.BinaryThreshold = &threshold
	}
	if changed(formatFlagName) {
		override.Format = flags.format
	}
	if changed(tokensFlagName) {
		override.Tokens.Enabled = boolPointer(flags.tokensEnabled)
	}
	if changed(modelFlagName) {
		override.Tokens.Model = flags.model
	}
	if changed(copyFlagName) {
		override.Copy = boolPointer(flags.copyEnabled)
	}
	return loaded.Merge(override)
}

// createInitCommand returns the init subcommand.
func createInitCommand(dependencies Dependencies) *cobra.Command {
	var globalTarget bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if globalTarget {
				target = config.InitTargetGlobal
			}
			writtenPath, err := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: dependencies.WorkingDirectory,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(command.OutOrStdout(), configurationWrittenFormat, writtenPath)
			return err
		},
	}
	initCommand.Flags().BoolVar(&globalTarget, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVar(&force, forceFlagName, false, forceFlagDescription)
	return initCommand
}

type summaryPlan struct {
	inputPath  string
	outputPath string
	settings   config.Settings
	watch      bool
}

// runSummary writes the report once and, in watch mode, keeps regenerating
// it until ctx is cancelled.
func runSummary(ctx context.Context, dependencies Dependencies, plan summaryPlan) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := dependencies.Logger
	root, err := commands.ResolveRoot(plan.inputPath)
	if err != nil {
		return err
	}

	var fileClassifier classifier.FileClassifier = classifier.New(plan.settings.SampleSize, plan.settings.BinaryThreshold)
	if plan.watch {
		cachedClassifier, cacheErr := classifier.NewCachedClassifier(fileClassifier, classifier.DefaultCacheSize)
		if cacheErr != nil {
			return cacheErr
		}
		fileClassifier = cachedClassifier
	}

	var tokenCounter tokenizer.Counter
	var tokenModel string
	if plan.settings.TokensEnabled {
		createdCounter, resolvedModel, counterErr := dependencies.NewCounter(tokenizer.Config{Model: plan.settings.TokenModel})
		if counterErr != nil {
			return fmt.Errorf(errorTokenizerFormat, counterErr)
		}
		tokenCounter = createdCounter
		tokenModel = resolvedModel
	}

	var skipPaths []string
	if utils.IsWithinRoot(plan.outputPath, root.AbsolutePath) {
		logger.Debug(logSkipOutputMessage, zap.String("path", plan.outputPath))
		skipPaths = append(skipPaths, plan.outputPath)
	}

	walkOptions := commands.WalkOptions{
		Root:            root.AbsolutePath,
		ExcludePatterns: plan.settings.ExclusionPatterns(),
		IgnoreFileNames: plan.settings.IgnoreFileNames(),
		IncludeHidden:   plan.settings.Hidden,
		SkipPaths:       skipPaths,
		Classifier:      fileClassifier,
		TokenCounter:    tokenCounter,
		TokenModel:      tokenModel,
		Logger:          logger,
	}
	regenerate := func(regenerateContext context.Context) error {
		return summarizeOnce(regenerateContext, dependencies, walkOptions, plan)
	}
	if err := regenerate(ctx); err != nil {
		return err
	}
	if !plan.watch {
		return nil
	}
	return watch.Run(ctx, watch.Options{
		Root:            root.AbsolutePath,
		OutputPath:      plan.outputPath,
		ExcludePatterns: walkOptions.ExcludePatterns,
		IgnoreFileNames: walkOptions.IgnoreFileNames,
		IncludeHidden:   walkOptions.IncludeHidden,
		Logger:          logger,
	}, regenerate)
}

func summarizeOnce(ctx context.Context, dependencies Dependencies, walkOptions commands.WalkOptions, plan summaryPlan) error {
	renderer := output.NewStreamRenderer(plan.settings.Format)
	producer := func(streamCtx context.Context, events chan<- stream.Event) error {
		return stream.StreamSummary(streamCtx, walkOptions, events)
	}
	if err := dispatchStream(ctx, producer, renderer.Handle); err != nil {
		return err
	}
	report, err := renderer.Report()
	if err != nil {
		return err
	}
	if err := output.WriteReport(plan.outputPath, report); err != nil {
		return err
	}
	dependencies.Logger.Info(logReportWrittenMessage,
		zap.String("path", plan.outputPath),
		zap.String("format", report.Format),
		zap.Int("lines", len(report.Lines)),
	)

	if plan.settings.Copy {
		copiedBytes, copyErr := clipboard.CopyReport(dependencies.Copier, report)
		if copyErr != nil {
			dependencies.Logger.Warn(logCopyFailedMessage, zap.Error(copyErr))
		} else {
			dependencies.Logger.Info(logCopiedMessage, zap.Int("bytes", copiedBytes))
		}
	}
	return nil
}

// dispatchStream runs produce and consume concurrently over an unbuffered
// channel. Cancellation of ctx is returned as an error so that an interrupted
// run never writes a report.
func dispatchStream(
	ctx context.Context,
	produce func(context.Context, chan<- stream.Event) error,
	consume func(stream.Event) error,
) error {
	group, streamCtx := errgroup.WithContext(ctx)
	events := make(chan stream.Event)

	group.Go(func() error {
		defer close(events)
		return produce(streamCtx, events)
	})

	group.Go(func() error {
		for {
			select {
			case <-streamCtx.Done():
				return streamCtx.Err()
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := consume(event); err != nil {
					return err
				}
			}
		}
	})

	if err := group.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func resolveWorkingDirectory(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	workingDirectory, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf(workingDirectoryErrorFormat, err)
	}
	return workingDirectory, nil
}

func resolveAgainst(workingDirectory, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(workingDirectory, path)
}

func boolPointer(value bool) *bool {
	return &value
}
