package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/nordforge/eksblueprint/internal/lint"
)

// newWatchCmd creates the "watch" subcommand for auto-synthesis on file
// changes.
func newWatchCmd() *cobra.Command {
	var (
		opts         composeOptions
		lintOnly     bool
		debounce     time.Duration
		outputFormat string
		outputDir    string
		paths        []string
	)

	cmd := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Auto-synthesize on file changes",
		Long: `Watch monitors the given paths and re-runs lint and synth on changes.

The watch command:
- Monitors the given directories (default: current directory)
- Runs the structural lint rules on each change
- Re-synthesizes if lint passes (unless --lint-only)
- Debounces rapid changes to avoid excessive rebuilds

Useful when iterating on an externally supplied input such as the load
balancer controller policy file.

Examples:
    eksblueprint watch
    eksblueprint watch policies/ --lb-policy-file policies/iam_policy.json
    eksblueprint watch --lint-only
    eksblueprint watch --debounce 1s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths = args
			if len(paths) == 0 {
				paths = []string{"."}
			}
			return runWatch(paths, opts, watchOptions{
				lintOnly:     lintOnly,
				debounce:     debounce,
				outputFormat: outputFormat,
				outputDir:    outputDir,
			})
		},
	}

	addComposeFlags(cmd, &opts)
	cmd.Flags().BoolVar(&lintOnly, "lint-only", false, "Only run lint, skip synthesis")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Debounce duration for rapid changes")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Template format: json or yaml")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "assembly", "Directory for synthesized templates")

	return cmd
}

type watchOptions struct {
	lintOnly     bool
	debounce     time.Duration
	outputFormat string
	outputDir    string
}

// runWatch monitors paths and runs lint/synth on changes.
func runWatch(paths []string, compose composeOptions, opts watchOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		if err := addDirRecursive(watcher, abs); err != nil {
			return fmt.Errorf("failed to watch %s: %w", abs, err)
		}
		fmt.Printf("Watching: %s\n", abs)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	fmt.Println("Running initial lint/synth...")
	runLintAndSynth(compose, opts)

	var debounceTimer *time.Timer
	rebuildChan := make(chan struct{}, 1)

	fmt.Println("\nWatching for changes... (Ctrl+C to stop)")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			// Ignore the synthesis output to avoid rebuild loops.
			if strings.Contains(event.Name, opts.outputDir+string(filepath.Separator)) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			// Debounce: reset timer on each change
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(opts.debounce, func() {
				select {
				case rebuildChan <- struct{}{}:
				default:
				}
			})

		case <-rebuildChan:
			fmt.Printf("\n[%s] Change detected, re-synthesizing...\n", time.Now().Format("15:04:05"))
			runLintAndSynth(compose, opts)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)

		case <-sigChan:
			fmt.Println("\nStopping watch...")
			return nil
		}
	}
}

// addDirRecursive adds a directory and all subdirectories to the watcher.
func addDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			// Skip hidden directories
			if strings.HasPrefix(filepath.Base(path), ".") && path != dir {
				return filepath.SkipDir
			}
			if filepath.Base(path) == "vendor" {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}

// runLintAndSynth runs lint and optionally synthesis.
func runLintAndSynth(compose composeOptions, opts watchOptions) {
	assemblies, warnings, err := composeAssemblies(compose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compose error: %v\n", err)
		return
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	hasErrors := false
	for _, a := range assemblies {
		result, err := lint.Lint(a, lint.Options{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Lint error: %v\n", err)
			return
		}
		for _, issue := range result.Issues {
			fmt.Printf("%s: %s: %s [%s]\n", issue.Stack, issue.Severity, issue.Message, issue.Rule)
		}
		if !result.Success {
			hasErrors = true
		}
	}

	if hasErrors {
		fmt.Println("Lint failed, skipping synthesis")
		return
	}
	fmt.Println("Lint passed")

	if opts.lintOnly {
		return
	}

	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Synth error: %v\n", err)
		return
	}

	total := 0
	for _, a := range assemblies {
		files, err := writeAssembly(a, opts.outputFormat, opts.outputDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Synth error: %v\n", err)
			return
		}
		for _, f := range files {
			total += f.Resources
		}
	}
	fmt.Printf("Synthesis successful, wrote %d resources to %s\n", total, opts.outputDir)
}
