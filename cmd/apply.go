package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ccloudctl/internal/ccloud"
	"ccloudctl/internal/cli"
	"ccloudctl/internal/formatting"
	"ccloudctl/internal/manifest"
	"ccloudctl/internal/reconcile"
	"ccloudctl/internal/resource"
	"ccloudctl/internal/runner"
	"ccloudctl/pkg/logging"
	pkgstrings "ccloudctl/pkg/strings"
)

var (
	applyFiles  []string
	applyCheck  bool
	applyWatch  bool
	applySet    []string
	applyValues []string
	applyOutput string
	applyQuiet  bool
)

// applyCmd represents the apply command.
var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Reconcile manifests against Confluent Cloud",
	Long: `Apply reads desired-state manifests and reconciles every document against
the control plane: resources are created when missing, updated when their
spec drifted, deleted when declared absent, and left alone when already in
shape.

Manifests are YAML documents rendered through the template engine first;
--set and --values provide the template data under .Values.

With --check nothing is mutated; pending changes are reported and the
process exits with code 3 so CI can gate on drift.

Examples:
  ccloudctl apply -f confluent.yaml
  ccloudctl apply -f manifests/ --check
  ccloudctl apply -f confluent.yaml --set cluster.region=eu-west-1
  ccloudctl apply -f confluent.yaml --values prod.yaml --watch`,
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringArrayVarP(&applyFiles, "file", "f", nil, "Manifest file or directory (repeatable)")
	applyCmd.Flags().BoolVar(&applyCheck, "check", false, "Report pending changes without applying them")
	applyCmd.Flags().BoolVar(&applyWatch, "watch", false, "Keep running and re-apply when manifests change")
	applyCmd.Flags().StringArrayVar(&applySet, "set", nil, "Template value as key=value (repeatable)")
	applyCmd.Flags().StringArrayVar(&applyValues, "values", nil, "YAML file with template values (repeatable)")
	applyCmd.Flags().StringVarP(&applyOutput, "output", "o", "table", "Output format (table, json, yaml)")
	applyCmd.Flags().BoolVarP(&applyQuiet, "quiet", "q", false, "Suppress the progress spinner")
}

func runApply(cmd *cobra.Command, args []string) error {
	format, err := formatting.ParseOutputFormat(applyOutput)
	if err != nil {
		return err
	}
	if len(applyFiles) == 0 {
		return fmt.Errorf("no manifests given: pass at least one -f/--file")
	}

	values, err := collectValues(applyValues, applySet)
	if err != nil {
		return err
	}

	client, err := connection.Client(GetVersion())
	if err != nil {
		return err
	}

	run := runner.New(resource.DefaultRegistry(client))
	printer := formatting.NewPrinter(cmd.OutOrStdout(), format)
	quiet := applyQuiet || printer.Structured()
	opts := reconcile.Options{CheckMode: applyCheck}

	// Manifests reload on every pass so watch mode picks up edits.
	applyOnce := func(ctx context.Context) (*runner.Summary, error) {
		docs, err := loadManifests(applyFiles, values)
		if err != nil {
			return nil, err
		}

		verb := "Applying"
		if applyCheck {
			verb = "Checking"
		}
		var summary *runner.Summary
		runErr := cli.WithSpinner(quiet, fmt.Sprintf("%s %d document(s)...", verb, len(docs)), func() error {
			var err error
			summary, err = run.Apply(ctx, docs, opts)
			return err
		})
		if runErr != nil {
			return nil, cli.WrapAuth(runErr, client.Endpoint())
		}
		if err := renderSummary(cmd, printer, summary, "apply"); err != nil {
			return nil, err
		}
		return summary, nil
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	summary, err := applyOnce(ctx)
	if err != nil {
		return err
	}

	if applyWatch {
		return watchManifests(ctx, cancel, applyFiles, applyOnce)
	}

	return summaryError(summary)
}

// watchManifests re-applies whenever one of the paths changes, until the
// process is interrupted or the credentials stop working.
func watchManifests(ctx context.Context, cancel context.CancelFunc, paths []string, applyOnce func(context.Context) (*runner.Summary, error)) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			logging.Info("CLI", "Interrupt received, stopping watch")
			cancel()
		case <-ctx.Done():
		}
	}()

	// Watchers on different paths can fire together; one apply at a time
	// keeps the output readable.
	var mu sync.Mutex
	var authErr error
	apply := func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()

		_, err := applyOnce(ctx)
		var auth *cli.AuthError
		if errors.As(err, &auth) {
			authErr = err
			cancel()
		}
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, path := range paths {
		g.Go(func() error {
			return runner.Watch(ctx, path, runner.DefaultDebounce, apply)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return authErr
}

// renderSummary prints one run. Structured formats encode the whole
// summary, including created resources; that is the only place a fresh
// API key secret appears in full.
func renderSummary(cmd *cobra.Command, printer *formatting.Printer, summary *runner.Summary, mode string) error {
	if printer.Structured() {
		return printer.Encode(summary)
	}

	out := cmd.OutOrStdout()
	if len(summary.Results) > 0 {
		rows := make([][]string, 0, len(summary.Results))
		for _, result := range summary.Results {
			rows = append(rows, []string{result.Kind, result.Name, string(result.Action), strconv.FormatBool(result.Changed)})
		}
		printer.Table([]string{"KIND", "NAME", "ACTION", "CHANGED"}, rows)
	}

	for _, result := range summary.Results {
		if secret := createdSecret(result); secret != "" {
			fmt.Fprintf(out, "%s %q secret: %s (shown in full only at create time, use -o json to capture it)\n",
				result.Kind, result.Name, pkgstrings.MaskSecret(secret))
		}
	}

	errOut := cmd.ErrOrStderr()
	for _, runErr := range summary.Errors {
		fmt.Fprintf(errOut, "failed: %s %q: %s\n", runErr.Kind, runErr.Name, runErr.Error)
	}

	if summary.CheckMode {
		mode = "check"
	}
	fmt.Fprintf(out, "%s: %d changed, %d unchanged, %d failed\n", mode, summary.Changed, summary.Unchanged, summary.Failed)
	return nil
}

// createdSecret returns the secret of a freshly created API key, if the
// result carries one.
func createdSecret(result resource.Result) string {
	if result.Action != reconcile.ActionCreate {
		return ""
	}
	if key, ok := result.Resource.(ccloud.FlatAPIKey); ok {
		return key.Secret
	}
	return ""
}

// summaryError translates a finished run into the process outcome:
// failures beat drift, drift in check mode is reported through its own
// exit code.
func summaryError(summary *runner.Summary) error {
	if !summary.Succeeded() {
		total := summary.Failed + len(summary.Results)
		return fmt.Errorf("%d of %d document(s) failed", summary.Failed, total)
	}
	if summary.CheckMode && summary.Changed > 0 {
		return &cli.DriftError{Pending: summary.Changed}
	}
	return nil
}

// collectValues merges --values files in order, then --set expressions on
// top, later sources winning.
func collectValues(files, sets []string) (map[string]any, error) {
	values := make(map[string]any)
	for _, file := range files {
		loaded, err := manifest.LoadValuesFile(file)
		if err != nil {
			return nil, err
		}
		manifest.MergeValues(values, loaded)
	}
	for _, expr := range sets {
		if err := manifest.ParseSet(values, expr); err != nil {
			return nil, err
		}
	}
	return values, nil
}

// loadManifests loads every path in order. Duplicates are rejected across
// paths just like within a single one.
func loadManifests(paths []string, values map[string]any) ([]manifest.Document, error) {
	var docs []manifest.Document
	seen := make(map[string]string)
	for _, path := range paths {
		loaded, err := manifest.Load(path, values)
		if err != nil {
			return nil, err
		}
		for _, doc := range loaded {
			key := doc.Kind + "/" + doc.Name
			if prev, ok := seen[key]; ok {
				return nil, fmt.Errorf("duplicate %s %q in %s (already declared in %s)", doc.Kind, doc.Name, doc.File, prev)
			}
			seen[key] = doc.File
		}
		docs = append(docs, loaded...)
	}
	return docs, nil
}
