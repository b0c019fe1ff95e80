package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ccloudctl/internal/cli"
	"ccloudctl/internal/formatting"
	"ccloudctl/internal/reconcile"
	"ccloudctl/internal/resource"
	"ccloudctl/internal/runner"
)

var (
	destroyFiles  []string
	destroySet    []string
	destroyValues []string
	destroyCheck  bool
	destroyOutput string
	destroyQuiet  bool
)

// destroyCmd represents the destroy command.
var destroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Delete everything the manifests declare",
	Long: `Destroy loads the same manifests apply uses and deletes every resource
they declare, in reverse declaration order so dependents go before the
resources they live in. Resources that are already gone count as
unchanged.

Examples:
  ccloudctl destroy -f confluent.yaml
  ccloudctl destroy -f manifests/ --check`,
	RunE: runDestroy,
}

func init() {
	rootCmd.AddCommand(destroyCmd)

	destroyCmd.Flags().StringArrayVarP(&destroyFiles, "file", "f", nil, "Manifest file or directory (repeatable)")
	destroyCmd.Flags().BoolVar(&destroyCheck, "check", false, "Report pending deletions without applying them")
	destroyCmd.Flags().StringArrayVar(&destroySet, "set", nil, "Template value as key=value (repeatable)")
	destroyCmd.Flags().StringArrayVar(&destroyValues, "values", nil, "YAML file with template values (repeatable)")
	destroyCmd.Flags().StringVarP(&destroyOutput, "output", "o", "table", "Output format (table, json, yaml)")
	destroyCmd.Flags().BoolVarP(&destroyQuiet, "quiet", "q", false, "Suppress the progress spinner")
}

func runDestroy(cmd *cobra.Command, args []string) error {
	format, err := formatting.ParseOutputFormat(destroyOutput)
	if err != nil {
		return err
	}
	if len(destroyFiles) == 0 {
		return fmt.Errorf("no manifests given: pass at least one -f/--file")
	}

	values, err := collectValues(destroyValues, destroySet)
	if err != nil {
		return err
	}
	docs, err := loadManifests(destroyFiles, values)
	if err != nil {
		return err
	}

	client, err := connection.Client(GetVersion())
	if err != nil {
		return err
	}

	run := runner.New(resource.DefaultRegistry(client))
	printer := formatting.NewPrinter(cmd.OutOrStdout(), format)
	quiet := destroyQuiet || printer.Structured()

	var summary *runner.Summary
	runErr := cli.WithSpinner(quiet, fmt.Sprintf("Destroying %d document(s)...", len(docs)), func() error {
		var err error
		summary, err = run.Destroy(cmd.Context(), docs, reconcile.Options{CheckMode: destroyCheck})
		return err
	})
	if runErr != nil {
		return cli.WrapAuth(runErr, client.Endpoint())
	}

	if err := renderSummary(cmd, printer, summary, "destroy"); err != nil {
		return err
	}
	return summaryError(summary)
}
