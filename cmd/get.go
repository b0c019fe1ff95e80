package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ccloudctl/internal/cli"
	"ccloudctl/internal/formatting"
	"ccloudctl/internal/resource"
)

var (
	getIDs         []string
	getNames       []string
	getOwners      []string
	getEmails      []string
	getPrincipals  []string
	getRoles       []string
	getTypes       []string
	getClasses     []string
	getEnvironment string
	getCluster     string
	getResourceURI string
	getOutput      string
	getQuiet       bool
)

// getKinds feeds shell completion for the kind argument.
var getKinds = []string{
	"environment",
	"cluster",
	"service-account",
	"api-key",
	"user",
	"role-binding",
	"connector",
}

// getCmd represents the get command.
var getCmd = &cobra.Command{
	Use:   "get <kind>",
	Short: "List Confluent Cloud resources",
	Long: `Get lists the resources of one kind, optionally narrowed by filters.

Available kinds:
  environment      Environments
  cluster          Kafka clusters, needs --environment
  service-account  Service accounts
  api-key          API keys (secrets are never part of listings)
  user             Organization members, accepted and invited
  role-binding     Role bindings, needs --resource-uri
  connector        Connectors, needs --environment and --cluster

Filter flags repeat: values of one flag match as alternatives, different
flags must all match. Kinds reject filters they do not support.

Examples:
  ccloudctl get environments
  ccloudctl get clusters --environment env-12345
  ccloudctl get api-keys --owner sa-67890
  ccloudctl get users --email alice@example.com --email bob@example.com
  ccloudctl get role-bindings --resource-uri "crn://confluent.cloud/organization=942..." --role OrganizationAdmin
  ccloudctl get connectors --environment env-12345 --cluster lkc-67890 -o json`,
	Args: cobra.ExactArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return getKinds, cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().StringArrayVar(&getIDs, "id", nil, "Match resource id (repeatable)")
	getCmd.Flags().StringArrayVar(&getNames, "name", nil, "Match display name (repeatable)")
	getCmd.Flags().StringArrayVar(&getOwners, "owner", nil, "Match owning principal id (repeatable)")
	getCmd.Flags().StringArrayVar(&getEmails, "email", nil, "Match member email (repeatable)")
	getCmd.Flags().StringArrayVar(&getPrincipals, "principal", nil, "Match role binding principal (repeatable)")
	getCmd.Flags().StringArrayVar(&getRoles, "role", nil, "Match role name (repeatable)")
	getCmd.Flags().StringArrayVar(&getTypes, "type", nil, "Match cluster type (repeatable)")
	getCmd.Flags().StringArrayVar(&getClasses, "class", nil, "Match connector class (repeatable)")
	getCmd.Flags().StringVar(&getEnvironment, "environment", "", "Environment scope for cluster and connector listings")
	getCmd.Flags().StringVar(&getCluster, "cluster", "", "Cluster scope for connector listings")
	getCmd.Flags().StringVar(&getResourceURI, "resource-uri", "", "CRN pattern scope for role binding listings")
	getCmd.Flags().StringVarP(&getOutput, "output", "o", "table", "Output format (table, wide, json, yaml)")
	getCmd.Flags().BoolVarP(&getQuiet, "quiet", "q", false, "Suppress the progress spinner")
}

func runGet(cmd *cobra.Command, args []string) error {
	format, err := formatting.ParseOutputFormat(getOutput)
	if err != nil {
		return err
	}

	client, err := connection.Client(GetVersion())
	if err != nil {
		return err
	}

	module, err := resource.DefaultRegistry(client).Get(args[0])
	if err != nil {
		return err
	}

	filters := resource.Filters{
		IDs:         getIDs,
		Names:       getNames,
		Owners:      getOwners,
		Emails:      getEmails,
		Principals:  getPrincipals,
		Roles:       getRoles,
		Types:       getTypes,
		Classes:     getClasses,
		Environment: getEnvironment,
		Cluster:     getCluster,
		CRNPattern:  getResourceURI,
	}

	printer := formatting.NewPrinter(cmd.OutOrStdout(), format)
	quiet := getQuiet || printer.Structured()

	var records []resource.Record
	listErr := cli.WithSpinner(quiet, fmt.Sprintf("Listing %ss...", module.Kind()), func() error {
		var err error
		records, err = module.List(cmd.Context(), filters)
		return err
	})
	if listErr != nil {
		return cli.WrapAuth(listErr, client.Endpoint())
	}

	if printer.Structured() {
		objects := make([]any, 0, len(records))
		for _, record := range records {
			objects = append(objects, record.Object)
		}
		return printer.Encode(objects)
	}

	if len(records) == 0 {
		printer.Empty(fmt.Sprintf("No %ss found", module.Kind()))
		return nil
	}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, record.Row)
	}
	printer.Table(module.Columns(), rows)
	return nil
}
