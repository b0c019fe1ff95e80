package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ccloudctl/internal/cli"
)

var pingQuiet bool

// pingCmd represents the ping command.
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Verify connectivity and credentials",
	Long: `Ping makes one authenticated request against the control plane and
reports whether the endpoint is reachable and the credentials work.
Rejected credentials exit with code 2.`,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().BoolVarP(&pingQuiet, "quiet", "q", false, "Suppress the progress spinner")
}

func runPing(cmd *cobra.Command, args []string) error {
	client, err := connection.Client(GetVersion())
	if err != nil {
		return err
	}

	err = cli.WithSpinner(pingQuiet, "Pinging "+client.Endpoint()+"...", func() error {
		return client.Ping(cmd.Context())
	})
	if err != nil {
		return cli.WrapAuth(err, client.Endpoint())
	}

	fmt.Fprintf(cmd.OutOrStdout(), "pong from %s\n", client.Endpoint())
	return nil
}
