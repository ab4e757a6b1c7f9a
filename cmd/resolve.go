package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/groupmail/groupmail-services/db"
	identity "github.com/groupmail/groupmail-services/internal/services"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve-list <sender> <list>",
	Short: "Print the internal mailing list for a message sent to a group",
	Long: `Maps the public group name a message was addressed to onto the internal
mailing list name, provided the sender is a member of the group. The mail
server calls this before delivering a message to a list.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {

		// Load the config, initialize the database and set up logging
		commonSetUp()
		defer identityDB.Close()

		return resolveList(context.Background(), lookupService(identityDB), cmd.OutOrStdout(), args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

// lookupService builds an identity service for read-only queries. It needs
// no mailing-list, notification, token or event configuration.
func lookupService(store *db.IdentityDB) *identity.Service {
	logger := log.With().Str("component", "identity").Logger()
	return &identity.Service{Store: store, Log: &logger}
}

func resolveList(ctx context.Context, svc *identity.Service, out io.Writer, sender, list string) error {
	name, err := svc.ResolveListName(ctx, sender, list)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, name)
	return err
}
