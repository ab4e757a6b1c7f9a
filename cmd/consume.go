package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/groupmail/groupmail-services/internal/events"
	identity "github.com/groupmail/groupmail-services/internal/services"
	"github.com/groupmail/groupmail-services/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Run the Pulsar consumer to process group join requests",
	Run: func(cmd *cobra.Command, args []string) {

		// Load the config, initialize the database and set up logging
		commonSetUp()
		defer identityDB.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		identitySvc, publisher, err := newIdentityService(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize identity service")
		}
		defer publisher.Close()

		// Initialize event consumer
		logger := log.With().Str("component", "consumer").Logger()
		consumer, err := events.NewJoinConsumer(appCfg.Pulsar.URL, appCfg.Pulsar.TopicConsumer, appCfg.Pulsar.Subscription, &logger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize event consumer")
		}
		defer consumer.Close()

		err = consumer.Run(ctx, joinHandler(identitySvc))
		log.Info().Err(err).Msg("Consumer stopped")
	},
}

func init() {
	rootCmd.AddCommand(consumeCmd)
}

// joinHandler joins the requested group. Only infrastructure and
// mailing-list failures are worth redelivering.
func joinHandler(svc *identity.Service) events.JoinHandler {
	return func(ctx context.Context, req models.JoinRequest) (bool, error) {
		_, err := svc.JoinGroup(ctx, identity.JoinInput{Name: req.Name, Code: req.Code, Email: req.Email})
		if err == nil {
			return false, nil
		}
		kind := identity.KindOf(err)
		return kind == identity.KindUnknown || kind == identity.KindExternalService, err
	}
}
