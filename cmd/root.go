package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Alturino/checkout/internal/common/constants"
	"github.com/Alturino/checkout/internal/log"
	paymentCmd "github.com/Alturino/checkout/payment/cmd"
)

func Start() {
	logger := log.InitLogger(os.Getenv("APPLICATION_LOG_PATH")).
		With().
		Str(log.KeyAppName, constants.AppMainCheckout).
		Str(log.KeyTag, "main Start").
		Logger()

	logger.Info().Msg("adding listener for SIGINT and SIGTERM")
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info().Msg("added listener for SIGINT and SIGTERM")

	c = logger.WithContext(c)

	rootCmd := &cobra.Command{Use: "checkout"}
	commands := []*cobra.Command{
		{
			Use:   "payment",
			Short: "Run payment service",
			Run: func(cmd *cobra.Command, args []string) {
				paymentCmd.RunPaymentService(cmd.Context())
			},
		},
		{
			Use:   "receipt",
			Short: "Run receipt listener",
			Run: func(cmd *cobra.Command, args []string) {
				paymentCmd.RunReceiptListener(cmd.Context())
			},
		},
		newQuoteCommand(),
	}
	rootCmd.AddCommand(commands...)
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
