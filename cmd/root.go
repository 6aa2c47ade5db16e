package cmd

import (
	"github.com/carousell/ct-go/pkg/logger/log"
	"github.com/spf13/cobra"

	"github.com/incidentkit/chat-bridge/internal/app"
	"github.com/incidentkit/chat-bridge/internal/bridge"
	"github.com/incidentkit/chat-bridge/internal/kafka"
	"github.com/incidentkit/chat-bridge/internal/server"
)

var rootCmd = &cobra.Command{
	Use:           "chat-bridge",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the messaging server",
	Run: func(cmd *cobra.Command, args []string) {
		app.Invoke(
			server.StartServer,
			kafka.StartConsumer,
		).Run()
	},
}

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Run the stateless bot bridge",
	Run: func(cmd *cobra.Command, args []string) {
		app.InvokeBridge(
			bridge.StartServer,
		).Run()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd, bridgeCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
