package cmd

import (
	"github.com/psds-microservice/arm-service-desk/internal/application"
	"github.com/spf13/cobra"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Run the desk API server",
	RunE:  runAPI,
}

func runAPI(cmd *cobra.Command, args []string) error {
	app, err := application.NewAPI(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	return app.Run(cmd.Context())
}
