package main

import (
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/yeremiapane/restaurant-pos/config"
	"github.com/yeremiapane/restaurant-pos/utils"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "restaurant-pos",
	Short: "Point-of-sale console for restaurant staff",
	Long: `restaurant-pos serves the staff console: carts, order status, table
release and the live feed, on top of the restaurant REST backend.

Run "restaurant-pos devbackend" for a local stand-in backend.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		utils.InitLogger(cfg.LogLevel)
		return nil
	},
}

func init() {
	// money goes over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	rootCmd.AddCommand(serveCmd, devBackendCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
