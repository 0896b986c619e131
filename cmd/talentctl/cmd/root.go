package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	token     string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "talentctl",
	Short: "TalentHub CLI - employer analytics from the terminal",
	Long: `talentctl talks to the recruitment backend's analytics endpoint and prints
the same summary the employer dashboard shows.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if token == "" {
			token = os.Getenv("TALENTHUB_API_TOKEN")
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8000/api/employer/analytics/", "Analytics endpoint URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token (also set via TALENTHUB_API_TOKEN)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests to stderr")
	rootCmd.AddCommand(analyticsCmd)
}
