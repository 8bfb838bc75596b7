package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	// stats
	var date string
	var detailed bool
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show a day's aggregated report",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if date != "" {
				q.Set("date", date)
			}
			if detailed {
				q.Set("detailed", "true")
			}
			u := fmt.Sprintf("%s/api/users/%d/stats", apiFlag, userFlag)
			if enc := q.Encode(); enc != "" {
				u += "?" + enc
			}
			data, err := doGet(u)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	statsCmd.Flags().Int64VarP(&userFlag, "user", "u", 0, "Telegram user ID (required)")
	statsCmd.Flags().StringVarP(&date, "date", "d", "", "Day to report (YYYY-MM-DD, defaults to today)")
	statsCmd.Flags().BoolVar(&detailed, "detailed", false, "Include the per-interval timeline")
	_ = statsCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(statsCmd)

	// session
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Show the user's open session, if any",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(fmt.Sprintf("%s/api/users/%d/session", apiFlag, userFlag))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	sessionCmd.Flags().Int64VarP(&userFlag, "user", "u", 0, "Telegram user ID (required)")
	_ = sessionCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(sessionCmd)
}
