package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	// start
	var at string
	startCmd := &cobra.Command{
		Use:   "start NAME",
		Short: "Start an activity, closing any open one",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{"name": strings.Join(args, " ")}
			if at != "" {
				payload["startAt"] = at
			}
			data, err := doPostJSON(fmt.Sprintf("%s/api/users/%d/activities", apiFlag, userFlag), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	startCmd.Flags().Int64VarP(&userFlag, "user", "u", 0, "Telegram user ID (required)")
	startCmd.Flags().StringVarP(&at, "at", "t", "", "Backdated start time (HH:MM, today)")
	_ = startCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(startCmd)

	// sleep
	sleepCmd := &cobra.Command{
		Use:   "sleep",
		Short: "Run the end-of-day transition and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doPostJSON(fmt.Sprintf("%s/api/users/%d/sleep", apiFlag, userFlag), nil)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	sleepCmd.Flags().Int64VarP(&userFlag, "user", "u", 0, "Telegram user ID (required)")
	_ = sleepCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(sleepCmd)

	// close-all
	closeAllCmd := &cobra.Command{
		Use:   "close-all",
		Short: "Force-close every open session",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doPostJSON(apiFlag+"/api/admin/close-open-sessions", nil)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	rootCmd.AddCommand(closeAllCmd)
}
