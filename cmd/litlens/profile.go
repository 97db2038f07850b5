package main

import (
	"github.com/abdulachik/litlens/internal/profile"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Print the built-in profile",
	Long: `Print the embedded default profile as YAML. Save it, edit it and point
PROFILE_PATH at the copy to change the instructions, labels or theme.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := cmd.OutOrStdout().Write(profile.DefaultYAML())
		return err
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
}
