package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spicery/swagcod/pkg/tokenizer"
	"gopkg.in/yaml.v3"
)

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the default rules as a YAML rules file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(tokenizer.DefaultRules())
			if err != nil {
				return fmt.Errorf("marshal rules: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
