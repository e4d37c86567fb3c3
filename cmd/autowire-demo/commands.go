// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-autowire/internal/demo"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	logLevel    string
	phoneNumber string
}

func newRootCommand(out, errOut io.Writer) *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:           "autowire-demo",
		Short:         "Demonstrate the ways autowire supplies constructor parameters",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn",
		"log level: trace, debug, info, warn or error")
	cmd.PersistentFlags().StringVar(&flags.phoneNumber, "phone-number", "",
		"phone number given at resolution time (random if empty)")

	for _, s := range demo.Scenarios {
		cmd.AddCommand(newScenarioCommand(s, &flags))
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "all",
		Short: "Run every scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, s := range demo.Scenarios {
				fmt.Fprintf(cmd.OutOrStdout(), "==> %s\n", s.Name)
				if err := runScenario(cmd, s, &flags); err != nil {
					return err
				}
			}

			return nil
		},
	})

	return cmd
}

func newScenarioCommand(s demo.Scenario, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   s.Name,
		Short: s.Short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScenario(cmd, s, flags)
		},
	}
}

func runScenario(cmd *cobra.Command, s demo.Scenario, flags *rootFlags) error {
	level := hclog.LevelFromString(flags.logLevel)
	if level == hclog.NoLevel {
		return fmt.Errorf("invalid log level %q", flags.logLevel)
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "autowire-demo",
		Level:  level,
		Output: cmd.ErrOrStderr(),
	})

	err := s.Run(demo.Options{
		Out:         cmd.OutOrStdout(),
		Logger:      logger,
		PhoneNumber: flags.phoneNumber,
	})
	if err != nil {
		logger.Error("scenario failed", "scenario", s.Name, "error", err)
		return fmt.Errorf("%s: %w", s.Name, err)
	}

	return nil
}
