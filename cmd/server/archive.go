package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"notekeeper/internal/archive"
	"notekeeper/internal/logger"
)

func (a *app) exportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write a tar.gz archive of all notes and settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, slots, err := a.open()
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer slots.Close()

			target := archive.FileName("export", time.Now())
			if len(args) == 1 {
				target = args[0]
			}

			buf, err := archive.New(slots, fs, zap.L()).Export()
			if err != nil {
				return err
			}
			if err := fs.WriteFile(target, buf.Bytes(), 0600); err != nil {
				return fmt.Errorf("failed to write %s: %w", target, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), target)
			return nil
		},
	}
}

func (a *app) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Restore notes and settings from an archive",
		Long: "Restore notes and settings from an archive written by export.\n" +
			"The current data is saved to a safety archive first. Stop a running\n" +
			"server before importing; it does not reload the store.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, slots, err := a.open()
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer slots.Close()

			data, err := fs.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			safety, err := archive.New(slots, fs, zap.L()).Import(data)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %s (previous data saved to %s)\n", args[0], safety)
			return nil
		},
	}
}
