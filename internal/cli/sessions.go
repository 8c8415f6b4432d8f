package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"certexam-engine/internal/config"
)

func newSessionsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and maintain saved exam sessions",
	}
	cmd.AddCommand(newSessionsListCmd(configPath))
	cmd.AddCommand(newSessionsCleanupCmd(configPath))
	cmd.AddCommand(newSessionsDeleteCmd(configPath))
	cmd.AddCommand(newSessionsExportCmd(configPath))
	cmd.AddCommand(newSessionsImportCmd(configPath))
	return cmd
}

func newSessionsListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			manager, closeStore, err := buildManager(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			metas, err := manager.ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			if len(metas) == 0 {
				fmt.Println("no saved sessions")
				return nil
			}
			for _, meta := range metas {
				state := "in-progress"
				if meta.IsCompleted {
					state = "completed"
				}
				fmt.Printf("%s  user=%s  %s  %s  answered %d/%d  last saved %s\n",
					meta.ID, meta.UserID, meta.ExamType, state,
					meta.AnsweredCount, meta.QuestionsCount,
					meta.LastSaved.Format(time.RFC3339))
			}
			return nil
		},
	}
}

func newSessionsCleanupCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired in-progress sessions and stale completed ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			manager, closeStore, err := buildManager(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			maxAge := config.TTLDuration(cfg.Retention.MaxSessionAge, 24*time.Hour)
			keepRecent := config.TTLDuration(cfg.Retention.CompletedKeep, 2*time.Hour)

			expired, err := manager.CleanupExpiredSessions(cmd.Context(), maxAge)
			if err != nil {
				return err
			}
			completed, err := manager.CleanupCompletedSessions(cmd.Context(), keepRecent)
			if err != nil {
				return err
			}
			fmt.Printf("removed %d expired and %d completed sessions\n", expired, completed)
			return nil
		},
	}
}

func newSessionsDeleteCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete one saved session and all its records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			manager, closeStore, err := buildManager(cfg)
			if err != nil {
				return err
			}
			defer closeStore()
			return manager.DeleteSession(cmd.Context(), args[0])
		},
	}
}

func newSessionsExportCmd(configPath *string) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Export a session with its questions and results to one document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			manager, closeStore, err := buildManager(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			doc, err := manager.ExportSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if outPath == "" {
				fmt.Println(string(doc))
				return nil
			}
			return os.WriteFile(outPath, doc, 0o644)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the document to a file instead of stdout")
	return cmd
}

func newSessionsImportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a previously exported session document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			manager, closeStore, err := buildManager(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			id, err := manager.ImportSession(cmd.Context(), raw)
			if err != nil {
				return err
			}
			fmt.Printf("imported session %s\n", id)
			return nil
		},
	}
}
