package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"quiz-engine/internal/app"
)

// NewDeleteCmd removes a quiz together with its submissions.
func NewDeleteCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <quiz-id>",
		Short: "Delete a quiz and every answer given to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quizID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid quiz id %q", args[0])
			}
			return withStack(cmd.Context(), *configPath, func(service *app.QuizService) error {
				if err := service.DeleteQuiz(cmd.Context(), quizID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted quiz %d\n", quizID)
				return nil
			})
		},
	}
}
