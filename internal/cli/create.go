package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
)

// NewCreateCmd loads a quiz definition from YAML and stores it.
func NewCreateCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a quiz from a YAML definition",
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := readDraft(file)
			if err != nil {
				return err
			}
			return withStack(cmd.Context(), *configPath, func(service *app.QuizService) error {
				return createQuiz(cmd.Context(), service, draft, cmd)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "quiz definition in YAML")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func createQuiz(ctx context.Context, service *app.QuizService, draft domain.QuizDraft, cmd *cobra.Command) error {
	quiz, err := service.CreateQuiz(ctx, draft)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created quiz %d %q\n", quiz.ID, quiz.Name)
	return nil
}

func readDraft(path string) (domain.QuizDraft, error) {
	var draft domain.QuizDraft
	data, err := os.ReadFile(path)
	if err != nil {
		return draft, err
	}
	if err := yaml.Unmarshal(data, &draft); err != nil {
		return draft, fmt.Errorf("parse %s: %w", path, err)
	}
	return draft, draft.Validate()
}
