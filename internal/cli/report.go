package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// NewReportCmd prints every quiz with its completed participants and band distribution.
func NewReportCmd(configPath *string) *cobra.Command {
	var quizID int64
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print participant scores and percentage bands",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStack(cmd.Context(), *configPath, func(service *app.QuizService) error {
				return writeReport(cmd.Context(), cmd.OutOrStdout(), service, quizID)
			})
		},
	}
	cmd.Flags().Int64Var(&quizID, "quiz", 0, "only report this quiz")
	return cmd
}

func writeReport(ctx context.Context, w io.Writer, service *app.QuizService, only int64) error {
	quizzes, err := service.ListQuizzes(ctx)
	if err != nil {
		return err
	}
	if only != 0 {
		filtered := quizzes[:0]
		for _, q := range quizzes {
			if q.ID == only {
				filtered = append(filtered, q)
			}
		}
		if len(filtered) == 0 {
			return fmt.Errorf("quiz %d: %w", only, domain.ErrQuizNotFound)
		}
		quizzes = filtered
	}
	if len(quizzes) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no quizzes"))
		return nil
	}

	for _, quiz := range quizzes {
		stats, err := service.GetQuizStatistics(ctx, quiz.ID)
		if err != nil {
			return fmt.Errorf("statistics for quiz %d: %w", quiz.ID, err)
		}
		fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("#%d %s", quiz.ID, quiz.Name)))
		fmt.Fprintln(w, renderParticipants(stats))
		fmt.Fprintln(w, renderBands(stats))
	}
	return nil
}

func renderParticipants(stats domain.Statistics) string {
	if len(stats.Completed) == 0 {
		return mutedStyle.Render("  nobody has completed this quiz yet")
	}
	participants := make([]string, 0, len(stats.Completed))
	for p := range stats.Completed {
		participants = append(participants, p)
	}
	sort.Strings(participants)

	t := newTable("participant", "correct", "score")
	for _, p := range participants {
		score := app.CalculateScore(stats.Completed[p])
		t.Row(p, strconv.Itoa(score.Count)+"/"+strconv.Itoa(len(stats.Completed[p])), formatPercent(score.Percentage))
	}
	return t.String()
}

func renderBands(stats domain.Statistics) string {
	t := newTable("band", "participants", "share")
	for _, band := range stats.Ranges {
		t.Row(fmt.Sprintf("%d-%d%%", band.Min, band.Max), strconv.Itoa(band.Count), strconv.Itoa(band.Percentage)+"%")
	}
	return t.String()
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64) + "%"
}
