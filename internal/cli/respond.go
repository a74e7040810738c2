package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"survey-response-service/internal/app"
	"survey-response-service/internal/client"
	"survey-response-service/internal/config"
	"survey-response-service/internal/domain"
)

// NewRespondCmd walks a survey interactively in the terminal, against a
// remote service, the same way external respondent clients do.
func NewRespondCmd(configPath *string) *cobra.Command {
	var (
		backendURL   string
		respondentID string
	)
	cmd := &cobra.Command{
		Use:   "respond <public-id>",
		Short: "Answer a survey interactively over its public link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := backendURL
			if url == "" {
				if cfg, err := config.Load(*configPath); err == nil {
					url = cfg.Backend.URL
				}
			}
			if url == "" {
				url = "http://localhost:8080"
			}
			return runRespond(cmd.Context(), url, args[0], respondentID)
		},
	}
	cmd.Flags().StringVar(&backendURL, "backend-url", "", "base URL of the survey service")
	cmd.Flags().StringVar(&respondentID, "respondent", "", "respondent id (optional, enables duplicate detection)")
	return cmd
}

func runRespond(ctx context.Context, backendURL, publicID, respondentID string) error {
	backend := client.NewHTTPBackend(backendURL)
	session := app.NewResponseSession(backend, publicID, respondentID)

	step, err := session.Start(ctx)
	if err != nil {
		return fmt.Errorf("%s", step.Message)
	}

	fmt.Printf("%s\n\n", session.Survey().Topic)
	scanner := bufio.NewScanner(os.Stdin)

	for {
		printQuestion(step)
		if !scanner.Scan() {
			return scanner.Err()
		}

		step, err = session.SubmitAnswer(ctx, scanner.Text())
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrEmptyAnswer):
			fmt.Println("Please enter an answer.")
			continue
		default:
			if step.Status == app.StatusRejected {
				fmt.Printf("Submission declined: %s\n", step.Message)
				return nil
			}
			fmt.Printf("%s, press enter to retry\n", step.Message)
			if !scanner.Scan() {
				return scanner.Err()
			}
			step, err = session.Retry(ctx)
			if err != nil {
				if step.Status == app.StatusRejected {
					fmt.Printf("Submission declined: %s\n", step.Message)
					return nil
				}
				continue
			}
		}

		if step.Status == app.StatusCompleted {
			fmt.Println("Thank you! Your answers have been submitted.")
			return nil
		}
	}
}

func printQuestion(step app.Step) {
	q := step.Question
	if q == nil {
		return
	}
	fmt.Printf("[%d/%d] %s\n", step.Index+1, step.Total, q.Text)

	switch q.EffectiveType() {
	case domain.QuestionMultipleChoice:
		for _, option := range q.Options {
			fmt.Printf("  - %s\n", option)
		}
	case domain.QuestionRating:
		fmt.Printf("  (enter a number between 1 and %d)\n", q.RatingScale())
	case domain.QuestionRanking:
		fmt.Printf("  (rank by listing items comma-separated: %s)\n", strings.Join(q.Items, ", "))
	case domain.QuestionImageChoice:
		for _, img := range q.Images {
			fmt.Printf("  - %s (%s)\n", img.Label, img.URL)
		}
	}
	fmt.Print("> ")
}
