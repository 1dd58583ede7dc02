package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	flagFeedback string
	flagPlain    bool
)

var dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the indexed codebase",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")

		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		cfg, err := loadConfig(wd)
		if err != nil {
			return err
		}
		if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
			return fmt.Errorf("index not found at %s\nRun 'codesage index' first to build the index", cfg.DBPath)
		}

		svc, st, err := newService(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		fmt.Fprintln(os.Stderr, dimStyle.Render("Searching..."))

		answer, err := svc.QueryWithFeedback(cmd.Context(), question, flagFeedback)
		if err != nil {
			return err
		}

		if flagPlain {
			fmt.Println(answer)
			return nil
		}

		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err != nil {
			fmt.Println(answer)
			return nil
		}
		rendered, err := r.Render(answer)
		if err != nil {
			fmt.Println(answer)
			return nil
		}
		fmt.Print(rendered)
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&flagFeedback, "feedback", "", "feedback on a previous answer, folded into the prompt")
	askCmd.Flags().BoolVar(&flagPlain, "plain", false, "print the raw answer without markdown rendering")
	rootCmd.AddCommand(askCmd)
}
