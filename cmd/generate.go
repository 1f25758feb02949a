package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	bookster "github.com/opd-ai/bookster/src"
)

type detailsArgs struct {
	file    string
	details bookster.BookDetails
}

var (
	genArgs    detailsArgs
	regenArgs  detailsArgs
	regenTitle string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Draft a chapter outline",
	Long:  "Draft a chapter outline for a book and print it as JSON",
	RunE:  runGenerate,
}

var regenerateCmd = &cobra.Command{
	Use:   "regenerate",
	Short: "Write the text of one chapter",
	Long:  "Write the full text of one chapter of a book and print it",
	RunE:  runRegenerate,
}

func addDetailsFlags(cmd *cobra.Command, a *detailsArgs) {
	f := cmd.Flags()
	f.StringVarP(&a.file, "details", "d", "", "JSON file with the book details; flags override its fields")
	f.StringVarP(&a.details.Title, "title", "t", "", "book title")
	f.StringVar(&a.details.Subtitle, "subtitle", "", "book subtitle")
	f.StringVar(&a.details.Description, "description", "", "what the book is about")
	f.StringVar(&a.details.TargetAudience, "audience", "", "target audience")
	f.StringVar(&a.details.ToneStyle, "tone", "", "tone and style")
	f.StringVar(&a.details.Mission, "mission", "", "what readers should take away")
	f.StringVar(&a.details.Author, "author", "", "author name")
	f.IntVarP(&a.details.NumberOfChapters, "chapters", "n", 0, "number of chapters (default 5)")
}

func init() {
	addDetailsFlags(generateCmd, &genArgs)
	addDetailsFlags(regenerateCmd, &regenArgs)
	regenerateCmd.Flags().StringVar(&regenTitle, "chapter", "", "title of the chapter to write")

	RootCmd.AddCommand(generateCmd)
	RootCmd.AddCommand(regenerateCmd)
}

// consoleProgress prints generator progress messages.
type consoleProgress struct {
	w io.Writer
}

func (p consoleProgress) UpdateOutput(message string) {
	fmt.Fprintln(p.w, message)
}

// loadDetails reads the details file, if any, and lays the flag values over it.
func loadDetails(cmd *cobra.Command, a detailsArgs) (bookster.BookDetails, error) {
	var details bookster.BookDetails
	if a.file != "" {
		data, err := os.ReadFile(a.file)
		if err != nil {
			return details, fmt.Errorf("failed to read details: %w", err)
		}
		if err := json.Unmarshal(data, &details); err != nil {
			return details, fmt.Errorf("failed to parse details %s: %w", a.file, err)
		}
	}

	f := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if f.Changed(name) {
			*dst = v
		}
	}
	set("title", &details.Title, a.details.Title)
	set("subtitle", &details.Subtitle, a.details.Subtitle)
	set("description", &details.Description, a.details.Description)
	set("audience", &details.TargetAudience, a.details.TargetAudience)
	set("tone", &details.ToneStyle, a.details.ToneStyle)
	set("mission", &details.Mission, a.details.Mission)
	set("author", &details.Author, a.details.Author)
	if f.Changed("chapters") {
		details.NumberOfChapters = a.details.NumberOfChapters
	}
	return details, details.Validate()
}

func setupGenerator(cmd *cobra.Command) (*bookster.Generator, func() error, error) {
	prompts, closePrompts, err := newPromptStore(cmd.Context(), cfg.Prompts)
	if err != nil {
		return nil, nil, err
	}
	gen, err := newGenerator(cfg, prompts)
	if err != nil {
		closePrompts()
		return nil, nil, err
	}
	gen.SetProgress(consoleProgress{w: cmd.ErrOrStderr()})
	return gen, closePrompts, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	details, err := loadDetails(cmd, genArgs)
	if err != nil {
		return err
	}
	gen, closePrompts, err := setupGenerator(cmd)
	if err != nil {
		return err
	}
	defer closePrompts()

	chapters, err := gen.GenerateChapters(cmd.Context(), details)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(chapters)
}

func runRegenerate(cmd *cobra.Command, args []string) error {
	if regenTitle == "" {
		return fmt.Errorf("--chapter is required")
	}
	details, err := loadDetails(cmd, regenArgs)
	if err != nil {
		return err
	}
	gen, closePrompts, err := setupGenerator(cmd)
	if err != nil {
		return err
	}
	defer closePrompts()

	content, err := gen.RegenerateChapter(cmd.Context(), regenTitle, details)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), content)
	return err
}
