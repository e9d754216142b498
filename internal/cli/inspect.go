package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/config"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/ingest"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/relevance"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [text...]",
	Short: "Print the normalized tokens of a text",
	Long: `Normalize runs text through the same normalizer the extractor uses and
prints one token per line. Numbers are marked with '#', merged multi-word
names with their kind. Without arguments the text is read from stdin.

Example:
  jobfacts normalize "Gehalt ab EUR 3.500,- brutto"
  cat posting.txt | jobfacts normalize`,
	RunE: func(cmd *cobra.Command, args []string) error {
		comp, err := loadComponents()
		if err != nil {
			return err
		}
		text, err := argsOrStdin(cmd, args)
		if err != nil {
			return err
		}
		n := ingest.New(comp.Rules, comp.Stoplist, comp.Reference)
		printTokens(cmd.OutOrStdout(), n.Normalize(text), n.Phrase)
		return nil
	},
}

var filterCmd = &cobra.Command{
	Use:   "filter <title>",
	Short: "Check whether a job title passes the relevance filter",
	Long: `Filter prints whether a job title counts as an information security
role and which keyword groups it matched.

Example:
  jobfacts filter "IT Security Specialist (m/w/d)"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		comp, err := loadComponents()
		if err != nil {
			return err
		}
		title := strings.Join(args, " ")
		printRelevance(cmd.OutOrStdout(), relevance.New(comp.Rules.Relevance), title)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(filterCmd)
}

func loadComponents() (*config.Components, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.Loader().Load()
}

func argsOrStdin(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func printTokens(w io.Writer, tokens []ingest.Token, phrase func(string) (ingest.DictEntry, bool)) {
	for _, tok := range tokens {
		if tok.IsNumber() {
			fmt.Fprintf(w, "#%s\n", tok.Text)
			continue
		}
		if e, ok := phrase(tok.Text); ok {
			fmt.Fprintf(w, "%s\t[%s]\n", tok.Text, e.Category)
			continue
		}
		fmt.Fprintln(w, tok.Text)
	}
}

func printRelevance(w io.Writer, f *relevance.Filter, title string) {
	groups := f.Groups(title)
	if len(groups) == 0 {
		groups = []string{"-"}
	}
	fmt.Fprintf(w, "relevant: %t\n", f.Relevant(title))
	fmt.Fprintf(w, "groups:   %s\n", strings.Join(groups, ", "))
}
