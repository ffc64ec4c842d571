package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roivaz/changelog-agent/internal/changelog"
	"github.com/roivaz/changelog-agent/internal/config"
	"github.com/roivaz/changelog-agent/internal/gitrepo"
	"github.com/roivaz/changelog-agent/internal/llm"
	"github.com/roivaz/changelog-agent/internal/logging"
	"github.com/roivaz/changelog-agent/internal/prompt"
	"github.com/roivaz/changelog-agent/internal/render"
	"github.com/roivaz/changelog-agent/internal/source"
)

var rootCmd = &cobra.Command{
	Use:   "changelog",
	Short: "Generate changelogs from git commits with an LLM",
}

var (
	flagFrom     string
	flagTo       string
	flagAuto     bool
	flagTemplate string
	flagOutput   string
	flagFormat   string
	flagGitHub   string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a changelog for a ref range",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := signalContext()
		logger := logging.New(logging.ForLevel(config.LogLevel())).WithName("generate")

		commits, err := collectCommits(ctx, logger)
		if err != nil {
			return err
		}
		logger.Info("commits to process", "count", len(commits))

		backend, err := llm.New(llm.Config{
			Provider:    config.LLMProvider(),
			Model:       config.LLMModel(),
			APIKey:      config.OpenAIAPIKey(),
			BaseURL:     config.OpenAIBaseURL(),
			OllamaURL:   config.OllamaURL(),
			CallTimeout: config.LLMTimeout(),
		})
		if err != nil {
			return err
		}

		template := ""
		if flagTemplate != "" {
			data, err := os.ReadFile(flagTemplate)
			if err != nil {
				return fmt.Errorf("read template file: %w", err)
			}
			template = string(data)
		}

		pipeline, err := changelog.New(changelog.Config{
			Backend:       backend,
			Prompts:       prompt.FromConfig(config.PromptsFile()),
			MaxDiffTokens: config.MaxDiffTokens(),
			Logger:        logger.Logr(),
			Progress: func(done, total int) {
				fmt.Fprintf(os.Stderr, "enriched %d/%d commits\n", done, total)
			},
		})
		if err != nil {
			return err
		}

		doc, err := pipeline.Run(ctx, toPipelineCommits(commits), template)
		if err != nil {
			return err
		}

		content := render.Markdown(doc)
		if flagFormat == "html" {
			content, err = render.HTML(doc)
			if err != nil {
				return err
			}
		}

		if flagOutput != "" {
			if err := os.WriteFile(flagOutput, []byte(content), 0o644); err != nil {
				return fmt.Errorf("write output file: %w", err)
			}
			logger.Info("changelog saved", "path", flagOutput)
			return nil
		}
		fmt.Print(content)
		return nil
	},
}

var commitsCmd = &cobra.Command{
	Use:   "commits <from> [to]",
	Short: "List commits between two references",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := signalContext()
		repo, err := openRepo(ctx)
		if err != nil {
			return err
		}

		to := "HEAD"
		if len(args) == 2 {
			to = args[1]
		}
		commits, err := repo.CommitsBetween(ctx, args[0], to)
		if err != nil {
			return err
		}
		if len(commits) == 0 {
			fmt.Println("no commits found in the specified range")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SHA\tMESSAGE\tAUTHOR\tDATE")
		for _, c := range commits {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", shortSHA(c.Hash), firstLine(c.Message, 60), c.Author, shortDate(c.Date))
		}
		return w.Flush()
	},
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List version tags in the repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := signalContext()
		repo, err := openRepo(ctx)
		if err != nil {
			return err
		}

		tags, err := repo.VersionTags(ctx)
		if err != nil {
			return err
		}
		if len(tags) == 0 {
			fmt.Println("no version tags found in repository")
			return nil
		}
		for i, tag := range tags {
			if i == 0 {
				fmt.Printf("%s (latest)\n", tag)
				continue
			}
			fmt.Println(tag)
		}
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show repository information",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := signalContext()
		repo, err := openRepo(ctx)
		if err != nil {
			return err
		}

		branch, err := repo.CurrentBranch(ctx)
		if err != nil {
			return err
		}
		latest, err := repo.LatestTag(ctx)
		if err != nil {
			return err
		}
		tags, err := repo.VersionTags(ctx)
		if err != nil {
			return err
		}

		remote := repo.RemoteURL(ctx)
		slug := ""
		if remote != "" {
			if owner, name, err := source.ParseRemote(remote); err == nil {
				slug = owner + "/" + name
			}
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Current Branch\t%s\n", branch)
		fmt.Fprintf(w, "Remote URL\t%s\n", orNA(remote))
		fmt.Fprintf(w, "GitHub Repo\t%s\n", orNA(slug))
		fmt.Fprintf(w, "Latest Tag\t%s\n", orNA(latest))
		fmt.Fprintf(w, "Version Tags\t%d\n", len(tags))
		return w.Flush()
	},
}

// collectCommits resolves the requested ref range against either the local
// repository or the GitHub API.
func collectCommits(ctx context.Context, logger logging.Logger) ([]gitrepo.Commit, error) {
	if flagGitHub != "" {
		owner, name, err := resolveGitHubRepo(ctx)
		if err != nil {
			return nil, err
		}
		if flagFrom == "" {
			return nil, fmt.Errorf("--from is required with --github")
		}
		logger.Info("fetching commits from GitHub", "repo", owner+"/"+name, "from", flagFrom, "to", flagTo)
		src := source.NewGitHubSource(source.NewClient(config.GitHubToken()), owner, name)
		return src.CommitsBetween(ctx, flagFrom, flagTo)
	}

	repo, err := openRepo(ctx)
	if err != nil {
		return nil, err
	}

	from := flagFrom
	if flagAuto {
		tag, err := repo.LatestTag(ctx)
		if err != nil {
			return nil, err
		}
		if tag == "" {
			return nil, fmt.Errorf("no version tags found in repository")
		}
		logger.Info("auto-detected latest tag", "tag", tag)
		from = tag
	}
	if from == "" {
		return nil, fmt.Errorf("must specify either --from or --auto")
	}
	return repo.CommitsBetween(ctx, from, flagTo)
}

// resolveGitHubRepo accepts an explicit owner/repo slug or, for
// --github=origin, derives it from the local origin remote.
func resolveGitHubRepo(ctx context.Context) (string, string, error) {
	if flagGitHub != "origin" {
		return source.ParseSlug(flagGitHub)
	}
	repo := gitrepo.New(config.RepoPath())
	remote := repo.RemoteURL(ctx)
	if remote == "" {
		return "", "", fmt.Errorf("no origin remote found in %s", config.RepoPath())
	}
	return source.ParseRemote(remote)
}

func openRepo(ctx context.Context) (*gitrepo.Repo, error) {
	repo := gitrepo.New(config.RepoPath())
	if !repo.IsRepo(ctx) {
		return nil, fmt.Errorf("%s is not a git repository", config.RepoPath())
	}
	return repo, nil
}

func toPipelineCommits(records []gitrepo.Commit) []changelog.Commit {
	commits := make([]changelog.Commit, 0, len(records))
	for _, rec := range records {
		commits = append(commits, changelog.Commit{Hash: rec.Hash, Message: rec.Message, Diff: rec.Diff})
	}
	return commits
}

func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() { <-sigs; cancel() }()
	return ctx
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}

func firstLine(message string, limit int) string {
	line := message
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	if utf8.RuneCountInString(line) <= limit {
		return line
	}
	runes := []rune(line)
	return string(runes[:limit]) + "..."
}

func shortDate(date string) string {
	if len(date) > 10 {
		return date[:10]
	}
	return date
}

func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}

func main() {
	rootCmd.PersistentFlags().StringP("repo", "r", ".", "path to git repository")
	config.Init(rootCmd)
	_ = viper.BindPFlag(config.KeyRepoPath, rootCmd.PersistentFlags().Lookup("repo"))

	generateCmd.Flags().StringVarP(&flagFrom, "from", "f", "", "starting reference (tag, branch, or SHA)")
	generateCmd.Flags().StringVarP(&flagTo, "to", "t", "HEAD", "ending reference (tag, branch, or SHA)")
	generateCmd.Flags().BoolVarP(&flagAuto, "auto", "a", false, "automatically start from the latest version tag")
	generateCmd.Flags().StringVar(&flagTemplate, "template", "", "path to a custom changelog template")
	generateCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output file path")
	generateCmd.Flags().StringVar(&flagFormat, "format", "markdown", "output format (markdown or html)")
	generateCmd.Flags().StringVar(&flagGitHub, "github", "", "fetch commits from GitHub: owner/repo, or 'origin' to use the local remote")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(commitsCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(infoCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("changelog: %v", err)
	}
}
