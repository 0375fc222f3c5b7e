// Command regraft rewrites source files through lossless syntax trees.
// Files are parsed into trees that retain every byte of formatting,
// matched against a code pattern, rewritten from a template, and either
// written back atomically or staged in a local database for review.
package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/datatypes"

	"github.com/oxhq/regraft/core"
	"github.com/oxhq/regraft/db"
	"github.com/oxhq/regraft/internal/config"
	"github.com/oxhq/regraft/internal/scanner"
	"github.com/oxhq/regraft/models"
	"github.com/oxhq/regraft/parse"
)

var (
	flagDB      string
	flagDebug   bool
	flagWorkers int

	flagInclude     []string
	flagExclude     []string
	flagNoGitignore bool
	flagMaxBytes    int64

	flagMatch   string
	flagRewrite string
	flagWrite   bool
	flagDiff    bool

	flagCommitAll bool
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	root := &cobra.Command{
		Use:           "regraft",
		Short:         "Lossless tree-based code rewriting",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagDB, "db", cfg.DatabaseURL, "staging database (file path or libsql URL)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", cfg.Debug, "verbose SQL and diagnostics")
	root.PersistentFlags().IntVar(&flagWorkers, "workers", cfg.Workers, "parallel file workers")

	root.AddCommand(newParseCmd(), newApplyCmd(cfg), newStagesCmd(), newCommitCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newScanner() *scanner.Scanner {
	return scanner.New(scanner.Config{
		MaxBytes:     flagMaxBytes,
		IncludeGlobs: flagInclude,
		ExcludeGlobs: flagExclude,
		NoGitignore:  flagNoGitignore,
		Extensions:   parse.RubyConfig{}.Extensions(),
	})
}

func newProcessor() *core.Processor {
	p := core.NewProcessor(parse.RubyConfig{})
	p.SetWorkers(flagWorkers)
	return p
}

func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&flagInclude, "include", nil, "include file patterns (glob)")
	cmd.Flags().StringSliceVar(&flagExclude, "exclude", nil, "exclude file patterns (glob)")
	cmd.Flags().BoolVar(&flagNoGitignore, "no-gitignore", false, "disable .gitignore filtering")
	cmd.Flags().Int64Var(&flagMaxBytes, "max-bytes", 5*1024*1024, "maximum file size to process")
}

// newParseCmd checks that every discovered file survives a parse/print
// round trip unchanged. A dirty file means its tree would not reproduce
// the original bytes, so rewriting it is unsafe.
func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [targets...]",
		Short: "Parse files and verify lossless round-tripping",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			paths, err := newScanner().ScanTargets(cmd.Context(), args)
			if err != nil {
				return err
			}
			results := newProcessor().VerifyFiles(cmd.Context(), paths)

			clean, dirty, failed := 0, 0, 0
			for _, r := range results {
				switch {
				case r.Err != nil:
					failed++
					fmt.Fprintf(os.Stderr, "FAIL  %s: %v\n", r.Path, r.Err)
				case r.Clean:
					clean++
					if flagDebug {
						fmt.Printf("ok    %s\n", r.Path)
					}
				default:
					dirty++
					fmt.Printf("DIRTY %s\n", r.Path)
					if flagDiff || flagDebug {
						fmt.Print(r.Diff)
					}
				}
			}
			fmt.Printf("%d files: %d clean, %d dirty, %d failed\n", len(results), clean, dirty, failed)
			if dirty > 0 || failed > 0 {
				return fmt.Errorf("%d files did not round-trip", dirty+failed)
			}
			return nil
		},
	}
	addScanFlags(cmd)
	cmd.Flags().BoolVar(&flagDiff, "diff", false, "print round-trip diffs for dirty files")
	return cmd
}

// newApplyCmd matches a pattern across the targets and rewrites every
// hit. By default results are staged in the database for review;
// --write skips staging and writes files directly.
func newApplyCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply [targets...]",
		Short: "Match a pattern and rewrite, staging results for review",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagMatch == "" || flagRewrite == "" {
				return fmt.Errorf("both --match and --rewrite are required")
			}
			if len(args) == 0 {
				args = []string{"."}
			}
			paths, err := newScanner().ScanTargets(cmd.Context(), args)
			if err != nil {
				return err
			}

			op := core.RewriteOp{Match: flagMatch, Rewrite: flagRewrite, DryRun: !flagWrite}
			results, err := newProcessor().RewriteFiles(cmd.Context(), paths, op)
			if err != nil {
				return err
			}

			var store *db.StageStore
			if !flagWrite {
				database, err := db.Connect(flagDB, flagDebug)
				if err != nil {
					return err
				}
				store = db.NewStageStore(database)
			}

			modified, failed := 0, 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					fmt.Fprintf(os.Stderr, "FAIL  %s: %v\n", r.Path, r.Err)
					continue
				}
				if r.MatchCount == 0 {
					continue
				}
				modified++
				fmt.Printf("%s: %d match(es)\n", r.Path, r.MatchCount)
				if flagDiff || flagDebug {
					fmt.Print(r.Diff)
				}
				if store == nil {
					continue
				}
				id, err := stageResult(store, cfg, op, r)
				if err != nil {
					return err
				}
				fmt.Printf("  staged %s\n", id)
			}
			fmt.Printf("%d files scanned, %d modified, %d failed\n", len(results), modified, failed)
			if failed > 0 {
				return fmt.Errorf("%d files failed", failed)
			}
			return nil
		},
	}
	addScanFlags(cmd)
	cmd.Flags().StringVarP(&flagMatch, "match", "m", "", "code pattern with #{} placeholders (required)")
	cmd.Flags().StringVarP(&flagRewrite, "rewrite", "r", "", "replacement template (required)")
	cmd.Flags().BoolVar(&flagWrite, "write", false, "write files directly instead of staging")
	cmd.Flags().BoolVar(&flagDiff, "diff", false, "print unified diffs")
	return cmd
}

func stageResult(store *db.StageStore, cfg config.Config, op core.RewriteOp, r core.RewriteResult) (string, error) {
	original, err := os.ReadFile(r.Path)
	if err != nil {
		return "", err
	}
	var bindings datatypes.JSON
	if r.Bindings != nil {
		raw, err := json.Marshal(r.Bindings)
		if err != nil {
			return "", err
		}
		bindings = datatypes.JSON(raw)
	}
	return store.Create(&models.Stage{
		Language:        parse.RubyConfig{}.Language(),
		MatchPattern:    op.Match,
		RewriteTemplate: op.Rewrite,
		Path:            r.Path,
		Original:        string(original),
		Modified:        r.Modified,
		Diff:            r.Diff,
		BaseDigest:      r.BaseDigest,
		AfterDigest:     r.NewDigest,
		Bindings:        bindings,
		MatchCount:      r.MatchCount,
		ExpiresAt:       time.Now().Add(cfg.StagingTTL),
	})
}

func newStagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stages",
		Short: "List pending staged rewrites",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Connect(flagDB, flagDebug)
			if err != nil {
				return err
			}
			stages, err := db.NewStageStore(database).Pending()
			if err != nil {
				return err
			}
			if len(stages) == 0 {
				fmt.Println("no pending stages")
				return nil
			}
			for _, s := range stages {
				fmt.Printf("%s  %s  %d match(es)  expires %s\n",
					s.ID, s.Path, s.MatchCount, s.ExpiresAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}

// newCommitCmd writes staged content to disk. The target file must
// still hash to the stage's base digest; anything else means the file
// changed underneath the stage and the commit is refused.
func newCommitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit [stage-id...]",
		Short: "Write staged rewrites to disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Connect(flagDB, flagDebug)
			if err != nil {
				return err
			}
			store := db.NewStageStore(database)

			ids := args
			if flagCommitAll {
				pending, err := store.Pending()
				if err != nil {
					return err
				}
				for _, s := range pending {
					ids = append(ids, s.ID)
				}
			}
			if len(ids) == 0 {
				return fmt.Errorf("no stage IDs given (use --all to commit every pending stage)")
			}

			writer := core.NewAtomicWriter(core.DefaultAtomicConfig())
			for _, id := range ids {
				stage, err := store.Get(id)
				if err != nil {
					return err
				}
				if stage.Status != "pending" {
					return fmt.Errorf("stage %s is %s, not pending", id, stage.Status)
				}
				current, err := os.ReadFile(stage.Path)
				if err != nil {
					return err
				}
				if sum := sha256.Sum256(current); hex.EncodeToString(sum[:]) != stage.BaseDigest {
					return fmt.Errorf("%s changed since staging; refusing to commit %s", stage.Path, id)
				}
				if err := writer.WriteFile(stage.Path, stage.Modified); err != nil {
					return err
				}
				if err := store.MarkApplied(id); err != nil {
					return err
				}
				fmt.Printf("committed %s -> %s\n", id, stage.Path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&flagCommitAll, "all", false, "commit every pending stage")
	return cmd
}
