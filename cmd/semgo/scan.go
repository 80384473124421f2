package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/semgo/internal/adapter"
	adaptergo "github.com/oxhq/semgo/internal/adapter/golang"
	adapterjs "github.com/oxhq/semgo/internal/adapter/javascript"
	adapterpy "github.com/oxhq/semgo/internal/adapter/python"
	"github.com/oxhq/semgo/internal/engine"
	"github.com/oxhq/semgo/internal/result"
	"github.com/oxhq/semgo/internal/rule"
)

func newScanCmd() *cobra.Command {
	var (
		patternText string
		language    string
		ruleID      string
		message     string
		severity    string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "scan [files...]",
		Short: "Match a pattern against one or more source files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if patternText == "" {
				return fmt.Errorf("--pattern is required")
			}
			if len(args) == 0 {
				return fmt.Errorf("at least one file argument is required")
			}

			r := rule.Rule{
				ID:        ruleID,
				Languages: []string{language},
				Severity:  rule.Severity(severity),
				Message:   message,
				Pattern:   rule.PatternSpec{Pattern: patternText},
				Enabled:   true,
			}
			if language == "" {
				r.Languages = []string{"*"}
			}

			registry := buildRegistry()

			files := make([]engine.File, 0, len(args))
			for _, path := range args {
				src, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				files = append(files, engine.File{Path: path, Source: src, Lang: language})
			}

			eng := engine.New(registry)
			findings, err := eng.AnalyzeFiles(cmd.Context(), []rule.Rule{r}, files)
			if err != nil {
				return err
			}
			return printFindings(findings, jsonOutput)
		},
	}

	cmd.SetContext(context.Background())
	cmd.Flags().StringVarP(&patternText, "pattern", "p", "", "Pattern to match (required)")
	cmd.Flags().StringVarP(&language, "lang", "l", envOrDefault("SEMGO_LANG", ""), "Language (auto-detected from file extension if omitted)")
	cmd.Flags().StringVar(&ruleID, "id", envOrDefault("SEMGO_RULE_ID", "adhoc"), "Rule identifier to report")
	cmd.Flags().StringVarP(&message, "message", "m", envOrDefault("SEMGO_MESSAGE", "pattern matched"), "Message to report on each finding")
	cmd.Flags().StringVarP(&severity, "severity", "s", envOrDefault("SEMGO_SEVERITY", string(rule.SeverityWarning)), "Severity to report")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output findings as JSON")

	return cmd
}

// envOrDefault returns the named environment variable's value, or fallback
// if it is unset. Populated from a loaded .env file as well as the real
// process environment, so scan's flag defaults can be overridden per
// project without editing invocation scripts.
func envOrDefault(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

func buildRegistry() *adapter.Registry {
	registry := adapter.NewRegistry()
	_ = registry.Register(adaptergo.New())
	_ = registry.Register(adapterpy.New())
	_ = registry.Register(adapterjs.New())
	return registry
}

func printFindings(findings []result.Finding, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(findings)
	}
	for _, f := range findings {
		fmt.Printf("%s:%d:%d: [%s] %s (%s)\n",
			f.Location.File, f.Location.StartLine, f.Location.StartCol,
			f.Severity, f.Message, f.RuleID)
	}
	return nil
}
