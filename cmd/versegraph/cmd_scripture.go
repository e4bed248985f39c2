package main

import (
	"fmt"
	"strings"

	"versegraph/domain/gazetteer"
	"versegraph/domain/scripture"

	"github.com/spf13/cobra"
)

type parseResult struct {
	Input     string               `json:"input"`
	Reference *scripture.Reference `json:"reference,omitempty"`
	Formatted string               `json:"formatted,omitempty"`
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <ref>...",
		Short: "Parse scripture references",
		Long: `Parse each argument as a scripture reference and print its canonical form.

Examples:
  versegraph parse "John 3:16" "1 Cor 13:4-7" Psalms`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]parseResult, 0, len(args))
			for _, arg := range args {
				res := parseResult{Input: arg}
				if ref, ok := scripture.Parse(arg); ok {
					res.Reference = &ref
					res.Formatted = scripture.Format(ref)
				}
				results = append(results, res)
			}

			if jsonOutput(cmd) {
				return encodeJSON(cmd, results)
			}

			for _, res := range results {
				if res.Reference == nil {
					printf(cmd, warn, "%-24s not a reference\n", res.Input)
					continue
				}
				printf(cmd, good, "%-24s %s", res.Input, res.Formatted)
				printf(cmd, faint, "  (book=%s chapter=%d)\n", res.Reference.Book, res.Reference.Chapter)
			}
			return nil
		},
	}
}

func newEntitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entities <text>",
		Short: "Detect biblical people and places in text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			people := gazetteer.FindPeopleInText(text)
			places := gazetteer.FindPlacesInText(text)

			if jsonOutput(cmd) {
				return encodeJSON(cmd, map[string]interface{}{
					"people": people,
					"places": places,
				})
			}

			printf(cmd, heading, "People (%d)\n", len(people))
			for _, p := range people {
				printf(cmd, nil, "  %s", p.Name)
				printf(cmd, faint, "  %s\n", p.Role)
			}
			printf(cmd, heading, "Places (%d)\n", len(places))
			for _, p := range places {
				printf(cmd, nil, "  %s", p.Name)
				printf(cmd, faint, "  %s\n", p.Region)
			}
			if len(people)+len(places) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "nothing detected")
			}
			return nil
		},
	}
}
