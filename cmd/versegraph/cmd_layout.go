package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"versegraph/application/queries"
	domainservices "versegraph/domain/services"

	"github.com/spf13/cobra"
)

type layoutInput struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type layoutOutput struct {
	ID       string               `json:"id"`
	Type     string               `json:"type"`
	Position queries.ViewPosition `json:"position"`
}

func newLayoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layout <nodes.json>",
		Short: "Lay out nodes into type layers",
		Long: `Read a JSON array of {"id","type"} objects and print each node's position.

Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to read nodes: %w", err)
			}

			var nodes []layoutInput
			if err := json.Unmarshal(data, &nodes); err != nil {
				return fmt.Errorf("failed to parse nodes: %w", err)
			}

			layout := make([]domainservices.LayoutNode, 0, len(nodes))
			for _, n := range nodes {
				layout = append(layout, domainservices.LayoutNode{ID: n.ID, NodeType: n.Type})
			}
			positions := domainservices.CalculateNodePositions(layout)

			out := make([]layoutOutput, 0, len(nodes))
			for _, n := range nodes {
				pos := positions[n.ID]
				out = append(out, layoutOutput{
					ID:       n.ID,
					Type:     n.Type,
					Position: queries.ViewPosition{X: pos.X(), Y: pos.Y()},
				})
			}

			return encodeJSON(cmd, out)
		},
	}
}
