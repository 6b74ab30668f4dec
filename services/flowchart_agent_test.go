package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFlowchart(t *testing.T) {
	t.Run("drops edges referencing unknown nodes", func(t *testing.T) {
		fc := GeneratedFlowchart{
			Title: "Process",
			Nodes: []FlowNode{
				{ID: "1", Label: "Start", Type: "start"},
				{ID: "2", Label: "End", Type: "end"},
			},
			Edges: []FlowEdge{
				{From: "1", To: "2"},
				{From: "2", To: "99"},
				{From: "0", To: "1"},
			},
		}

		out := validateFlowchart(fc)
		require.Len(t, out.Edges, 1)
		assert.Equal(t, "1", out.Edges[0].From)
		assert.Equal(t, "2", out.Edges[0].To)
	})

	t.Run("unknown node type falls back to concept", func(t *testing.T) {
		fc := GeneratedFlowchart{
			Nodes: []FlowNode{
				{ID: "1", Label: "Something", Type: "bubble"},
				{ID: "2", Label: "Decide", Type: "DECISION"},
			},
		}

		out := validateFlowchart(fc)
		require.Len(t, out.Nodes, 2)
		assert.Equal(t, "concept", out.Nodes[0].Type)
		assert.Equal(t, "decision", out.Nodes[1].Type, "type matching is case-insensitive")
	})

	t.Run("drops nodes without id or label and their edges", func(t *testing.T) {
		fc := GeneratedFlowchart{
			Nodes: []FlowNode{
				{ID: "1", Label: "Keep", Type: "concept"},
				{ID: "", Label: "No ID", Type: "concept"},
				{ID: "3", Label: "  ", Type: "concept"},
			},
			Edges: []FlowEdge{
				{From: "1", To: "3"},
			},
		}

		out := validateFlowchart(fc)
		require.Len(t, out.Nodes, 1)
		assert.Empty(t, out.Edges)
	})

	t.Run("defaults empty title", func(t *testing.T) {
		fc := GeneratedFlowchart{
			Nodes: []FlowNode{{ID: "1", Label: "A", Type: "concept"}},
		}

		out := validateFlowchart(fc)
		assert.Equal(t, "Concept Flowchart", out.Title)
	})
}
