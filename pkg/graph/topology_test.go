package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plandyhq/plandy/pkg/graph"
	"github.com/plandyhq/plandy/pkg/models"
)

func TestInfo(t *testing.T) {
	t.Parallel()

	info := graph.Info()

	require.Len(t, info.Nodes, 7)
	assert.Equal(t, models.StageSupervisor, info.Nodes[0])
	assert.Equal(t, models.StageTerminal, info.Nodes[len(info.Nodes)-1])

	// Communication holds the single exit.
	var exits [][2]models.StageName

	for _, edge := range info.Edges {
		if edge[1] == models.StageTerminal {
			exits = append(exits, edge)
		}
	}

	require.Len(t, exits, 1)
	assert.Equal(t, models.StageCommunication, exits[0][0])
}

func TestMermaid(t *testing.T) {
	t.Parallel()

	out := graph.Mermaid()

	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "START([Start]) --> supervisor")
	assert.Contains(t, out, "communication --> END([End])")
	assert.Contains(t, out, "plan --> worklife_balance")
	assert.NotContains(t, out, "supervisor --> supervisor")
}
