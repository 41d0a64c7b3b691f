package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/plandyhq/plandy/pkg/models"
)

// edges encodes the fixed topology. Supervisor dispatches dynamically to any
// specialist; the specialists follow fixed edges toward Communication, which
// holds the single exit.
var edges = map[models.StageName][]models.StageName{
	models.StageSupervisor: {
		models.StageHealth,
		models.StagePlan,
		models.StageData,
		models.StageWorkLifeBalance,
		models.StageCommunication,
		models.StageSupervisor,
	},
	models.StageHealth:          {models.StagePlan},
	models.StagePlan:            {models.StageWorkLifeBalance},
	models.StageData:            {models.StageWorkLifeBalance},
	models.StageWorkLifeBalance: {models.StageCommunication},
	models.StageCommunication:   {models.StageTerminal},
}

// reachable reports whether the topology allows moving from one stage to the
// next. Any decision outside these edges is a contract violation.
func reachable(from, to models.StageName) bool {
	return slices.Contains(edges[from], to)
}

// GraphInfo describes the topology for introspection.
type GraphInfo struct {
	Nodes []models.StageName    `json:"nodes"`
	Edges [][2]models.StageName `json:"edges"`
}

// Info returns the nodes and edges of the fixed topology in a stable order.
func Info() GraphInfo {
	nodes := []models.StageName{
		models.StageSupervisor,
		models.StageHealth,
		models.StagePlan,
		models.StageData,
		models.StageWorkLifeBalance,
		models.StageCommunication,
		models.StageTerminal,
	}

	var pairs [][2]models.StageName

	for _, from := range nodes {
		for _, to := range edges[from] {
			pairs = append(pairs, [2]models.StageName{from, to})
		}
	}

	return GraphInfo{Nodes: nodes, Edges: pairs}
}

// Mermaid renders the topology as a mermaid flowchart.
func Mermaid() string {
	var b strings.Builder

	b.WriteString("graph TD\n")
	b.WriteString("    START([Start]) --> supervisor\n")

	for _, pair := range Info().Edges {
		if pair[0] == models.StageSupervisor && pair[1] == models.StageSupervisor {
			continue
		}

		if pair[1] == models.StageTerminal {
			fmt.Fprintf(&b, "    %s --> END([End])\n", pair[0])

			continue
		}

		fmt.Fprintf(&b, "    %s --> %s\n", pair[0], pair[1])
	}

	return b.String()
}
