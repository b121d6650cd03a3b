package search

// Result accumulates counters and traces across a full run of the driver.
//
// Paths holds one state-string list per committed prefix (or per think
// cycle in one-step modes); IsKeepThinkingFlags lines up with Paths and
// marks the entries where the decision deferred and the agent executed a
// queued action while searching more. GATNodesExpanded measures
// goal-achievement time in expansion ticks, including ticks the agent
// "spends" while executing already-committed actions.
type Result struct {
	SolutionFound  bool    `json:"solutionFound"`
	SolutionCost   float64 `json:"solutionCost"`
	SolutionLength int     `json:"solutionLength"`

	NodesGenerated   uint `json:"nodesGenerated"`
	NodesExpanded    uint `json:"nodesExpanded"`
	GATNodesExpanded uint `json:"gatNodesExpanded"`

	Paths               [][]string `json:"paths"`
	Visited             [][]string `json:"visited"`
	Committed           [][]string `json:"committed"`
	IsKeepThinkingFlags []bool     `json:"isKeepThinkingFlags"`

	EpsilonHGlobal float64 `json:"epsilonHGlobal"`
	EpsilonDGlobal float64 `json:"epsilonDGlobal"`
}

// NewResult returns an empty accumulator.
func NewResult() *Result {
	return &Result{}
}
