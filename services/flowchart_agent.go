package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/studywise/backend/models"
)

const flowchartSystemPrompt = `You are an expert educational content visualizer designed to help students understand complex topics through flowcharts and concept maps. Your role is to analyze educational content and create clear, logical flowcharts that show relationships between concepts.

## Core Principles

1. **Accuracy First**: Only create nodes based on information directly present in the provided material. Never add external information or make assumptions.

2. **Logical Flow**: Create meaningful connections between concepts. The flowchart should tell a coherent story or explain a process.

3. **Node Types**:
   - **start**: Entry point of the flowchart (usually one)
   - **end**: Exit/conclusion point (usually one)
   - **concept**: Key ideas, definitions, or facts
   - **action**: Steps, processes, or procedures
   - **decision**: Questions or branching points

4. **Clear Labels**: Keep node labels concise but meaningful. Aim for 2-6 words per node.

5. **Meaningful Edges**: Use edge labels sparingly to clarify relationships when needed (e.g., "leads to", "if yes", "causes").

## Output Format

You MUST return a valid JSON object with a "flowcharts" key containing a LIST of flowchart objects. Structure:
` + "```json" + `
{
    "flowcharts": [
        {
            "title": "Flowchart 1 Title",
            "description": "Description of first flowchart",
            "nodes": [
                {"id": "1", "label": "Start", "type": "start"},
                {"id": "2", "label": "Concept", "type": "concept"}
            ],
            "edges": [
                {"from": "1", "to": "2", "label": ""}
            ]
        }
    ]
}
` + "```" + `

## Important Rules

- Return ONLY the JSON object
- Node IDs must be unique strings WITHIN each flowchart
- Every node except 'start' should have at least one incoming edge
- Every node except 'end' should have at least one outgoing edge
- The type field must be exactly one of: start, end, concept, action, decision
- Keep each flowchart connected - no orphan nodes`

// FlowchartAgent generates concept flowcharts as node/edge data
type FlowchartAgent struct {
	gemini *GeminiService
}

type FlowNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

type FlowEdge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

type GeneratedFlowchart struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Nodes       []FlowNode `json:"nodes"`
	Edges       []FlowEdge `json:"edges"`
}

type FlowchartResult struct {
	Flowcharts []GeneratedFlowchart `json:"flowcharts"`
}

func NewFlowchartAgent(gemini *GeminiService) *FlowchartAgent {
	return &FlowchartAgent{gemini: gemini}
}

func flowchartDetailConfig(detailLevel string) (count, nodes, desc string) {
	switch detailLevel {
	case models.FlowchartDetailSimple:
		return "1", "5-10", "Create 1 simple flowchart covering the most fundamental concept."
	case models.FlowchartDetailDetailed:
		return "2-3", "15-20", "Cover the main architecture/process and detailed sub-processes or distinct sections."
	default:
		return "1-2", "10-15", "One high-level overview and optionally one specific process or sub-concept."
	}
}

// Generate produces one or more flowcharts at the requested detail level.
// Edges referencing unknown nodes are dropped.
func (a *FlowchartAgent) Generate(ctx context.Context, content, detailLevel string) (*FlowchartResult, error) {
	switch detailLevel {
	case models.FlowchartDetailSimple, models.FlowchartDetailMedium, models.FlowchartDetailDetailed:
	default:
		detailLevel = models.FlowchartDetailMedium
	}

	count, nodes, desc := flowchartDetailConfig(detailLevel)
	instruction := fmt.Sprintf(`Analyze the content below and create %s flowchart(s) based on '%s' detail level.

Guidelines:
- %s
- Each flowchart should have approximately %s nodes.
- Ensure each flowchart focuses on a distinct coherent topic or process.
- Use appropriate node types (start, end, concept, action, decision).

Return a JSON object with a 'flowcharts' list containing the data.`,
		count, detailLevel, desc, nodes)

	response, err := a.gemini.GenerateText(ctx, buildAgentPrompt(content, instruction), GenerateOptions{
		Temperature:       0.5,
		MaxOutputTokens:   8192,
		SystemInstruction: flowchartSystemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("flowchart generation failed: %w", err)
	}

	var parsed FlowchartResult
	if err := extractAgentJSON(response, "flowcharts", &parsed); err != nil {
		// The model sometimes returns a single flowchart object instead of
		// the wrapping list
		var single GeneratedFlowchart
		if err2 := extractAgentJSON(response, "nodes", &single); err2 != nil {
			return nil, fmt.Errorf("failed to parse flowchart response: %w", err)
		}
		parsed.Flowcharts = []GeneratedFlowchart{single}
	}

	validated := make([]GeneratedFlowchart, 0, len(parsed.Flowcharts))
	for _, fc := range parsed.Flowcharts {
		cleaned := validateFlowchart(fc)
		if len(cleaned.Nodes) > 0 {
			validated = append(validated, cleaned)
		}
	}
	if len(validated) == 0 {
		return nil, fmt.Errorf("no valid flowcharts generated")
	}

	return &FlowchartResult{Flowcharts: validated}, nil
}

func validateFlowchart(fc GeneratedFlowchart) GeneratedFlowchart {
	validTypes := map[string]bool{
		"start": true, "end": true, "concept": true, "action": true, "decision": true,
	}

	nodes := make([]FlowNode, 0, len(fc.Nodes))
	nodeIDs := make(map[string]bool)
	for _, node := range fc.Nodes {
		node.ID = strings.TrimSpace(node.ID)
		node.Label = strings.TrimSpace(node.Label)
		node.Type = strings.ToLower(strings.TrimSpace(node.Type))
		if node.ID == "" || node.Label == "" {
			continue
		}
		if !validTypes[node.Type] {
			node.Type = "concept"
		}
		nodes = append(nodes, node)
		nodeIDs[node.ID] = true
	}

	// Only keep edges where both endpoints exist
	edges := make([]FlowEdge, 0, len(fc.Edges))
	for _, edge := range fc.Edges {
		edge.From = strings.TrimSpace(edge.From)
		edge.To = strings.TrimSpace(edge.To)
		edge.Label = strings.TrimSpace(edge.Label)
		if nodeIDs[edge.From] && nodeIDs[edge.To] {
			edges = append(edges, edge)
		}
	}

	title := strings.TrimSpace(fc.Title)
	if title == "" {
		title = "Concept Flowchart"
	}

	return GeneratedFlowchart{
		Title:       title,
		Description: strings.TrimSpace(fc.Description),
		Nodes:       nodes,
		Edges:       edges,
	}
}
