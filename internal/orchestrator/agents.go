package orchestrator

import "strings"

// AgentType is a specialized agent role. Each role routes to the cloud
// service best suited for it, with the privacy-first companion staying
// on the local model.
type AgentType string

const (
	AgentResearcher AgentType = "researcher"
	AgentCoder      AgentType = "coder"
	AgentArchitect  AgentType = "architect"
	AgentAnalyst    AgentType = "analyst"
	AgentWriter     AgentType = "writer"
	AgentCompanion  AgentType = "companion"
)

// AgentConfig binds a role to a service and model.
type AgentConfig struct {
	Service      string
	Model        string
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
}

var agentConfigs = map[AgentType]AgentConfig{
	AgentResearcher: {
		Service:      "perplexity",
		Model:        "llama-3.1-sonar-huge-128k-online",
		SystemPrompt: "You are a meticulous research assistant. Cite sources.",
		Temperature:  0.3,
		MaxTokens:    4096,
	},
	AgentCoder: {
		Service:      "claude",
		Model:        "claude-3-5-sonnet-20241022",
		SystemPrompt: "You are an expert programmer. Produce working, idiomatic code.",
		Temperature:  0.2,
		MaxTokens:    8192,
	},
	AgentArchitect: {
		Service:      "gemini",
		Model:        "gemini-2.0-flash-exp",
		SystemPrompt: "You are a systems architect. Think in trade-offs.",
		Temperature:  0.5,
		MaxTokens:    8192,
	},
	AgentAnalyst: {
		Service:      "gpt",
		Model:        "gpt-4-turbo-preview",
		SystemPrompt: "You are a data analyst. Be precise and quantitative.",
		Temperature:  0.3,
		MaxTokens:    4096,
	},
	AgentWriter: {
		Service:      "claude",
		Model:        "claude-3-5-sonnet-20241022",
		SystemPrompt: "You are a thoughtful writer. Match the requested tone.",
		Temperature:  0.8,
		MaxTokens:    8192,
	},
	AgentCompanion: {
		Service:      "local",
		Model:        "llama3.1:8b",
		SystemPrompt: "You are a warm, attentive companion.",
		Temperature:  0.7,
		MaxTokens:    2048,
	},
}

var agentKeywords = map[AgentType][]string{
	AgentResearcher: {"research", "find out", "latest", "investigate", "sources"},
	AgentCoder:      {"code", "function", "implement", "debug", "script", "program"},
	AgentArchitect:  {"design", "architecture", "system", "scale", "infrastructure"},
	AgentAnalyst:    {"analyze", "data", "metrics", "statistics", "trends"},
	AgentWriter:     {"write", "draft", "essay", "article", "summarize"},
}

// DetectAgent scores the query against each role's keywords and returns
// the best match, defaulting to the companion when nothing matches.
func DetectAgent(query string) AgentType {
	queryLower := strings.ToLower(query)

	best := AgentCompanion
	bestScore := 0
	for _, agent := range []AgentType{AgentResearcher, AgentCoder, AgentArchitect, AgentAnalyst, AgentWriter} {
		score := 0
		for _, keyword := range agentKeywords[agent] {
			if strings.Contains(queryLower, keyword) {
				score++
			}
		}
		if score > bestScore {
			best = agent
			bestScore = score
		}
	}
	return best
}

// ConfigFor returns the agent's routing configuration.
func ConfigFor(agent AgentType) AgentConfig {
	return agentConfigs[agent]
}
