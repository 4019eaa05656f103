package tool

import (
	"slices"
	"strings"

	"github.com/harunnryd/ragent/internal/model/contract"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ToolMetadata is operator-facing information; it never reaches the model.
type ToolMetadata struct {
	Source       string
	Capabilities []string
	Risk         RiskLevel
}

type MetadataProvider interface {
	ToolMetadata() ToolMetadata
}

type ToolDescriptor struct {
	Definition contract.ToolDef
	Metadata   ToolMetadata
}

// WithMetadata attaches metadata to a tool without changing its behavior.
func WithMetadata(t Tool, meta ToolMetadata) Tool {
	return &describedTool{Tool: t, meta: meta}
}

type describedTool struct {
	Tool
	meta ToolMetadata
}

func (t *describedTool) ToolMetadata() ToolMetadata {
	return t.meta
}

func normalizeToolMetadata(meta ToolMetadata) ToolMetadata {
	source := strings.TrimSpace(strings.ToLower(meta.Source))
	if source == "" {
		source = "runtime"
	}

	risk := RiskLevel(strings.TrimSpace(strings.ToLower(string(meta.Risk))))
	switch risk {
	case RiskLow, RiskMedium, RiskHigh:
	default:
		risk = RiskMedium
	}

	capabilities := make([]string, 0, len(meta.Capabilities))
	for _, capability := range meta.Capabilities {
		if c := strings.TrimSpace(strings.ToLower(capability)); c != "" {
			capabilities = append(capabilities, c)
		}
	}
	slices.Sort(capabilities)
	capabilities = slices.Compact(capabilities)

	return ToolMetadata{
		Source:       source,
		Capabilities: capabilities,
		Risk:         risk,
	}
}
