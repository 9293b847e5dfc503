package pipeline

import (
	"encoding/json"
	"strings"

	apperrors "github.com/podscout/podscout/errors"
	"github.com/podscout/podscout/internal/domain/entities"
)

// Parser handles parsing and validation of model analysis responses
type Parser struct{}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{}
}

// ParseAnalysisResponse parses the JSON payload of a model response
// into an AnalysisResult. A payload that still fails to parse after
// fence stripping is a malformed response; the raw output is preserved
// on the error for diagnosis.
func (p *Parser) ParseAnalysisResponse(raw string) (*entities.AnalysisResult, error) {
	payload := extractJSON(raw)

	var result entities.AnalysisResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, apperrors.ErrMalformedResponse(err, raw)
	}

	// Absent categories mean "no mentions", never "not analyzed".
	if result.PlayerMentions == nil {
		result.PlayerMentions = make([]entities.PlayerMention, 0)
	}
	if result.Recommendations == nil {
		result.Recommendations = make([]entities.Recommendation, 0)
	}
	if result.InjuryNews == nil {
		result.InjuryNews = make([]entities.InjuryNote, 0)
	}
	if result.Differentials == nil {
		result.Differentials = make([]entities.DifferentialPick, 0)
	}
	if result.CaptainPicks == nil {
		result.CaptainPicks = make([]entities.CaptainPick, 0)
	}

	return &result, nil
}

// extractJSON extracts JSON content from markdown code blocks or plain text
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}
