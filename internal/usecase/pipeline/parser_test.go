package pipeline

import (
	"errors"
	"testing"

	apperrors "github.com/podscout/podscout/errors"
)

func TestParseAnalysisResponseFenced(t *testing.T) {
	parser := NewParser()
	raw := "```json\n{\"player_mentions\": [{\"player\": \"Haaland\", \"context\": \"in form\", \"sentiment\": \"positive\"}]}\n```"

	result, err := parser.ParseAnalysisResponse(raw)
	if err != nil {
		t.Fatalf("ParseAnalysisResponse: %v", err)
	}
	if len(result.PlayerMentions) != 1 {
		t.Fatalf("expected 1 player mention, got %d", len(result.PlayerMentions))
	}
	if result.PlayerMentions[0].Player != "Haaland" {
		t.Errorf("unexpected player: %q", result.PlayerMentions[0].Player)
	}
	if result.Recommendations == nil || result.InjuryNews == nil {
		t.Error("absent categories should be empty slices, not nil")
	}
}

func TestParseAnalysisResponseBare(t *testing.T) {
	parser := NewParser()

	result, err := parser.ParseAnalysisResponse(`{"recommendations": [{"player": "Palmer", "action": "buy", "reasoning": "fixtures"}]}`)
	if err != nil {
		t.Fatalf("ParseAnalysisResponse: %v", err)
	}
	if len(result.Recommendations) != 1 || result.Recommendations[0].Action != "buy" {
		t.Fatalf("unexpected recommendations: %+v", result.Recommendations)
	}
}

func TestParseAnalysisResponseMalformed(t *testing.T) {
	parser := NewParser()

	_, err := parser.ParseAnalysisResponse("I could not produce JSON for this transcript.")
	if err == nil {
		t.Fatal("expected error for non-JSON output")
	}
	if !apperrors.IsCode(err, apperrors.ErrorCode_MALFORMED_RESPONSE) {
		t.Errorf("expected MALFORMED_RESPONSE, got %v", apperrors.CodeOf(err))
	}
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatal("expected AppError")
	}
	if appErr.Details["raw_output"] == "" {
		t.Error("raw output should be preserved for later inspection")
	}
}

func TestExtractJSONPlainFence(t *testing.T) {
	got := extractJSON("```\n{\"a\": 1}\n```")
	if got != "{\"a\": 1}" {
		t.Errorf("extractJSON = %q", got)
	}
}
