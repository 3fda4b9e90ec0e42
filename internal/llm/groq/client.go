package groq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quantumtech/hiredroid/internal/common"
	"github.com/quantumtech/hiredroid/internal/llm"
)

// Shortlist implements llm.ShortlistClassifier using text-only chat/completions.
func (c *Client) Shortlist(ctx context.Context, req llm.ShortlistRequest) ([]llm.ShortlistPick, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.shortlist.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"candidates", len(req.Candidates),
		"cap", req.Cap,
	)

	sys := llm.BuildShortlistSystemPrompt(req)
	user := llm.BuildShortlistUserPrompt(req)
	schema := llm.BuildShortlistJSONSchema(req.Cap)

	raw, err := c.chat(ctx, rid, sys, user)
	if err != nil {
		return nil, nil, err
	}

	payload, err := c.validated(rid, raw, schema)
	if err != nil {
		return nil, payload, err
	}

	var picks []llm.ShortlistPick
	if err := json.Unmarshal(payload, &picks); err != nil {
		c.log.Error("llm.shortlist.unmarshal_failed", "req_id", rid, "error", err)
		return nil, payload, fmt.Errorf("%w: decode shortlist: %v", common.ErrMalformedWorkerOutput, err)
	}

	c.log.Info("llm.shortlist.ok",
		"req_id", rid,
		"picks", len(picks),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return picks, payload, nil
}

// GenerateQuestions implements llm.QuestionGenerator for one candidate.
func (c *Client) GenerateQuestions(ctx context.Context, req llm.QuestionsRequest) ([]llm.Question, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.questions.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"cv_bytes", len(req.CVData),
		"min_questions", req.MinQuestions,
	)

	sys := llm.BuildQuestionsSystemPrompt(req)
	user := llm.BuildQuestionsUserPrompt(req)
	schema := llm.BuildQuestionsJSONSchema(req.MinQuestions)

	raw, err := c.chat(ctx, rid, sys, user)
	if err != nil {
		return nil, nil, err
	}

	payload, err := c.validated(rid, raw, schema)
	if err != nil {
		return nil, payload, err
	}

	var questions []llm.Question
	if err := json.Unmarshal(payload, &questions); err != nil {
		c.log.Error("llm.questions.unmarshal_failed", "req_id", rid, "error", err)
		return nil, payload, fmt.Errorf("%w: decode questions: %v", common.ErrMalformedWorkerOutput, err)
	}

	c.log.Info("llm.questions.ok",
		"req_id", rid,
		"questions", len(questions),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return questions, payload, nil
}

// ScoreCandidate implements llm.CandidateScorer for one completed call.
func (c *Client) ScoreCandidate(ctx context.Context, req llm.ScoreRequest) (llm.ScoreResult, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.score.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"filename", req.Filename,
		"transcript_bytes", len(req.Transcript),
	)

	sys := llm.BuildScoreSystemPrompt(req)
	user := llm.BuildScoreUserPrompt(req)
	schema := llm.BuildScoreJSONSchema()

	raw, err := c.chat(ctx, rid, sys, user)
	if err != nil {
		return llm.ScoreResult{}, nil, err
	}

	payload, err := c.validated(rid, raw, schema)
	if err != nil {
		return llm.ScoreResult{}, payload, err
	}

	var out llm.ScoreResult
	if err := json.Unmarshal(payload, &out); err != nil {
		c.log.Error("llm.score.unmarshal_failed", "req_id", rid, "error", err)
		return llm.ScoreResult{}, payload, fmt.Errorf("%w: decode score: %v", common.ErrMalformedWorkerOutput, err)
	}

	c.log.Info("llm.score.ok",
		"req_id", rid,
		"filename", out.Filename,
		"score", out.Score,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, payload, nil
}

// chat sends one system+user exchange and returns the first choice's content.
func (c *Client) chat(ctx context.Context, rid, sys, user string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limiter: %v", common.ErrWorkerUnavailable, err)
	}

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"max_tokens":  c.cfg.MaxTokens,
		"messages": []map[string]any{
			{"role": "system", "content": sys},
			{"role": "user", "content": user},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, _, err := llm.SendJSON(ctx, c.http, rid, endpoint, body, headers, c.log)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrWorkerUnavailable, err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", fmt.Errorf("%w: decode completion: %v", common.ErrMalformedWorkerOutput, err)
	}
	if len(cc.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in completion", common.ErrMalformedWorkerOutput)
	}
	return strings.TrimSpace(cc.Choices[0].Message.Content), nil
}

// validated extracts the JSON payload from content and checks it against the
// schema. The payload is returned even on failure so callers can log it.
func (c *Client) validated(rid, content string, schema map[string]any) ([]byte, error) {
	payload := llm.ExtractJSONPayload(content)
	if payload == nil {
		c.log.Error("llm.no_json_payload", "req_id", rid, "content_bytes", len(content))
		return nil, fmt.Errorf("%w: no JSON payload in completion", common.ErrMalformedWorkerOutput)
	}
	if err := llm.ValidateJSONAgainstSchema(schema, payload); err != nil {
		c.log.Error("llm.schema_validation_failed", "req_id", rid, "error", err, "content", string(payload))
		return payload, fmt.Errorf("%w: schema validation: %v", common.ErrMalformedWorkerOutput, err)
	}
	return payload, nil
}
