package textgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"scenecast/internal/media"
	"scenecast/internal/services/llm"
)

// Client implements every text-generation collaborator of the pipeline on
// top of a single chat-completion backend.
type Client struct {
	llm *llm.Client
}

// NewClient wraps an LLM client with the pipeline's text operations.
func NewClient(backend *llm.Client) *Client {
	return &Client{llm: backend}
}

// Rewrite produces the narration-ready script from the original text.
func (c *Client) Rewrite(ctx context.Context, original string, styleRefs []string) (string, error) {
	original = strings.TrimSpace(original)
	if original == "" {
		return "", errors.New("rewrite: source script required")
	}
	user := original
	if len(styleRefs) > 0 {
		user = fmt.Sprintf("Style references:\n%s\n\nScript:\n%s", strings.Join(styleRefs, "\n"), original)
	}
	content, err := c.llm.CompleteJSON(ctx, rewritePrompt, user)
	if err != nil {
		return "", err
	}
	var parsed struct {
		Script string `json:"script"`
	}
	if err := llm.DecodeJSON(content, &parsed); err != nil {
		return "", fmt.Errorf("rewrite: parse payload: %w", err)
	}
	script := strings.TrimSpace(parsed.Script)
	if script == "" {
		return "", errors.New("rewrite: model returned empty script")
	}
	return script, nil
}

// Split divides a script into ordered scenes.
func (c *Client) Split(ctx context.Context, script, mode string) ([]media.Scene, error) {
	if strings.TrimSpace(script) == "" {
		return nil, errors.New("split: script required")
	}
	user := fmt.Sprintf("Mode: %s\n\nScript:\n%s", mode, script)
	content, err := c.llm.CompleteJSON(ctx, splitScenesPrompt, user)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Scenes []media.Scene `json:"scenes"`
	}
	if err := llm.DecodeJSON(content, &parsed); err != nil {
		return nil, fmt.Errorf("split: parse payload: %w", err)
	}
	if len(parsed.Scenes) == 0 {
		return nil, errors.New("split: model returned no scenes")
	}
	sort.Slice(parsed.Scenes, func(i, j int) bool { return parsed.Scenes[i].Index < parsed.Scenes[j].Index })
	for i := range parsed.Scenes {
		parsed.Scenes[i].Index = i + 1
		parsed.Scenes[i].Text = strings.TrimSpace(parsed.Scenes[i].Text)
	}
	return parsed.Scenes, nil
}

// GenerateMetadata produces the title/description/thumbnail bundle.
func (c *Client) GenerateMetadata(ctx context.Context, script string, styleSamples []string) (media.Metadata, error) {
	if strings.TrimSpace(script) == "" {
		return media.Metadata{}, errors.New("metadata: script required")
	}
	user := script
	if len(styleSamples) > 0 {
		user = fmt.Sprintf("Style samples:\n%s\n\nScript:\n%s", strings.Join(styleSamples, "\n"), script)
	}
	content, err := c.llm.CompleteJSON(ctx, metadataPrompt, user)
	if err != nil {
		return media.Metadata{}, err
	}
	var parsed media.Metadata
	if err := llm.DecodeJSON(content, &parsed); err != nil {
		return media.Metadata{}, fmt.Errorf("metadata: parse payload: %w", err)
	}
	if strings.TrimSpace(parsed.Title) == "" {
		return media.Metadata{}, errors.New("metadata: model returned empty title")
	}
	return parsed, nil
}

// GenerateKeywords produces footage keywords per scene.
func (c *Client) GenerateKeywords(ctx context.Context, scenes []media.Scene, mode string) ([]media.SceneKeywords, error) {
	if len(scenes) == 0 {
		return nil, errors.New("keywords: scenes required")
	}
	user, err := encodeInput(map[string]any{"mode": mode, "scenes": scenes})
	if err != nil {
		return nil, err
	}
	content, err := c.llm.CompleteJSON(ctx, keywordsPrompt, user)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Scenes []media.SceneKeywords `json:"scenes"`
	}
	if err := llm.DecodeJSON(content, &parsed); err != nil {
		return nil, fmt.Errorf("keywords: parse payload: %w", err)
	}
	return alignByScene(parsed.Scenes, scenes, func(k media.SceneKeywords) int { return k.SceneIndex }, "keywords")
}

// AnalyzeDirection writes per-scene direction notes.
func (c *Client) AnalyzeDirection(ctx context.Context, scenes []media.Scene, styleRefs []string) ([]media.DirectionNote, error) {
	if len(scenes) == 0 {
		return nil, errors.New("direction: scenes required")
	}
	user, err := encodeInput(map[string]any{"style_refs": styleRefs, "scenes": scenes})
	if err != nil {
		return nil, err
	}
	content, err := c.llm.CompleteJSON(ctx, directionPrompt, user)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Directions []media.DirectionNote `json:"directions"`
	}
	if err := llm.DecodeJSON(content, &parsed); err != nil {
		return nil, fmt.Errorf("direction: parse payload: %w", err)
	}
	return alignByScene(parsed.Directions, scenes, func(d media.DirectionNote) int { return d.SceneIndex }, "direction")
}

// GenerateVideoPrompts writes a text-to-video prompt per scene.
func (c *Client) GenerateVideoPrompts(ctx context.Context, scenes []media.Scene, directions []media.DirectionNote) ([]media.ScenePrompt, error) {
	if len(scenes) == 0 {
		return nil, errors.New("video prompts: scenes required")
	}
	user, err := encodeInput(map[string]any{"scenes": scenes, "directions": directions})
	if err != nil {
		return nil, err
	}
	content, err := c.llm.CompleteJSON(ctx, videoPromptsPrompt, user)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Prompts []media.ScenePrompt `json:"prompts"`
	}
	if err := llm.DecodeJSON(content, &parsed); err != nil {
		return nil, fmt.Errorf("video prompts: parse payload: %w", err)
	}
	return alignByScene(parsed.Prompts, scenes, func(p media.ScenePrompt) int { return p.SceneIndex }, "video prompts")
}

// ExtractEntities pulls recurring visual subjects from prompts and script.
func (c *Client) ExtractEntities(ctx context.Context, prompts []media.ScenePrompt, script string) ([]media.Entity, error) {
	if len(prompts) == 0 {
		return nil, errors.New("entities: prompts required")
	}
	user, err := encodeInput(map[string]any{"prompts": prompts, "script": script})
	if err != nil {
		return nil, err
	}
	content, err := c.llm.CompleteJSON(ctx, entitiesPrompt, user)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Entities []media.Entity `json:"entities"`
	}
	if err := llm.DecodeJSON(content, &parsed); err != nil {
		return nil, fmt.Errorf("entities: parse payload: %w", err)
	}
	return parsed.Entities, nil
}

// GenerateReferencePrompts writes one reference-image prompt per entity.
func (c *Client) GenerateReferencePrompts(ctx context.Context, entities []media.Entity) ([]media.ReferencePrompt, error) {
	if len(entities) == 0 {
		return nil, nil
	}
	user, err := encodeInput(map[string]any{"entities": entities})
	if err != nil {
		return nil, err
	}
	content, err := c.llm.CompleteJSON(ctx, referencePromptsPrompt, user)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Prompts []media.ReferencePrompt `json:"prompts"`
	}
	if err := llm.DecodeJSON(content, &parsed); err != nil {
		return nil, fmt.Errorf("reference prompts: parse payload: %w", err)
	}
	return parsed.Prompts, nil
}

// GenerateSceneBuilderPrompts composes the final per-scene prompts.
func (c *Client) GenerateSceneBuilderPrompts(ctx context.Context, prompts []media.ScenePrompt, entities []media.Entity, directions []media.DirectionNote) ([]media.SceneBuilderPrompt, error) {
	if len(prompts) == 0 {
		return nil, errors.New("scene builder: prompts required")
	}
	user, err := encodeInput(map[string]any{"prompts": prompts, "entities": entities, "directions": directions})
	if err != nil {
		return nil, err
	}
	content, err := c.llm.CompleteJSON(ctx, sceneBuilderPrompt, user)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Prompts []media.SceneBuilderPrompt `json:"prompts"`
	}
	if err := llm.DecodeJSON(content, &parsed); err != nil {
		return nil, fmt.Errorf("scene builder: parse payload: %w", err)
	}
	sort.Slice(parsed.Prompts, func(i, j int) bool { return parsed.Prompts[i].SceneIndex < parsed.Prompts[j].SceneIndex })
	return parsed.Prompts, nil
}

// GenerateSEOMetadata produces the keyword/tag bundle for publishing.
func (c *Client) GenerateSEOMetadata(ctx context.Context, script string) (media.SEOBundle, error) {
	if strings.TrimSpace(script) == "" {
		return media.SEOBundle{}, errors.New("seo: script required")
	}
	content, err := c.llm.CompleteJSON(ctx, seoPrompt, script)
	if err != nil {
		return media.SEOBundle{}, err
	}
	var parsed media.SEOBundle
	if err := llm.DecodeJSON(content, &parsed); err != nil {
		return media.SEOBundle{}, fmt.Errorf("seo: parse payload: %w", err)
	}
	return parsed, nil
}

func encodeInput(input map[string]any) (string, error) {
	data, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("encode model input: %w", err)
	}
	return string(data), nil
}

// alignByScene sorts per-scene results and verifies one entry per scene.
func alignByScene[T any](results []T, scenes []media.Scene, index func(T) int, op string) ([]T, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("%s: model returned no entries", op)
	}
	sort.Slice(results, func(i, j int) bool { return index(results[i]) < index(results[j]) })
	if len(results) != len(scenes) {
		return nil, fmt.Errorf("%s: expected %d entries, got %d", op, len(scenes), len(results))
	}
	return results, nil
}
