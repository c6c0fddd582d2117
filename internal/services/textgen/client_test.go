package textgen_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"scenecast/internal/media"
	"scenecast/internal/services/llm"
	"scenecast/internal/services/textgen"
)

// newClient serves the provided JSON payload as the model's answer for every
// completion request.
func newClient(t *testing.T, payload string) *textgen.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := json.Marshal(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": payload}},
			},
		})
		w.Write(body)
	}))
	t.Cleanup(server.Close)
	return textgen.NewClient(llm.NewClient(llm.Config{
		APIKey:  "test",
		BaseURL: server.URL,
		Model:   "test/model",
	}))
}

func sampleScenes() []media.Scene {
	return []media.Scene{
		{Index: 1, Text: "Dawn over the harbor."},
		{Index: 2, Text: "The fleet departs."},
	}
}

func TestRewrite(t *testing.T) {
	client := newClient(t, `{"script":"A tighter telling of the story."}`)
	script, err := client.Rewrite(context.Background(), "The original, rambling story.", nil)
	if err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}
	if script != "A tighter telling of the story." {
		t.Fatalf("unexpected script %q", script)
	}

	if _, err := client.Rewrite(context.Background(), "   ", nil); err == nil {
		t.Fatal("expected error for empty source")
	}
}

func TestRewriteRejectsEmptyModelOutput(t *testing.T) {
	client := newClient(t, `{"script":"  "}`)
	if _, err := client.Rewrite(context.Background(), "Some text.", nil); err == nil {
		t.Fatal("expected error for empty model script")
	}
}

func TestSplitOrdersAndRenumbersScenes(t *testing.T) {
	client := newClient(t, `{"scenes":[{"index":5,"text":" Second beat. "},{"index":2,"text":"First beat."}]}`)
	scenes, err := client.Split(context.Background(), "A two-beat script.", "duration")
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(scenes) != 2 {
		t.Fatalf("expected 2 scenes, got %d", len(scenes))
	}
	if scenes[0].Index != 1 || scenes[0].Text != "First beat." {
		t.Fatalf("unexpected first scene: %+v", scenes[0])
	}
	if scenes[1].Index != 2 || scenes[1].Text != "Second beat." {
		t.Fatalf("unexpected second scene: %+v", scenes[1])
	}
}

func TestSplitRejectsEmptyResult(t *testing.T) {
	client := newClient(t, `{"scenes":[]}`)
	if _, err := client.Split(context.Background(), "A script.", "duration"); err == nil {
		t.Fatal("expected error for empty scene list")
	}
}

func TestGenerateMetadata(t *testing.T) {
	client := newClient(t, `{"title":"Harbor Dawn","description":"A short film.","thumbnail_prompt":"harbor at dawn"}`)
	meta, err := client.GenerateMetadata(context.Background(), "A script.", []string{"sample title"})
	if err != nil {
		t.Fatalf("GenerateMetadata failed: %v", err)
	}
	if meta.Title != "Harbor Dawn" || meta.ThumbnailPrompt != "harbor at dawn" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
}

func TestGenerateMetadataRejectsEmptyTitle(t *testing.T) {
	client := newClient(t, `{"title":"","description":"x"}`)
	if _, err := client.GenerateMetadata(context.Background(), "A script.", nil); err == nil {
		t.Fatal("expected error for empty title")
	}
}

func TestGenerateKeywordsAlignsScenes(t *testing.T) {
	client := newClient(t, `{"scenes":[{"scene_index":2,"keywords":["fleet"]},{"scene_index":1,"keywords":["harbor","dawn"]}]}`)
	keywords, err := client.GenerateKeywords(context.Background(), sampleScenes(), "per_scene")
	if err != nil {
		t.Fatalf("GenerateKeywords failed: %v", err)
	}
	if keywords[0].SceneIndex != 1 || keywords[1].SceneIndex != 2 {
		t.Fatalf("expected scene-ordered keywords, got %+v", keywords)
	}
}

func TestGenerateKeywordsRejectsCountMismatch(t *testing.T) {
	client := newClient(t, `{"scenes":[{"scene_index":1,"keywords":["harbor"]}]}`)
	if _, err := client.GenerateKeywords(context.Background(), sampleScenes(), "per_scene"); err == nil {
		t.Fatal("expected error for entry count mismatch")
	}
}

func TestGenerateVideoPrompts(t *testing.T) {
	client := newClient(t, `{"prompts":[{"scene_index":1,"prompt":"wide shot"},{"scene_index":2,"prompt":"tracking shot"}]}`)
	prompts, err := client.GenerateVideoPrompts(context.Background(), sampleScenes(), nil)
	if err != nil {
		t.Fatalf("GenerateVideoPrompts failed: %v", err)
	}
	if len(prompts) != 2 || prompts[1].Prompt != "tracking shot" {
		t.Fatalf("unexpected prompts: %+v", prompts)
	}
}

func TestExtractEntities(t *testing.T) {
	client := newClient(t, `{"entities":[{"name":"The Captain","kind":"character","description":"weathered sailor"}]}`)
	entities, err := client.ExtractEntities(context.Background(), []media.ScenePrompt{{SceneIndex: 1, Prompt: "p"}}, "script")
	if err != nil {
		t.Fatalf("ExtractEntities failed: %v", err)
	}
	if len(entities) != 1 || entities[0].Name != "The Captain" {
		t.Fatalf("unexpected entities: %+v", entities)
	}
}

func TestGenerateReferencePromptsEmptyEntities(t *testing.T) {
	client := newClient(t, `{"prompts":[]}`)
	prompts, err := client.GenerateReferencePrompts(context.Background(), nil)
	if err != nil {
		t.Fatalf("GenerateReferencePrompts failed: %v", err)
	}
	if prompts != nil {
		t.Fatalf("expected nil prompts without entities, got %+v", prompts)
	}
}

func TestGenerateSceneBuilderPromptsSorted(t *testing.T) {
	client := newClient(t, `{"prompts":[{"scene_index":2,"prompt":"b"},{"scene_index":1,"prompt":"a"}]}`)
	prompts, err := client.GenerateSceneBuilderPrompts(
		context.Background(),
		[]media.ScenePrompt{{SceneIndex: 1, Prompt: "p1"}, {SceneIndex: 2, Prompt: "p2"}},
		nil,
		nil,
	)
	if err != nil {
		t.Fatalf("GenerateSceneBuilderPrompts failed: %v", err)
	}
	if prompts[0].SceneIndex != 1 || prompts[1].SceneIndex != 2 {
		t.Fatalf("expected sorted prompts, got %+v", prompts)
	}
}

func TestGenerateSEOMetadata(t *testing.T) {
	client := newClient(t, `{"keywords":["harbor"],"tags":["short film"],"category":"documentary"}`)
	bundle, err := client.GenerateSEOMetadata(context.Background(), "A script.")
	if err != nil {
		t.Fatalf("GenerateSEOMetadata failed: %v", err)
	}
	if bundle.Category != "documentary" || len(bundle.Keywords) != 1 {
		t.Fatalf("unexpected bundle: %+v", bundle)
	}
}
