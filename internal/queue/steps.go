package queue

import "strings"

// Step identifies one stage of the generation pipeline.
type Step string

const (
	StepScript           Step = "script"
	StepScenes           Step = "scenes"
	StepMetadata         Step = "metadata"
	StepVoice            Step = "voice"
	StepKeywords         Step = "keywords"
	StepVideoDirection   Step = "video_direction"
	StepVideoPrompts     Step = "video_prompts"
	StepEntityExtraction Step = "entity_extraction"
	StepReferencePrompts Step = "reference_prompts"
	StepSceneBuilder     Step = "scene_builder"
	StepAssembly         Step = "assembly"
	StepSEO              Step = "seo"
	StepExport           Step = "export"
)

var stepOrder = []Step{
	StepScript,
	StepScenes,
	StepMetadata,
	StepVoice,
	StepKeywords,
	StepVideoDirection,
	StepVideoPrompts,
	StepEntityExtraction,
	StepReferencePrompts,
	StepSceneBuilder,
	StepAssembly,
	StepSEO,
	StepExport,
}

var stepIndex = func() map[Step]int {
	idx := make(map[Step]int, len(stepOrder))
	for i, step := range stepOrder {
		idx[step] = i
	}
	return idx
}()

// StepOrder returns the full pipeline step list in execution order.
func StepOrder() []Step {
	cp := make([]Step, len(stepOrder))
	copy(cp, stepOrder)
	return cp
}

// StepIndex returns a step's position in pipeline order, or -1 when unknown.
func StepIndex(step Step) int {
	if i, ok := stepIndex[step]; ok {
		return i
	}
	return -1
}

// ParseStep converts a string into a known Step.
func ParseStep(value string) (Step, bool) {
	normalized := Step(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := stepIndex[normalized]
	return normalized, ok
}

// StepsBefore returns the steps strictly preceding the given step in pipeline order.
func StepsBefore(step Step) []Step {
	idx := StepIndex(step)
	if idx <= 0 {
		return nil
	}
	cp := make([]Step, idx)
	copy(cp, stepOrder[:idx])
	return cp
}

// StepsFrom returns the given step and every subsequent step in pipeline order.
func StepsFrom(step Step) []Step {
	idx := StepIndex(step)
	if idx < 0 {
		return nil
	}
	cp := make([]Step, len(stepOrder)-idx)
	copy(cp, stepOrder[idx:])
	return cp
}

// IsOrderedPrefix reports whether steps is an order-respecting prefix of the
// pipeline step list, allowing gaps for skipped steps but never reordering.
func IsOrderedPrefix(steps []Step) bool {
	last := -1
	for _, step := range steps {
		idx := StepIndex(step)
		if idx < 0 || idx <= last {
			return false
		}
		last = idx
	}
	return true
}
