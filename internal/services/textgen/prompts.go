package textgen

const rewritePrompt = `You are a script editor for narrated short-form videos.
Rewrite the provided script for spoken narration: tighten pacing, remove
stage directions, keep the author's voice. Respond with JSON:
{"script": "<rewritten script>"}`

const splitScenesPrompt = `You split narration scripts into ordered scenes.
Mode "duration" targets 6-10 second scenes; mode "sentence" splits on
sentence boundaries. Respond with JSON:
{"scenes": [{"index": 1, "text": "...", "duration_hint_sec": 8.0}]}
Indexes start at 1 and must be contiguous.`

const metadataPrompt = `You write publishing metadata for narrated videos.
Given a script and optional style samples, respond with JSON:
{"title": "...", "description": "...", "thumbnail_prompt": "..."}`

const keywordsPrompt = `You produce stock-footage search keywords for video
scenes. Mode "per_scene" yields keywords per scene; mode "global" yields one
shared set applied to every scene. Respond with JSON:
{"scenes": [{"scene_index": 1, "keywords": ["..."]}]}`

const directionPrompt = `You are a video director. For each scene, write
concise visual direction notes (framing, motion, tone), honoring any style
references. Respond with JSON:
{"directions": [{"scene_index": 1, "notes": "..."}]}`

const videoPromptsPrompt = `You write text-to-video generation prompts. For
each scene, combine its narration and direction notes into one prompt.
Respond with JSON:
{"prompts": [{"scene_index": 1, "prompt": "..."}]}`

const entitiesPrompt = `You extract recurring visual entities (characters,
locations, objects) that must stay consistent across scenes. Respond with
JSON: {"entities": [{"name": "...", "kind": "...", "description": "..."}]}`

const referencePromptsPrompt = `You write reference-image generation prompts,
one per entity, capturing its canonical appearance. Respond with JSON:
{"prompts": [{"entity": "...", "prompt": "..."}]}`

const sceneBuilderPrompt = `You compose final per-scene prompts by merging the
scene's video prompt, the relevant entity references, and direction notes.
Respond with JSON:
{"prompts": [{"scene_index": 1, "prompt": "..."}]}`

const seoPrompt = `You generate SEO metadata for a narrated video script.
Respond with JSON:
{"keywords": ["..."], "tags": ["..."], "category": "..."}`
