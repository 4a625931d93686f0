package types

// ScenarioParsePrompt LLM 场景解析提示词。
// %s 依次为：目标语言、剧本全文。
var ScenarioParsePrompt = `You are a professional film director and storyboard artist.
I will give you a short-video scenario written in free text. Break it down into an ordered list of visual scenes.

Requirements:
1. **Completeness**: every part of the scenario must belong to exactly one scene, in original order.
2. **Duration**: estimate each scene's duration in seconds from its content (dialogue and action density).
3. **Dialogue**: extract spoken lines as {character, line} pairs; keep the original wording.
4. **Visuals**: for each scene give a one-sentence summary, the environment, the characters present, the key actions, the dominant emotions, a visual style, an optional lighting hint, camera suggestions, and a transition hint to the next scene.
5. **Language**: respond in %s.
6. **JSON output**: the result must be a strict JSON object.

Output JSON structure:
{
  "scenes": [
    {
      "scene_id": "scene_1",
      "duration_estimate_sec": 8.0,
      "summary": "...",
      "environment": "...",
      "characters": ["..."],
      "dialogue_blocks": [{"character": "...", "line": "..."}],
      "actions": ["..."],
      "emotions": ["..."],
      "visual_style": "...",
      "lighting": "...",
      "camera_suggestions": ["..."],
      "transition_to_next": "cut"
    }
  ],
  "warnings": []
}

Ignore any [type: value] tags embedded in the text; they are handled separately.

Here is the scenario:
%s
`
