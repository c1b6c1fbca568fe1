package schemas

// embedded holds the JSON Schema documents by name. Schemas live as string
// constants rather than files so the binary stays self-contained.
var embedded = map[string]string{
	"factset":      factSetSchema,
	"score":        scoreSchema,
	"match_result": matchResultSchema,
}

const factSetSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "situation": {"type": "string"},
    "actions": {"type": "array", "items": {"type": "string"}},
    "results": {"type": "array", "items": {"type": "string"}},
    "skills": {"type": "array", "items": {"type": "string"}},
    "tools": {"type": "array", "items": {"type": "string"}},
    "timeline": {"type": "string"}
  },
  "additionalProperties": false
}`

const scoreSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["embed_sim", "keyword_cov", "llm_score", "composite"],
  "properties": {
    "embed_sim": {"type": "number", "minimum": -1, "maximum": 1},
    "keyword_cov": {"type": "number", "minimum": 0, "maximum": 1},
    "llm_score": {"type": "number", "minimum": 0, "maximum": 100},
    "composite": {"type": "number", "minimum": -100, "maximum": 100},
    "distilled_used": {"type": "boolean"},
    "llm_terms_used": {"type": "boolean"}
  },
  "additionalProperties": false
}`

const matchResultSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["match_type", "similarity_score"],
  "properties": {
    "match_type": {
      "type": "string",
      "enum": ["exact", "high_confidence", "medium_confidence", "no_match"]
    },
    "bullet_id": {"type": "string"},
    "similarity_score": {"type": "number", "minimum": 0, "maximum": 1},
    "existing_bullet_text": {"type": "string"}
  },
  "additionalProperties": false
}`
