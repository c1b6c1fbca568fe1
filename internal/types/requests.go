package types

import "github.com/go-playground/validator/v10"

// ScoreRequest asks for a composite fit score of resume text against a job
// description, optionally scoring a rewritten version for a delta.
type ScoreRequest struct {
	ResumeText    string `json:"resume_text" validate:"required,min=1"`
	JobText       string `json:"job_text" validate:"required,min=1"`
	RewrittenText string `json:"rewritten_text,omitempty"`
}

// MatchRequest asks which stored bullet (if any) a new bullet corresponds to.
type MatchRequest struct {
	UserID     string `json:"user_id" validate:"required"`
	BulletText string `json:"bullet_text" validate:"required,min=1"`
}

// GenerateRequest asks for a JD-aligned rewrite of one bullet. Facts are
// optional; when UserID is set the server resolves stored facts through the
// matcher instead. IncludeMedium opts medium-confidence matches into fact
// reuse (off by default).
type GenerateRequest struct {
	BulletText    string   `json:"bullet_text" validate:"required,min=1"`
	JobText       string   `json:"job_text" validate:"required,min=1"`
	UserID        string   `json:"user_id,omitempty"`
	Facts         *FactSet `json:"facts,omitempty"`
	CharLimit     int      `json:"char_limit,omitempty" validate:"omitempty,min=1"`
	IncludeMedium bool     `json:"include_medium,omitempty"`
}

// FitRequest asks for text to be fitted into a character cap.
type FitRequest struct {
	Text string `json:"text" validate:"required"`
	Cap  int    `json:"cap" validate:"required,min=1"`
}

// Validate validates the ScoreRequest using the validator.
func (r *ScoreRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the MatchRequest using the validator.
func (r *MatchRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the GenerateRequest using the validator.
func (r *GenerateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the FitRequest using the validator.
func (r *FitRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
