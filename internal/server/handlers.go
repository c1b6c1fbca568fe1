package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// scoreResponse carries a fresh score, plus the rewritten score and delta
// when the request included a rewritten text.
type scoreResponse struct {
	Before types.Score  `json:"before"`
	After  *types.Score `json:"after,omitempty"`
	Delta  *types.Delta `json:"delta,omitempty"`
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req types.ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.RewrittenText == "" {
		before := s.scorer.CompositeScore(r.Context(), req.ResumeText, req.JobText)
		s.jsonResponse(w, http.StatusOK, scoreResponse{Before: before})
		return
	}

	before, after, delta := s.scorer.ScoreDelta(r.Context(), req.ResumeText, req.RewrittenText, req.JobText)
	s.jsonResponse(w, http.StatusOK, scoreResponse{Before: before, After: &after, Delta: &delta})
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req types.MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.store == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, (&ErrStoreUnavailable{}).Error())
		return
	}

	result, err := s.matcher.MatchBullet(r.Context(), req.UserID, req.BulletText, nil)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// generateResponse reports the rewrite and how its facts were sourced.
type generateResponse struct {
	Original   string             `json:"original"`
	Rewritten  string             `json:"rewritten"`
	FactSource string             `json:"fact_source"`
	Match      *types.MatchResult `json:"match,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	facts := req.Facts
	factSource := "request"
	if facts == nil {
		factSource = "none"
	}

	var match *types.MatchResult
	if facts == nil && req.UserID != "" && s.store != nil {
		m, err := s.matcher.MatchBullet(r.Context(), req.UserID, req.BulletText, nil)
		if err != nil {
			s.errorResponse(w, HTTPStatus(err), err.Error())
			return
		}
		match = &m

		if reusableTier(m.Tier, req.IncludeMedium) {
			stored, err := s.store.GetConfirmedFacts(r.Context(), m.BulletID)
			if err != nil {
				s.errorResponse(w, HTTPStatus(err), err.Error())
				return
			}
			if stored.HasMeaningfulFacts() {
				facts = stored
				factSource = "stored"
			}
		}
	}

	rewritten, err := s.generator.GenerateBullet(r.Context(), req.BulletText, req.JobText, facts, req.CharLimit)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, generateResponse{
		Original:   req.BulletText,
		Rewritten:  rewritten,
		FactSource: factSource,
		Match:      match,
	})
}

// reusableTier decides whether a match tier may feed stored facts into
// generation. Exact and high confidence always qualify; medium only when
// the caller opted in; no_match never does.
func reusableTier(tier types.MatchTier, includeMedium bool) bool {
	switch tier {
	case types.MatchExact, types.MatchHighConfidence:
		return true
	case types.MatchMediumConfidence:
		return includeMedium
	default:
		return false
	}
}

type batchRequest struct {
	Bullets   []string `json:"bullets"`
	JobText   string   `json:"job_text"`
	CharLimit int      `json:"char_limit,omitempty"`
}

type batchResponse struct {
	Bullets []string `json:"bullets"`
}

func (s *Server) handleGenerateBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Bullets) == 0 || req.JobText == "" {
		s.errorResponse(w, http.StatusBadRequest, "bullets and job_text are required")
		return
	}

	rewritten, err := s.generator.RewriteBatch(r.Context(), req.Bullets, req.JobText, req.CharLimit)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, batchResponse{Bullets: rewritten})
}

type fitResponse struct {
	Text   string `json:"text"`
	Length int    `json:"length"`
	Cap    int    `json:"cap"`
}

func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	var req types.FitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	fitted := s.fitter.FitToCap(r.Context(), req.Text, req.Cap)
	s.jsonResponse(w, http.StatusOK, fitResponse{Text: fitted, Length: utf8.RuneCountInString(fitted), Cap: req.Cap})
}

type saveBulletRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

func (s *Server) handleSaveBullet(w http.ResponseWriter, r *http.Request) {
	var req saveBulletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" || req.Text == "" {
		s.errorResponse(w, http.StatusBadRequest, "user_id and text are required")
		return
	}
	if s.store == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, (&ErrStoreUnavailable{}).Error())
		return
	}

	var embedding []float32
	if s.client != nil {
		if vec, err := s.client.Embed(r.Context(), req.Text); err == nil {
			embedding = vec
		}
	}

	id, err := s.store.SaveBullet(r.Context(), req.UserID, req.Text, embedding)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusCreated, map[string]string{"id": id.String()})
}

type extractFactsRequest struct {
	QAPairs []types.QAPair `json:"qa_pairs"`
}

type extractFactsResponse struct {
	RecordID uuid.UUID      `json:"record_id"`
	Facts    *types.FactSet `json:"facts"`
}

func (s *Server) handleExtractFacts(w http.ResponseWriter, r *http.Request) {
	bulletID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid bullet id")
		return
	}

	var req extractFactsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.QAPairs) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "qa_pairs are required")
		return
	}
	if s.store == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, (&ErrStoreUnavailable{}).Error())
		return
	}

	bullet, err := s.store.GetBullet(r.Context(), bulletID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if bullet == nil {
		notFound := &ErrNotFound{Resource: "bullet", ID: bulletID.String()}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	s.recordQASession(r.Context(), bulletID, req.QAPairs)

	facts, err := s.generator.ExtractFacts(r.Context(), bullet.Text, req.QAPairs)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	// Stored unconfirmed; the user must confirm before generation sees it.
	recordID, err := s.store.SaveFactRecord(r.Context(), bulletID, facts)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, extractFactsResponse{RecordID: recordID, Facts: facts})
}

// handleListFacts returns every fact record for a bullet, newest first, so
// callers can pick the record id to confirm.
func (s *Server) handleListFacts(w http.ResponseWriter, r *http.Request) {
	bulletID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid bullet id")
		return
	}
	if s.store == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, (&ErrStoreUnavailable{}).Error())
		return
	}

	records, err := s.store.ListFactRecords(r.Context(), bulletID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if records == nil {
		records = []types.FactRecord{}
	}
	s.jsonResponse(w, http.StatusOK, map[string][]types.FactRecord{"records": records})
}

// recordQASession persists the Q&A exchange behind a fact extraction. The
// conversation is an audit trail; the fact record is the artifact, so
// persistence failures are logged and never block extraction.
func (s *Server) recordQASession(ctx context.Context, bulletID uuid.UUID, pairs []types.QAPair) {
	sessionID, err := s.store.CreateQASession(ctx, bulletID)
	if err != nil {
		log.Printf("server: creating qa session for bullet %s: %v", bulletID, err)
		return
	}
	for _, p := range pairs {
		if err := s.store.AddQAPair(ctx, sessionID, p.Question, p.Answer); err != nil {
			log.Printf("server: recording qa pair in session %s: %v", sessionID, err)
			return
		}
	}
	if err := s.store.CompleteQASession(ctx, sessionID); err != nil {
		log.Printf("server: completing qa session %s: %v", sessionID, err)
	}
}

func (s *Server) handleConfirmFacts(w http.ResponseWriter, r *http.Request) {
	recordID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid fact record id")
		return
	}
	if s.store == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, (&ErrStoreUnavailable{}).Error())
		return
	}

	if err := s.store.ConfirmFactRecord(r.Context(), recordID); err != nil {
		s.errorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "confirmed"})
}
