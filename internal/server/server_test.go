package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-optimizer/internal/generation"
	"github.com/jonathan/resume-optimizer/internal/jd"
	"github.com/jonathan/resume-optimizer/internal/lengthfit"
	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/matching"
	"github.com/jonathan/resume-optimizer/internal/scoring"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// stubStore implements Store in memory.
type stubStore struct {
	bullets    []types.Bullet
	facts      map[uuid.UUID]*types.FactSet
	records    map[uuid.UUID][]types.FactRecord
	confirmed  map[uuid.UUID]bool
	qaSessions map[uuid.UUID][]types.QAPair
	qaComplete map[uuid.UUID]bool
	saveErr    error
}

func newStubStore() *stubStore {
	return &stubStore{
		facts:      make(map[uuid.UUID]*types.FactSet),
		records:    make(map[uuid.UUID][]types.FactRecord),
		confirmed:  make(map[uuid.UUID]bool),
		qaSessions: make(map[uuid.UUID][]types.QAPair),
		qaComplete: make(map[uuid.UUID]bool),
	}
}

func (s *stubStore) ListEmbeddingsForUser(_ context.Context, userID string) ([]types.Bullet, error) {
	var out []types.Bullet
	for _, b := range s.bullets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *stubStore) SaveBullet(_ context.Context, userID, text string, embedding []float32) (uuid.UUID, error) {
	if s.saveErr != nil {
		return uuid.Nil, s.saveErr
	}
	b := types.Bullet{ID: uuid.New(), UserID: userID, Text: text, Embedding: embedding}
	s.bullets = append(s.bullets, b)
	return b.ID, nil
}

func (s *stubStore) GetBullet(_ context.Context, bulletID uuid.UUID) (*types.Bullet, error) {
	for _, b := range s.bullets {
		if b.ID == bulletID {
			return &b, nil
		}
	}
	return nil, nil
}

func (s *stubStore) SaveFactRecord(_ context.Context, bulletID uuid.UUID, facts *types.FactSet) (uuid.UUID, error) {
	id := uuid.New()
	s.facts[bulletID] = facts
	s.confirmed[id] = false
	s.records[bulletID] = append(s.records[bulletID], types.FactRecord{ID: id, BulletID: bulletID, Facts: *facts})
	return id, nil
}

func (s *stubStore) ConfirmFactRecord(_ context.Context, recordID uuid.UUID) error {
	if _, ok := s.confirmed[recordID]; !ok {
		return &ErrNotFound{Resource: "fact record", ID: recordID.String()}
	}
	s.confirmed[recordID] = true
	return nil
}

func (s *stubStore) GetConfirmedFacts(_ context.Context, bulletID uuid.UUID) (*types.FactSet, error) {
	return s.facts[bulletID], nil
}

func (s *stubStore) ListFactRecords(_ context.Context, bulletID uuid.UUID) ([]types.FactRecord, error) {
	return s.records[bulletID], nil
}

func (s *stubStore) CreateQASession(_ context.Context, _ uuid.UUID) (uuid.UUID, error) {
	id := uuid.New()
	s.qaSessions[id] = nil
	return id, nil
}

func (s *stubStore) AddQAPair(_ context.Context, sessionID uuid.UUID, question, answer string) error {
	s.qaSessions[sessionID] = append(s.qaSessions[sessionID], types.QAPair{Question: question, Answer: answer})
	return nil
}

func (s *stubStore) CompleteQASession(_ context.Context, sessionID uuid.UUID) error {
	s.qaComplete[sessionID] = true
	return nil
}

// stubClient routes prompts by recognizable fragments.
type stubClient struct {
	rewriteResponse string
	extractResponse string
	factsPrompted   bool
}

func (s *stubClient) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	if strings.Contains(prompt, "VERIFIED FACTS") {
		s.factsPrompted = true
	}
	if strings.Contains(prompt, "Distill the JOB DESCRIPTION") {
		return strings.Repeat("role core line. ", 5), nil
	}
	return s.rewriteResponse, nil
}

func (s *stubClient) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	if strings.Contains(prompt, "strict recruiter") {
		return "70", nil
	}
	if strings.Contains(prompt, "Extract structured facts") && s.extractResponse != "" {
		return s.extractResponse, nil
	}
	return "{}", nil
}

func (s *stubClient) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (s *stubClient) GetModel(_ llm.ModelTier) string { return "stub" }

func (s *stubClient) Close() error { return nil }

// newTestServer wires handlers around stubs without touching the network.
func newTestServer(store Store, client llm.Client) *Server {
	distiller := jd.NewDistiller(client, nil, nil)
	fitter := lengthfit.NewFitter(nil, 0)
	return &Server{
		store:     store,
		client:    client,
		scorer:    scoring.NewScorer(client, distiller, scoring.DefaultWeights()),
		matcher:   matching.NewMatcher(store, client),
		generator: generation.NewGenerator(client, distiller, fitter),
		fitter:    fitter,
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	encoded, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(encoded))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	s.handleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestHandleScore_MissingFields(t *testing.T) {
	s := newTestServer(nil, nil)

	rec := postJSON(t, s.handleScore, "/score", map[string]string{"resume_text": "only resume"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleScore_NoProviderStillScores(t *testing.T) {
	s := newTestServer(nil, nil)

	rec := postJSON(t, s.handleScore, "/score", types.ScoreRequest{
		ResumeText: "go engineer",
		JobText:    "go engineer role",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp scoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0.0, resp.Before.LLMScore)
	assert.Nil(t, resp.After)
}

func TestHandleScore_WithRewrittenReturnsDelta(t *testing.T) {
	s := newTestServer(nil, &stubClient{})

	rec := postJSON(t, s.handleScore, "/score", types.ScoreRequest{
		ResumeText:    "managed infrastructure",
		JobText:       "cloud role",
		RewrittenText: "managed cloud infrastructure",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp scoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.After)
	require.NotNil(t, resp.Delta)
	assert.Equal(t, 70.0, resp.Before.LLMScore)
}

func TestHandleMatch_NoStore(t *testing.T) {
	s := newTestServer(nil, nil)

	rec := postJSON(t, s.handleMatch, "/match", types.MatchRequest{
		UserID:     "user-1",
		BulletText: "some bullet",
	})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleMatch_ExactMatch(t *testing.T) {
	store := newStubStore()
	store.bullets = append(store.bullets, types.Bullet{
		ID:     uuid.New(),
		UserID: "user-1",
		Text:   "Led team of 5 engineers",
	})
	s := newTestServer(store, nil)

	rec := postJSON(t, s.handleMatch, "/match", types.MatchRequest{
		UserID:     "user-1",
		BulletText: "Led team of 5 engineers",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var result types.MatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, types.MatchExact, result.Tier)
	assert.Equal(t, 1.0, result.Similarity)
}

func TestHandleGenerate_NoProvider(t *testing.T) {
	s := newTestServer(nil, nil)

	rec := postJSON(t, s.handleGenerate, "/generate", types.GenerateRequest{
		BulletText: "a bullet",
		JobText:    "a jd",
	})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleGenerate_RequestFacts(t *testing.T) {
	client := &stubClient{rewriteResponse: "Automated releases with Python"}
	s := newTestServer(nil, client)

	rec := postJSON(t, s.handleGenerate, "/generate", types.GenerateRequest{
		BulletText: "Improved deployments",
		JobText:    "platform role",
		Facts:      &types.FactSet{Tools: []string{"Python"}},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "request", resp.FactSource)
	assert.True(t, client.factsPrompted)
}

func TestHandleGenerate_StoredFactsViaExactMatch(t *testing.T) {
	store := newStubStore()
	bulletID := uuid.New()
	store.bullets = append(store.bullets, types.Bullet{
		ID:     bulletID,
		UserID: "user-1",
		Text:   "Improved deployments",
	})
	store.facts[bulletID] = &types.FactSet{Tools: []string{"Terraform"}}

	client := &stubClient{rewriteResponse: "Automated deployments with Terraform"}
	s := newTestServer(store, client)

	rec := postJSON(t, s.handleGenerate, "/generate", types.GenerateRequest{
		BulletText: "Improved deployments",
		JobText:    "platform role",
		UserID:     "user-1",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "stored", resp.FactSource)
	require.NotNil(t, resp.Match)
	assert.Equal(t, types.MatchExact, resp.Match.Tier)
	assert.True(t, client.factsPrompted)
}

func TestHandleGenerate_NoMatchStaysConservative(t *testing.T) {
	store := newStubStore()
	client := &stubClient{rewriteResponse: "Sharpened deployment process"}
	s := newTestServer(store, client)

	rec := postJSON(t, s.handleGenerate, "/generate", types.GenerateRequest{
		BulletText: "Improved deployments",
		JobText:    "platform role",
		UserID:     "user-with-no-bullets",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "none", resp.FactSource)
	assert.False(t, client.factsPrompted)
}

func TestReusableTier(t *testing.T) {
	assert.True(t, reusableTier(types.MatchExact, false))
	assert.True(t, reusableTier(types.MatchHighConfidence, false))
	assert.False(t, reusableTier(types.MatchMediumConfidence, false))
	assert.True(t, reusableTier(types.MatchMediumConfidence, true))
	assert.False(t, reusableTier(types.MatchNone, true))
}

func TestHandleGenerateBatch_MissingFields(t *testing.T) {
	s := newTestServer(nil, &stubClient{})

	rec := postJSON(t, s.handleGenerateBatch, "/generate/batch", batchRequest{JobText: "jd"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleFit_Truncates(t *testing.T) {
	s := newTestServer(nil, nil)

	rec := postJSON(t, s.handleFit, "/fit", types.FitRequest{
		Text: strings.Repeat("word ", 50),
		Cap:  40,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp fitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.LessOrEqual(t, resp.Length, 40)
	assert.Equal(t, 40, resp.Cap)
}

func TestHandleSaveBullet(t *testing.T) {
	store := newStubStore()
	s := newTestServer(store, &stubClient{})

	rec := postJSON(t, s.handleSaveBullet, "/bullets", saveBulletRequest{
		UserID: "user-1",
		Text:   "Shipped the payments service",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.bullets, 1)
	assert.Equal(t, []float32{1, 0}, store.bullets[0].Embedding)
}

func TestHandleExtractFacts(t *testing.T) {
	store := newStubStore()
	bulletID := uuid.New()
	store.bullets = append(store.bullets, types.Bullet{
		ID:     bulletID,
		UserID: "user-1",
		Text:   "Improved deployments",
	})
	client := &stubClient{extractResponse: `{"tools": ["Terraform"], "results": ["cut deploy time in half"]}`}
	s := newTestServer(store, client)

	encoded, err := json.Marshal(extractFactsRequest{
		QAPairs: []types.QAPair{{Question: "What tool did you use?", Answer: "Terraform"}},
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/bullets/"+bulletID.String()+"/facts", bytes.NewReader(encoded))
	req.SetPathValue("id", bulletID.String())
	rec := httptest.NewRecorder()

	s.handleExtractFacts(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp extractFactsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Facts)
	assert.Equal(t, []string{"Terraform"}, resp.Facts.Tools)

	// The fact record is stored unconfirmed and the conversation persisted.
	assert.Contains(t, store.confirmed, resp.RecordID)
	assert.False(t, store.confirmed[resp.RecordID])
	require.Len(t, store.qaSessions, 1)
	for id, pairs := range store.qaSessions {
		require.Len(t, pairs, 1)
		assert.Equal(t, "Terraform", pairs[0].Answer)
		assert.True(t, store.qaComplete[id])
	}
}

func TestHandleExtractFacts_UnknownBullet(t *testing.T) {
	s := newTestServer(newStubStore(), &stubClient{})
	missing := uuid.New()

	encoded, err := json.Marshal(extractFactsRequest{
		QAPairs: []types.QAPair{{Question: "q", Answer: "a"}},
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/bullets/"+missing.String()+"/facts", bytes.NewReader(encoded))
	req.SetPathValue("id", missing.String())
	rec := httptest.NewRecorder()

	s.handleExtractFacts(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleListFacts(t *testing.T) {
	store := newStubStore()
	bulletID := uuid.New()
	recordID, err := store.SaveFactRecord(context.Background(), bulletID, &types.FactSet{Tools: []string{"Go"}})
	require.NoError(t, err)
	s := newTestServer(store, nil)

	req := httptest.NewRequest(http.MethodGet, "/bullets/"+bulletID.String()+"/facts", nil)
	req.SetPathValue("id", bulletID.String())
	rec := httptest.NewRecorder()

	s.handleListFacts(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Records []types.FactRecord `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Records, 1)
	assert.Equal(t, recordID, resp.Records[0].ID)
}

func TestHandleListFacts_EmptyBullet(t *testing.T) {
	s := newTestServer(newStubStore(), nil)
	bulletID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/bullets/"+bulletID.String()+"/facts", nil)
	req.SetPathValue("id", bulletID.String())
	rec := httptest.NewRecorder()

	s.handleListFacts(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"records":[]`)
}

func TestHandleConfirmFacts_InvalidID(t *testing.T) {
	s := newTestServer(newStubStore(), nil)

	req := httptest.NewRequest(http.MethodPost, "/facts/not-a-uuid/confirm", nil)
	req.SetPathValue("id", "not-a-uuid")
	rec := httptest.NewRecorder()

	s.handleConfirmFacts(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(&generation.ProviderUnavailableError{Operation: "x"}))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(&generation.GenerationError{Message: "x"}))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(&ErrValidation{Field: "f", Message: "m"}))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(&ErrNotFound{Resource: "bullet", ID: "1"}))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(assert.AnError))
}
