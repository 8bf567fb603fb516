package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/przemyslaw-muller/allworkouts/internal/auth"
	"github.com/przemyslaw-muller/allworkouts/internal/catalog"
	"github.com/przemyslaw-muller/allworkouts/internal/domain"
	"github.com/przemyslaw-muller/allworkouts/internal/extraction"
	"github.com/przemyslaw-muller/allworkouts/internal/importer"
)

type fixedExtractor struct {
	out extraction.Extraction
	err error
}

func (f fixedExtractor) Extract(ctx context.Context, req extraction.Request) (extraction.Extraction, error) {
	return f.out, f.err
}

func newTestHandler(ext extraction.Extractor) (*Handler, *catalog.InMemoryCatalog) {
	store := catalog.NewInMemoryCatalog()
	assembler := importer.New(store, ext, importer.DefaultConfig())
	return NewHandler(assembler, store), store
}

func planExtraction() extraction.Extraction {
	return extraction.Extraction{
		PlanName: "Full Body",
		Workouts: []extraction.RawWorkout{
			{
				Name:      "Day 1",
				DayNumber: 1,
				Items: []extraction.RawItem{
					{OriginalText: "Bench Press", Sets: 3, RepsMin: 8, RepsMax: 12},
				},
			},
		},
	}
}

func authedRequest(req *http.Request, scopes ...string) *http.Request {
	claims := &auth.Claims{
		Subject:   "user-1",
		Scopes:    scopesWith(scopes...),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

func scopesWith(values ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

func parseBody(text string) *bytes.Reader {
	buf, _ := json.Marshal(ParsePlanRequest{Text: text})
	return bytes.NewReader(buf)
}

const planText = "Day 1: Bench Press 3 sets of 8-12 reps, rest 90 seconds"

func TestParsePlanReturnsResult(t *testing.T) {
	handler, _ := newTestHandler(fixedExtractor{out: planExtraction()})

	req := authedRequest(httptest.NewRequest(http.MethodPost, "/v1/workout-plans/parse", parseBody(planText)), auth.ScopePlansImport)
	rr := httptest.NewRecorder()
	handler.parsePlan(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var body struct {
		Result domain.ParseResult `json:"result"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Result.PlanName != "Full Body" {
		t.Fatalf("expected plan name, got %q", body.Result.PlanName)
	}
	if len(body.Result.Exercises) != 1 {
		t.Fatalf("expected 1 exercise, got %d", len(body.Result.Exercises))
	}
	if body.Result.Exercises[0].BestMatch == nil || body.Result.Exercises[0].BestMatch.ExerciseID != "barbell-bench-press" {
		t.Fatalf("expected bench press match, got %+v", body.Result.Exercises[0].BestMatch)
	}
}

func TestParsePlanRequiresAuth(t *testing.T) {
	handler, _ := newTestHandler(fixedExtractor{out: planExtraction()})

	req := httptest.NewRequest(http.MethodPost, "/v1/workout-plans/parse", parseBody(planText))
	rr := httptest.NewRecorder()
	handler.parsePlan(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestParsePlanRequiresScope(t *testing.T) {
	handler, _ := newTestHandler(fixedExtractor{out: planExtraction()})

	req := authedRequest(httptest.NewRequest(http.MethodPost, "/v1/workout-plans/parse", parseBody(planText)), auth.ScopeExercisesRead)
	rr := httptest.NewRecorder()
	handler.parsePlan(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestParsePlanRejectsShortText(t *testing.T) {
	handler, _ := newTestHandler(fixedExtractor{out: planExtraction()})

	req := authedRequest(httptest.NewRequest(http.MethodPost, "/v1/workout-plans/parse", parseBody("3x5")), auth.ScopePlansImport)
	rr := httptest.NewRecorder()
	handler.parsePlan(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestParsePlanExtractionFailure(t *testing.T) {
	handler, _ := newTestHandler(fixedExtractor{err: extraction.ErrExtractionFailed})

	req := authedRequest(httptest.NewRequest(http.MethodPost, "/v1/workout-plans/parse", parseBody(planText)), auth.ScopePlansImport)
	rr := httptest.NewRecorder()
	handler.parsePlan(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body["type"] != "extraction_failed" {
		t.Fatalf("expected extraction_failed error type, got %q", body["type"])
	}
}

func TestParsePlanEmptyCatalog(t *testing.T) {
	handler, store := newTestHandler(fixedExtractor{out: planExtraction()})
	for _, ex := range mustExercises(t, store) {
		if err := store.Delete(context.Background(), ex.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
	}

	req := authedRequest(httptest.NewRequest(http.MethodPost, "/v1/workout-plans/parse", parseBody(planText)), auth.ScopePlansImport)
	rr := httptest.NewRecorder()
	handler.parsePlan(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

func TestParsePlanMethodNotAllowed(t *testing.T) {
	handler, _ := newTestHandler(fixedExtractor{out: planExtraction()})

	req := authedRequest(httptest.NewRequest(http.MethodGet, "/v1/workout-plans/parse", nil), auth.ScopePlansImport)
	rr := httptest.NewRecorder()
	handler.parsePlan(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestSubstitutesReturnsAlternatives(t *testing.T) {
	handler, _ := newTestHandler(fixedExtractor{})

	req := authedRequest(httptest.NewRequest(http.MethodGet, "/v1/exercises/conventional-deadlift/substitutes", nil), auth.ScopeExercisesRead)
	rr := httptest.NewRecorder()
	handler.exerciseSubstitutes(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var body struct {
		Items []domain.MatchCandidate `json:"items"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(body.Items) == 0 {
		t.Fatalf("expected at least one substitute")
	}
	for _, item := range body.Items {
		if item.ExerciseID == "conventional-deadlift" {
			t.Fatalf("substitutes must not include the original exercise")
		}
	}
}

func TestSubstitutesUnknownExercise(t *testing.T) {
	handler, _ := newTestHandler(fixedExtractor{})

	req := authedRequest(httptest.NewRequest(http.MethodGet, "/v1/exercises/missing/substitutes", nil), auth.ScopeExercisesRead)
	rr := httptest.NewRecorder()
	handler.exerciseSubstitutes(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestSubstitutesBadPath(t *testing.T) {
	handler, _ := newTestHandler(fixedExtractor{})

	req := authedRequest(httptest.NewRequest(http.MethodGet, "/v1/exercises/conventional-deadlift", nil), auth.ScopeExercisesRead)
	rr := httptest.NewRecorder()
	handler.exerciseSubstitutes(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing subresource, got %d", rr.Code)
	}
}

func TestSubstitutesRequiresScope(t *testing.T) {
	handler, _ := newTestHandler(fixedExtractor{})

	req := authedRequest(httptest.NewRequest(http.MethodGet, "/v1/exercises/conventional-deadlift/substitutes", nil), auth.ScopePlansImport)
	rr := httptest.NewRecorder()
	handler.exerciseSubstitutes(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestHealthz(t *testing.T) {
	rr := httptest.NewRecorder()
	healthz(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func mustExercises(t *testing.T, store *catalog.InMemoryCatalog) []domain.CanonicalExercise {
	t.Helper()
	exercises, err := store.Exercises(context.Background())
	if err != nil {
		t.Fatalf("exercises: %v", err)
	}
	return exercises
}
