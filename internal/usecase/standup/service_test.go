package standup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/labops-team/standup-assistant/internal/domain/entities"
	"github.com/labops-team/standup-assistant/internal/domain/repositories"
	"github.com/labops-team/standup-assistant/internal/usecase/archive"
	"github.com/labops-team/standup-assistant/internal/usecase/audio"
	"github.com/labops-team/standup-assistant/pkg/ai"
)

// --- fakes ---

type fakeStandupRepo struct {
	standups map[uuid.UUID]*entities.Standup
}

func newFakeStandupRepo() *fakeStandupRepo {
	return &fakeStandupRepo{standups: make(map[uuid.UUID]*entities.Standup)}
}

func (r *fakeStandupRepo) add(s *entities.Standup) { r.standups[s.ID] = s }

func (r *fakeStandupRepo) Create(_ context.Context, s *entities.Standup) error {
	r.standups[s.ID] = s
	return nil
}

func (r *fakeStandupRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Standup, error) {
	s, ok := r.standups[id]
	if !ok || !s.IsActive {
		return nil, nil
	}
	return s, nil
}

func (r *fakeStandupRepo) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*entities.Standup, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeStandupRepo) FindByLab(_ context.Context, labID uuid.UUID, _ repositories.StandupListOptions) ([]*entities.Standup, int64, error) {
	var out []*entities.Standup
	for _, s := range r.standups {
		if s.IsActive && s.LabID == labID {
			out = append(out, s)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeStandupRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*entities.Standup, error) {
	var out []*entities.Standup
	for _, id := range ids {
		if s, ok := r.standups[id]; ok && s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeStandupRepo) Update(_ context.Context, s *entities.Standup) error {
	r.standups[s.ID] = s
	return nil
}

func (r *fakeStandupRepo) UpdateAudioURL(_ context.Context, id uuid.UUID, audioURL *string) error {
	s, ok := r.standups[id]
	if !ok {
		return entities.ErrStandupNotFound
	}
	s.AudioURL = audioURL
	return nil
}

func (r *fakeStandupRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	s, ok := r.standups[id]
	if !ok {
		return entities.ErrStandupNotFound
	}
	s.IsActive = false
	return nil
}

func (r *fakeStandupRepo) ActiveAudioURLs(_ context.Context) ([]string, error) { return nil, nil }

func (r *fakeStandupRepo) Stats(_ context.Context, _ uuid.UUID) (*repositories.StandupStats, error) {
	return &repositories.StandupStats{}, nil
}

func (r *fakeStandupRepo) CountWithAudio(_ context.Context) (int64, int64, error) { return 0, 0, nil }

type fakeArtifactRepo struct {
	standups *fakeStandupRepo

	saved        map[uuid.UUID]repositories.ExtractionArtifacts
	participants map[uuid.UUID][]uuid.UUID
	failSave     error
}

func newFakeArtifactRepo(standups *fakeStandupRepo) *fakeArtifactRepo {
	return &fakeArtifactRepo{
		standups:     standups,
		saved:        make(map[uuid.UUID]repositories.ExtractionArtifacts),
		participants: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (r *fakeArtifactRepo) SaveExtraction(ctx context.Context, standupID uuid.UUID, artifacts repositories.ExtractionArtifacts) (*entities.Standup, error) {
	if r.failSave != nil {
		return nil, r.failSave
	}
	r.saved[standupID] = artifacts
	if artifacts.ParticipantUserIDs != nil {
		r.participants[standupID] = artifacts.ParticipantUserIDs
	}
	return r.standups.FindByIDWithRelations(ctx, standupID)
}

func (r *fakeArtifactRepo) UpdateActionItemCompleted(_ context.Context, _ uuid.UUID, _ bool) error {
	return nil
}

func (r *fakeArtifactRepo) UpdateBlockerResolved(_ context.Context, _ uuid.UUID, _ bool) error {
	return nil
}

type fakeUserRepo struct {
	users []*entities.User
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByName(_ context.Context, name string) (*entities.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Name, name) {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByFirstName(_ context.Context, firstName string) (*entities.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.FirstName(), firstName) {
			return u, nil
		}
	}
	return nil, nil
}

type fakeAudioStore struct {
	stored  map[uuid.UUID][]byte
	deleted []string
	failure error
}

func newFakeAudioStore() *fakeAudioStore {
	return &fakeAudioStore{stored: make(map[uuid.UUID][]byte)}
}

func (s *fakeAudioStore) Store(_ context.Context, standupID uuid.UUID, data []byte, mimeType string) (*audio.StoredAudio, error) {
	if s.failure != nil {
		return nil, s.failure
	}
	s.stored[standupID] = data
	filename := fmt.Sprintf("%s-1.webm", standupID)
	return &audio.StoredAudio{
		Filename: filename,
		URL:      "/standups/audio/" + filename,
		Size:     int64(len(data)),
	}, nil
}

func (s *fakeAudioStore) DeleteFile(filename string) error {
	s.deleted = append(s.deleted, filename)
	return nil
}

type fakeArchiver struct {
	archives map[uuid.UUID]*entities.TranscriptArchive
}

func newFakeArchiver() *fakeArchiver {
	return &fakeArchiver{archives: make(map[uuid.UUID]*entities.TranscriptArchive)}
}

func (a *fakeArchiver) Create(_ context.Context, standupID uuid.UUID, transcript string, in archive.CreateInput) (*entities.TranscriptArchive, error) {
	if _, exists := a.archives[standupID]; exists {
		return nil, entities.ErrArchiveExists
	}
	arch := entities.NewTranscriptArchive(standupID, transcript, entities.DefaultRetentionDays)
	arch.AudioURL = in.AudioURL
	arch.Duration = in.Duration
	if in.Language != "" {
		arch.Language = in.Language
	}
	a.archives[standupID] = arch
	return arch, nil
}

func (a *fakeArchiver) GetByStandupID(_ context.Context, standupID uuid.UUID) (*entities.TranscriptArchive, error) {
	arch, ok := a.archives[standupID]
	if !ok {
		return nil, entities.ErrArchiveNotFound
	}
	return arch, nil
}

func (a *fakeArchiver) Search(_ context.Context, term string, _ repositories.ArchiveSearchOptions) ([]*entities.TranscriptArchive, error) {
	var out []*entities.TranscriptArchive
	for _, arch := range a.archives {
		if strings.Contains(strings.ToLower(arch.Transcript), strings.ToLower(term)) {
			out = append(out, arch)
		}
	}
	return out, nil
}

type fakeTranscriber struct {
	transcript string
	calls      int
	failure    error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ []byte, _ string, _ ai.TranscribeOptions) (*ai.TranscriptionResult, error) {
	f.calls++
	if f.failure != nil {
		return nil, f.failure
	}
	return &ai.TranscriptionResult{Transcript: f.transcript, Language: "en"}, nil
}

type fakeExtractor struct {
	response string
	calls    int
	failure  error
}

func (f *fakeExtractor) GenerateStandupExtraction(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.failure != nil {
		return "", f.failure
	}
	return f.response, nil
}

type fakeLocker struct {
	held map[uuid.UUID]bool
}

func newFakeLocker() *fakeLocker { return &fakeLocker{held: make(map[uuid.UUID]bool)} }

func (l *fakeLocker) Acquire(_ context.Context, id uuid.UUID) (bool, error) {
	if l.held[id] {
		return false, nil
	}
	l.held[id] = true
	return true, nil
}

func (l *fakeLocker) Release(_ context.Context, id uuid.UUID) error {
	delete(l.held, id)
	return nil
}

// --- fixtures ---

const testTranscript = "Alice will fix the bug. Bob is blocked on IRB approval."

const testExtractionResponse = `{
	"summary": "Alice fixes the bug, Bob is blocked on IRB approval.",
	"actionItems": [{"description": "Fix the bug", "assignee": "Alice Nguyen", "dueDate": "2026-09-01"}],
	"blockers": [{"description": "Blocked on IRB approval", "resolved": false}],
	"decisions": [{"description": "Escalate the IRB request"}],
	"participants": ["Alice Nguyen", "Bob", "Carol Unknown"]
}`

type harness struct {
	svc         *Service
	standups    *fakeStandupRepo
	artifacts   *fakeArtifactRepo
	audio       *fakeAudioStore
	archiver    *fakeArchiver
	transcriber *fakeTranscriber
	extractor   *fakeExtractor
	locker      *fakeLocker
	alice       *entities.User
	bob         *entities.User
}

func newHarness() *harness {
	standups := newFakeStandupRepo()
	artifacts := newFakeArtifactRepo(standups)
	alice := &entities.User{ID: uuid.New(), Name: "Alice Nguyen", Email: "alice@lab.test", IsActive: true}
	bob := &entities.User{ID: uuid.New(), Name: "Bob Tran", Email: "bob@lab.test", IsActive: true}
	users := &fakeUserRepo{users: []*entities.User{alice, bob}}
	audioStore := newFakeAudioStore()
	archiver := newFakeArchiver()
	transcriber := &fakeTranscriber{transcript: testTranscript}
	extractor := &fakeExtractor{response: testExtractionResponse}
	locker := newFakeLocker()

	svc := NewService(standups, artifacts, users, audioStore, archiver, transcriber, extractor, locker, 0, zap.NewNop())
	return &harness{
		svc:         svc,
		standups:    standups,
		artifacts:   artifacts,
		audio:       audioStore,
		archiver:    archiver,
		transcriber: transcriber,
		extractor:   extractor,
		locker:      locker,
		alice:       alice,
		bob:         bob,
	}
}

func (h *harness) newStandup() *entities.Standup {
	s := entities.NewStandup(uuid.New(), time.Now())
	h.standups.add(s)
	return s
}

// --- tests ---

func TestProcessAudio_HappyPath(t *testing.T) {
	h := newHarness()
	s := h.newStandup()

	result, err := h.svc.ProcessAudio(context.Background(), s.ID, []byte("audio"), "audio/webm")
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	if result.Archive.WordCount != 11 {
		t.Fatalf("archive word count = %d, want 11", result.Archive.WordCount)
	}
	if result.Summary == "" {
		t.Fatal("summary missing from result")
	}

	saved, ok := h.artifacts.saved[s.ID]
	if !ok {
		t.Fatal("artifacts not persisted")
	}
	if len(saved.ActionItems) != 1 {
		t.Fatalf("action items = %d, want 1", len(saved.ActionItems))
	}
	item := saved.ActionItems[0]
	if item.AssigneeID == nil || *item.AssigneeID != h.alice.ID {
		t.Fatalf("assignee = %v, want alice (%s)", item.AssigneeID, h.alice.ID)
	}
	if item.DueDate == nil || item.DueDate.Format("2006-01-02") != "2026-09-01" {
		t.Fatalf("due date = %v, want 2026-09-01", item.DueDate)
	}
	if len(saved.Blockers) != 1 || saved.Blockers[0].Resolved {
		t.Fatalf("blockers = %+v", saved.Blockers)
	}
	if len(saved.Decisions) != 1 {
		t.Fatalf("decisions = %+v", saved.Decisions)
	}
	if !strings.Contains(string(saved.RawExtraction), `"summary"`) {
		t.Fatalf("normalized extraction document not recorded: %s", saved.RawExtraction)
	}

	// "Alice Nguyen" resolves exactly, "Bob" by first name, "Carol Unknown"
	// stays unresolved and is dropped from the participant set.
	participants := h.artifacts.participants[s.ID]
	if len(participants) != 2 {
		t.Fatalf("participants = %v, want alice and bob", participants)
	}

	if h.locker.held[s.ID] {
		t.Fatal("processing lock not released")
	}
}

func TestProcessAudio_LockedStandupRejected(t *testing.T) {
	h := newHarness()
	s := h.newStandup()
	h.locker.held[s.ID] = true

	_, err := h.svc.ProcessAudio(context.Background(), s.ID, []byte("audio"), "audio/webm")
	if !errors.Is(err, entities.ErrProcessingLocked) {
		t.Fatalf("err = %v, want ErrProcessingLocked", err)
	}
	if h.transcriber.calls != 0 {
		t.Fatal("pipeline ran despite held lock")
	}
}

func TestProcessAudio_UnknownStandup(t *testing.T) {
	h := newHarness()

	_, err := h.svc.ProcessAudio(context.Background(), uuid.New(), []byte("audio"), "audio/webm")
	if !errors.Is(err, entities.ErrStandupNotFound) {
		t.Fatalf("err = %v, want ErrStandupNotFound", err)
	}
}

func TestProcessAudio_StoreFailureAbortsBeforeTranscription(t *testing.T) {
	h := newHarness()
	s := h.newStandup()
	h.audio.failure = errors.New("audio file exceeds the 50MB limit")

	_, err := h.svc.ProcessAudio(context.Background(), s.ID, []byte("audio"), "audio/webm")

	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageStoreAudio {
		t.Fatalf("err = %v, want StageError at store_audio", err)
	}
	if h.transcriber.calls != 0 {
		t.Fatal("transcription ran after rejected upload")
	}
	if len(h.archiver.archives) != 0 {
		t.Fatal("archive created after rejected upload")
	}
}

func TestProcessAudio_TranscriptionFailureKeepsAudio(t *testing.T) {
	h := newHarness()
	s := h.newStandup()
	h.transcriber.failure = errors.New("provider unavailable")

	_, err := h.svc.ProcessAudio(context.Background(), s.ID, []byte("audio"), "audio/webm")

	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageTranscribe {
		t.Fatalf("err = %v, want StageError at transcribe", err)
	}
	if _, stored := h.audio.stored[s.ID]; !stored {
		t.Fatal("stored audio rolled back after transcription failure")
	}
	if len(h.archiver.archives) != 0 {
		t.Fatal("archive created despite transcription failure")
	}
}

func TestProcessAudio_ExtractionFailureLeavesPartialState(t *testing.T) {
	h := newHarness()
	s := h.newStandup()
	h.extractor.failure = errors.New("model overloaded")

	_, err := h.svc.ProcessAudio(context.Background(), s.ID, []byte("audio"), "audio/webm")

	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageExtract {
		t.Fatalf("err = %v, want StageError at extract", err)
	}
	// Audio and archive survive as the terminal partial state.
	if _, stored := h.audio.stored[s.ID]; !stored {
		t.Fatal("stored audio missing")
	}
	if _, archived := h.archiver.archives[s.ID]; !archived {
		t.Fatal("archive missing")
	}
	if _, persisted := h.artifacts.saved[s.ID]; persisted {
		t.Fatal("artifacts persisted despite extraction failure")
	}
}

func TestProcessAudio_SecondRunHitsArchiveInvariant(t *testing.T) {
	h := newHarness()
	s := h.newStandup()
	ctx := context.Background()

	if _, err := h.svc.ProcessAudio(ctx, s.ID, []byte("audio"), "audio/webm"); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	_, err := h.svc.ProcessAudio(ctx, s.ID, []byte("audio"), "audio/webm")
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageArchive {
		t.Fatalf("err = %v, want StageError at archive", err)
	}
	if !errors.Is(stageErr.Err, entities.ErrArchiveExists) {
		t.Fatalf("cause = %v, want ErrArchiveExists", stageErr.Err)
	}
}

func TestReprocessExtraction_RecoversFromPartialState(t *testing.T) {
	h := newHarness()
	s := h.newStandup()
	ctx := context.Background()

	h.extractor.failure = errors.New("model overloaded")
	if _, err := h.svc.ProcessAudio(ctx, s.ID, []byte("audio"), "audio/webm"); err == nil {
		t.Fatal("expected extraction failure")
	}

	h.extractor.failure = nil
	transcriberCalls := h.transcriber.calls

	result, err := h.svc.ReprocessExtraction(ctx, s.ID)
	if err != nil {
		t.Fatalf("reprocess failed: %v", err)
	}
	if h.transcriber.calls != transcriberCalls {
		t.Fatal("reprocess re-transcribed instead of using the archive")
	}
	if _, persisted := h.artifacts.saved[s.ID]; !persisted {
		t.Fatal("artifacts not persisted on reprocess")
	}
	if result.Archive.Transcript != testTranscript {
		t.Fatalf("reprocess used transcript %q", result.Archive.Transcript)
	}
}

func TestReprocessExtraction_WithoutArchive(t *testing.T) {
	h := newHarness()
	s := h.newStandup()

	_, err := h.svc.ReprocessExtraction(context.Background(), s.ID)
	if !errors.Is(err, entities.ErrArchiveNotFound) {
		t.Fatalf("err = %v, want ErrArchiveNotFound", err)
	}
}

func TestRunExtraction_RetriesOnFailure(t *testing.T) {
	h := newHarness()
	s := h.newStandup()
	// One retry: first call fails, second succeeds.
	h.svc.maxRetries = 1
	h.extractor.failure = errors.New("flaky")

	failOnce := h.extractor
	h.svc.extractor = extractorFunc(func(ctx context.Context, transcript string) (string, error) {
		failOnce.calls++
		if failOnce.calls == 1 {
			return "", errors.New("flaky")
		}
		return testExtractionResponse, nil
	})

	if _, err := h.svc.ProcessAudio(context.Background(), s.ID, []byte("audio"), "audio/webm"); err != nil {
		t.Fatalf("pipeline failed despite allowed retry: %v", err)
	}
	if failOnce.calls != 2 {
		t.Fatalf("extractor called %d times, want 2", failOnce.calls)
	}
}

type extractorFunc func(ctx context.Context, transcript string) (string, error)

func (f extractorFunc) GenerateStandupExtraction(ctx context.Context, transcript string) (string, error) {
	return f(ctx, transcript)
}

func TestResolveUserByName(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	if got := h.svc.resolveUserByName(ctx, "alice nguyen"); got == nil || got.ID != h.alice.ID {
		t.Fatalf("case-insensitive full name resolution failed: %v", got)
	}
	if got := h.svc.resolveUserByName(ctx, "Bob"); got == nil || got.ID != h.bob.ID {
		t.Fatalf("first-name fallback failed: %v", got)
	}
	if got := h.svc.resolveUserByName(ctx, "Carol Unknown"); got != nil {
		t.Fatalf("unknown name resolved to %v", got)
	}
	if got := h.svc.resolveUserByName(ctx, "   "); got != nil {
		t.Fatalf("blank name resolved to %v", got)
	}
}

func TestDeleteStandup(t *testing.T) {
	h := newHarness()
	s := h.newStandup()
	url := "/standups/audio/" + s.ID.String() + "-1.webm"
	s.AudioURL = &url
	ctx := context.Background()

	deleted, err := h.svc.DeleteStandup(ctx, s.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !deleted {
		t.Fatal("delete reported nothing removed")
	}
	if s.IsActive {
		t.Fatal("standup still active after delete")
	}
	if len(h.audio.deleted) != 1 || h.audio.deleted[0] != s.ID.String()+"-1.webm" {
		t.Fatalf("audio file not removed, deletions = %v", h.audio.deleted)
	}

	deleted, err = h.svc.DeleteStandup(ctx, uuid.New())
	if err != nil {
		t.Fatalf("delete of unknown standup errored: %v", err)
	}
	if deleted {
		t.Fatal("delete of unknown standup reported success")
	}
}

func TestSearchStandups_NewestFirst(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	older := entities.NewStandup(uuid.New(), time.Now().AddDate(0, 0, -7))
	newer := entities.NewStandup(uuid.New(), time.Now())
	h.standups.add(older)
	h.standups.add(newer)

	for _, s := range []*entities.Standup{older, newer} {
		if _, err := h.archiver.Create(ctx, s.ID, "the catalyst results look promising", archive.CreateInput{}); err != nil {
			t.Fatalf("seed archive failed: %v", err)
		}
	}

	results, err := h.svc.SearchStandups(ctx, "catalyst", nil, 10, 0)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].ID != newer.ID {
		t.Fatal("results not ordered newest first")
	}
}

func TestProcessAudio_ParticipantsReplaceNotMerge(t *testing.T) {
	h := newHarness()
	s := h.newStandup()
	ctx := context.Background()

	// Pre-existing participant set from an earlier extraction.
	h.artifacts.participants[s.ID] = []uuid.UUID{h.bob.ID}

	// New extraction names only Alice.
	h.extractor.response = `{
		"summary": "solo update",
		"actionItems": [],
		"blockers": [],
		"decisions": [],
		"participants": ["Alice Nguyen"]
	}`

	if _, err := h.svc.ProcessAudio(ctx, s.ID, []byte("audio"), "audio/webm"); err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	participants := h.artifacts.participants[s.ID]
	if len(participants) != 1 || participants[0] != h.alice.ID {
		t.Fatalf("participants = %v, want exactly [alice]", participants)
	}
}

func TestProcessAudio_NoParticipantsKeepsExistingSet(t *testing.T) {
	h := newHarness()
	s := h.newStandup()
	ctx := context.Background()

	// Prior extraction linked Bob; the new run names nobody.
	h.artifacts.participants[s.ID] = []uuid.UUID{h.bob.ID}
	h.extractor.response = `{
		"summary": "quiet standup",
		"actionItems": [],
		"blockers": [],
		"decisions": [],
		"participants": []
	}`

	if _, err := h.svc.ProcessAudio(ctx, s.ID, []byte("audio"), "audio/webm"); err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	saved, ok := h.artifacts.saved[s.ID]
	if !ok {
		t.Fatal("artifacts not persisted")
	}
	if saved.ParticipantUserIDs != nil {
		t.Fatalf("replacement set sent despite zero extracted participants: %v", saved.ParticipantUserIDs)
	}
	participants := h.artifacts.participants[s.ID]
	if len(participants) != 1 || participants[0] != h.bob.ID {
		t.Fatalf("prior participant set changed to %v, want [bob]", participants)
	}
}
