package audio

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/labops-team/standup-assistant/internal/domain/entities"
	"github.com/labops-team/standup-assistant/internal/domain/repositories"
	"github.com/labops-team/standup-assistant/internal/infrastructure/storage"
	"github.com/labops-team/standup-assistant/pkg/config"
)

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

func (r *fakeStandupRepo) FindByLab(_ context.Context, _ uuid.UUID, _ repositories.StandupListOptions) ([]*entities.Standup, int64, error) {
	return nil, 0, nil
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

func (r *fakeStandupRepo) ActiveAudioURLs(_ context.Context) ([]string, error) {
	var urls []string
	for _, s := range r.standups {
		if s.IsActive && s.AudioURL != nil {
			urls = append(urls, *s.AudioURL)
		}
	}
	return urls, nil
}

func (r *fakeStandupRepo) Stats(_ context.Context, _ uuid.UUID) (*repositories.StandupStats, error) {
	return &repositories.StandupStats{}, nil
}

func (r *fakeStandupRepo) CountWithAudio(_ context.Context) (int64, int64, error) {
	var total, withAudio int64
	for _, s := range r.standups {
		if !s.IsActive {
			continue
		}
		total++
		if s.AudioURL != nil {
			withAudio++
		}
	}
	return total, withAudio, nil
}

func timeNowDate() time.Time {
	return time.Now().Truncate(24 * time.Hour)
}

func newTestService(t *testing.T) (*Service, *fakeStandupRepo, string) {
	t.Helper()
	dir := t.TempDir()
	repo := newFakeStandupRepo()
	svc := NewService(storage.NewLocalStore(dir), repo, &config.AudioConfig{
		ContentDir:   dir,
		PublicPath:   "/standups/audio",
		MaxSizeBytes: 50 * 1024 * 1024,
	}, zap.NewNop())
	return svc, repo, dir
}

func TestValidate_SizeBoundary(t *testing.T) {
	svc, _, _ := newTestService(t)
	limit := int64(50 * 1024 * 1024)

	if err := svc.Validate(limit, "audio/webm"); err != nil {
		t.Fatalf("payload exactly at the limit rejected: %v", err)
	}
	err := svc.Validate(limit+1, "audio/webm")
	if err == nil {
		t.Fatal("payload over the limit accepted")
	}
	if !strings.Contains(err.Error(), "50MB") {
		t.Fatalf("oversize error %q does not name the 50MB limit", err)
	}
	if err := svc.Validate(0, "audio/webm"); err == nil {
		t.Fatal("empty payload accepted")
	}
}

func TestValidate_MimeTypes(t *testing.T) {
	svc, _, _ := newTestService(t)

	// The empty MIME type is the browser-recorder case and is stored as webm.
	for _, mime := range []string{"audio/webm", "audio/mp4", "audio/mpeg", "audio/wav", "audio/ogg", "audio/x-m4a", "audio/webm;codecs=opus", ""} {
		if err := svc.Validate(100, mime); err != nil {
			t.Fatalf("accepted MIME type %q rejected: %v", mime, err)
		}
	}
	for _, mime := range []string{"video/mp4", "text/plain", "application/octet-stream"} {
		if err := svc.Validate(100, mime); err == nil {
			t.Fatalf("MIME type %q accepted", mime)
		}
	}
}

func TestExtensionFor(t *testing.T) {
	cases := map[string]string{
		"audio/webm":             "webm",
		"audio/mp4":              "m4a",
		"audio/mpeg":             "mp3",
		"audio/wav":              "wav",
		"audio/ogg":              "ogg",
		"audio/x-m4a":            "m4a",
		"audio/webm;codecs=opus": "webm",
		"":                       "webm",
	}
	for mime, want := range cases {
		if got := extensionFor(mime); got != want {
			t.Fatalf("extensionFor(%q) = %q, want %q", mime, got, want)
		}
	}
}

func TestStore_WritesFileAndRecordsURL(t *testing.T) {
	svc, repo, dir := newTestService(t)
	standup := entities.NewStandup(uuid.New(), timeNowDate())
	repo.add(standup)

	stored, err := svc.Store(context.Background(), standup.ID, []byte("audio-bytes"), "audio/mpeg")
	if err != nil {
		t.Fatalf("store failed: %v", err)
	}

	wantPrefix := standup.ID.String() + "-"
	if !strings.HasPrefix(stored.Filename, wantPrefix) || !strings.HasSuffix(stored.Filename, ".mp3") {
		t.Fatalf("filename %q does not match {standupId}-{millis}.mp3", stored.Filename)
	}
	if stored.Size != int64(len("audio-bytes")) {
		t.Fatalf("size = %d, want %d", stored.Size, len("audio-bytes"))
	}
	if _, err := os.Stat(filepath.Join(dir, stored.Filename)); err != nil {
		t.Fatalf("file not on disk: %v", err)
	}
	if standup.AudioURL == nil || *standup.AudioURL != "/standups/audio/"+stored.Filename {
		t.Fatalf("audio url not recorded, got %v", standup.AudioURL)
	}
}

func TestStore_UnknownStandup(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.Store(context.Background(), uuid.New(), []byte("x"), "audio/webm"); err != entities.ErrStandupNotFound {
		t.Fatalf("err = %v, want ErrStandupNotFound", err)
	}
}

func TestStoreFromBase64_StripsDataURLPrefix(t *testing.T) {
	svc, repo, _ := newTestService(t)
	standup := entities.NewStandup(uuid.New(), timeNowDate())
	repo.add(standup)

	payload := "data:audio/wav;base64," + base64.StdEncoding.EncodeToString([]byte("wav-data"))
	stored, err := svc.StoreFromBase64(context.Background(), standup.ID, payload, "")
	if err != nil {
		t.Fatalf("store from base64 failed: %v", err)
	}
	if !strings.HasSuffix(stored.Filename, ".wav") {
		t.Fatalf("MIME from data URL ignored, filename %q", stored.Filename)
	}

	if _, err := svc.StoreFromBase64(context.Background(), standup.ID, "!!not-base64!!", "audio/webm"); err == nil {
		t.Fatal("invalid base64 accepted")
	}
}

func TestRetrieveAndDelete(t *testing.T) {
	svc, repo, _ := newTestService(t)
	standup := entities.NewStandup(uuid.New(), timeNowDate())
	repo.add(standup)
	ctx := context.Background()

	info, err := svc.Retrieve(ctx, standup.ID)
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}
	if info.Exists {
		t.Fatal("audio reported present before any upload")
	}

	stored, err := svc.Store(ctx, standup.ID, []byte("bytes"), "audio/ogg")
	if err != nil {
		t.Fatalf("store failed: %v", err)
	}

	info, err = svc.Retrieve(ctx, standup.ID)
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}
	if !info.Exists || info.Filename != stored.Filename {
		t.Fatalf("retrieve = %+v, want existing file %s", info, stored.Filename)
	}

	if err := svc.Delete(ctx, standup.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if standup.AudioURL != nil {
		t.Fatal("audio url not cleared after delete")
	}
	info, err = svc.Retrieve(ctx, standup.ID)
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}
	if info.Exists {
		t.Fatal("audio still reported present after delete")
	}
}

func TestCleanupOrphans_KeepsReferencedFiles(t *testing.T) {
	svc, repo, dir := newTestService(t)
	ctx := context.Background()

	standup := entities.NewStandup(uuid.New(), timeNowDate())
	repo.add(standup)
	stored, err := svc.Store(ctx, standup.ID, []byte("keep-me"), "audio/webm")
	if err != nil {
		t.Fatalf("store failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		orphan := filepath.Join(dir, fmt.Sprintf("%s-%d.webm", uuid.New(), i))
		if err := os.WriteFile(orphan, []byte("orphan"), 0o644); err != nil {
			t.Fatalf("failed to plant orphan: %v", err)
		}
	}

	result, err := svc.CleanupOrphans(ctx)
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if result.DeletedCount != 3 {
		t.Fatalf("deleted %d files, want 3", result.DeletedCount)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if _, err := os.Stat(filepath.Join(dir, stored.Filename)); err != nil {
		t.Fatalf("referenced file was swept: %v", err)
	}
}

func TestStats(t *testing.T) {
	svc, repo, dir := newTestService(t)
	ctx := context.Background()

	withAudio := entities.NewStandup(uuid.New(), timeNowDate())
	withoutAudio := entities.NewStandup(uuid.New(), timeNowDate())
	repo.add(withAudio)
	repo.add(withoutAudio)

	if _, err := svc.Store(ctx, withAudio.ID, []byte("0123456789"), "audio/webm"); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	// An orphan awaiting a sweep must not count toward the footprint.
	orphan := filepath.Join(dir, fmt.Sprintf("%s-0.webm", uuid.New()))
	if err := os.WriteFile(orphan, []byte("orphan bytes"), 0o644); err != nil {
		t.Fatalf("failed to plant orphan: %v", err)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.TotalFiles != 1 || stats.TotalSizeBytes != 10 {
		t.Fatalf("files/bytes = %d/%d, want 1/10", stats.TotalFiles, stats.TotalSizeBytes)
	}
	if stats.TotalStandups != 2 || stats.StandupsWithAudio != 1 {
		t.Fatalf("standups = %d/%d with audio, want 2/1", stats.TotalStandups, stats.StandupsWithAudio)
	}
}
