package verification_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/ceylonbites/ceylonbites/internal/verification"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ── Stub repo ─────────────────────────────────────────────────────────────

type stubRecordRepo struct {
	mu      sync.Mutex
	records []*verification.Record
}

func (r *stubRecordRepo) Create(_ context.Context, rec *verification.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.ID = uuid.New()
	rec.CreatedAt = time.Now().Add(time.Duration(len(r.records)) * time.Millisecond)
	cp := *rec
	r.records = append(r.records, &cp)
	return nil
}

func (r *stubRecordRepo) LatestUnverified(_ context.Context, userID uuid.UUID) (*verification.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *verification.Record
	for _, rec := range r.records {
		if rec.UserID != userID || rec.Verified {
			continue
		}
		if latest == nil || rec.CreatedAt.After(latest.CreatedAt) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, verification.ErrNoVerification
	}
	cp := *latest
	return &cp, nil
}

func (r *stubRecordRepo) IncrementAttempts(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			rec.Attempts++
			return nil
		}
	}
	return errors.New("record not found")
}

func (r *stubRecordRepo) MarkVerified(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			rec.Verified = true
			return nil
		}
	}
	return errors.New("record not found")
}

func (r *stubRecordRepo) ExpireUnverified(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, rec := range r.records {
		if rec.UserID == userID && !rec.Verified && rec.ExpiresAt.After(now) {
			rec.ExpiresAt = now
		}
	}
	return nil
}

func (r *stubRecordRepo) get(id uuid.UUID) *verification.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			cp := *rec
			return &cp
		}
	}
	return nil
}

// ── Stub mailer ───────────────────────────────────────────────────────────

type stubMailer struct {
	mu   sync.Mutex
	sent []string // bodies
	err  error
}

func (m *stubMailer) Send(_ context.Context, _, _, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, body)
	return nil
}

// ── Tests ─────────────────────────────────────────────────────────────────

func newService(repo *stubRecordRepo, mailer *stubMailer) *verification.Service {
	return verification.NewService(repo, mailer, zap.NewNop())
}

func TestIssue_CodeShape(t *testing.T) {
	repo := &stubRecordRepo{}
	svc := newService(repo, &stubMailer{})
	uid := uuid.New()

	rec, err := svc.Issue(context.Background(), uid, "alice@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !regexp.MustCompile(`^\d{6}$`).MatchString(rec.Code) {
		t.Errorf("code %q is not 6 ASCII digits", rec.Code)
	}
	if rec.Code[0] == '0' {
		t.Errorf("code %q outside [100000, 999999]", rec.Code)
	}
	wantExpiry := time.Now().Add(verification.CodeTTL)
	if rec.ExpiresAt.Before(wantExpiry.Add(-time.Minute)) || rec.ExpiresAt.After(wantExpiry.Add(time.Minute)) {
		t.Errorf("expiry %v not ~10 minutes out", rec.ExpiresAt)
	}
}

func TestIssue_MailFailureIsNonFatal(t *testing.T) {
	repo := &stubRecordRepo{}
	svc := newService(repo, &stubMailer{err: errors.New("smtp down")})
	uid := uuid.New()

	rec, err := svc.Issue(context.Background(), uid, "alice@example.com")
	if err != nil {
		t.Fatalf("issue should succeed despite mail failure, got %v", err)
	}
	if repo.get(rec.ID) == nil {
		t.Error("record was not persisted")
	}
}

func TestVerify_Success(t *testing.T) {
	repo := &stubRecordRepo{}
	svc := newService(repo, &stubMailer{})
	uid := uuid.New()

	rec, _ := svc.Issue(context.Background(), uid, "alice@example.com")
	if err := svc.Verify(context.Background(), uid, rec.Code); err != nil {
		t.Fatalf("verify: %v", err)
	}
	stored := repo.get(rec.ID)
	if !stored.Verified {
		t.Error("record not marked verified")
	}
	if stored.Attempts != 0 {
		t.Errorf("attempts = %d, want 0", stored.Attempts)
	}
}

func TestVerify_NoRecord(t *testing.T) {
	svc := newService(&stubRecordRepo{}, &stubMailer{})
	err := svc.Verify(context.Background(), uuid.New(), "123456")
	if !errors.Is(err, verification.ErrNoVerification) {
		t.Errorf("err = %v, want ErrNoVerification", err)
	}
}

func TestVerify_MismatchIncrementsAttemptsExactlyOnce(t *testing.T) {
	repo := &stubRecordRepo{}
	svc := newService(repo, &stubMailer{})
	uid := uuid.New()

	rec, _ := svc.Issue(context.Background(), uid, "alice@example.com")

	wrong := "000000"
	if wrong == rec.Code {
		wrong = "000001"
	}
	err := svc.Verify(context.Background(), uid, wrong)
	if !errors.Is(err, verification.ErrCodeMismatch) {
		t.Fatalf("err = %v, want ErrCodeMismatch", err)
	}

	stored := repo.get(rec.ID)
	if stored.Attempts != 1 {
		t.Errorf("attempts = %d, want exactly 1", stored.Attempts)
	}
	if stored.Verified {
		t.Error("mismatch must never mutate verified")
	}
}

func TestVerify_ExpiredBeatsExactMatch(t *testing.T) {
	repo := &stubRecordRepo{}
	svc := newService(repo, &stubMailer{})
	uid := uuid.New()

	rec := &verification.Record{
		UserID:    uid,
		Email:     "alice@example.com",
		Code:      "654321",
		ExpiresAt: time.Now().Add(-time.Second),
	}
	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatal(err)
	}

	err := svc.Verify(context.Background(), uid, "654321")
	if !errors.Is(err, verification.ErrCodeExpired) {
		t.Errorf("err = %v, want ErrCodeExpired even on exact match", err)
	}
	if repo.get(rec.ID).Verified {
		t.Error("expired record must not be marked verified")
	}
}

func TestVerify_ChecksLatestRecordOnly(t *testing.T) {
	repo := &stubRecordRepo{}
	svc := newService(repo, &stubMailer{})
	uid := uuid.New()

	first, _ := svc.Issue(context.Background(), uid, "alice@example.com")
	second, _ := svc.Resend(context.Background(), uid, "alice@example.com")

	// The superseded code must no longer work, even if it differs.
	if first.Code != second.Code {
		if err := svc.Verify(context.Background(), uid, first.Code); err == nil {
			t.Error("superseded code was accepted")
		}
	}
	if err := svc.Verify(context.Background(), uid, second.Code); err != nil {
		t.Errorf("latest code rejected: %v", err)
	}
}

func TestResend_ExpiresPriorCodes(t *testing.T) {
	repo := &stubRecordRepo{}
	svc := newService(repo, &stubMailer{})
	uid := uuid.New()

	first, _ := svc.Issue(context.Background(), uid, "alice@example.com")
	if _, err := svc.Resend(context.Background(), uid, "alice@example.com"); err != nil {
		t.Fatalf("resend: %v", err)
	}

	stored := repo.get(first.ID)
	if stored == nil {
		t.Fatal("resend must not delete prior records")
	}
	if stored.ExpiresAt.After(time.Now()) {
		t.Error("prior record still live after resend")
	}
}
