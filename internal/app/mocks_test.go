package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/pulse/internal/models"
	"github.com/example/pulse/internal/ports/secondary"
)

// fakeClock returns a fixed instant, advanced explicitly by tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func rfc3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// mockTaskRepo is an in-memory TaskRepository.
type mockTaskRepo struct {
	tasks map[string]*secondary.TaskRecord
	order []string
	seq   int
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: make(map[string]*secondary.TaskRecord)}
}

func (m *mockTaskRepo) Create(ctx context.Context, task *secondary.TaskRecord) error {
	cp := *task
	if cp.CreatedAt == "" {
		cp.CreatedAt = rfc3339(time.Now())
	}
	cp.UpdatedAt = cp.CreatedAt
	m.tasks[cp.ID] = &cp
	m.order = append(m.order, cp.ID)
	return nil
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id string) (*secondary.TaskRecord, error) {
	task, ok := m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, models.ErrNotFound)
	}
	cp := *task
	return &cp, nil
}

func (m *mockTaskRepo) List(ctx context.Context, filters secondary.TaskFilters) ([]*secondary.TaskRecord, error) {
	var out []*secondary.TaskRecord
	for _, id := range m.order {
		task := m.tasks[id]
		if filters.Status != "" && task.Status != filters.Status {
			continue
		}
		if filters.AssigneeID != "" && task.AssigneeID != filters.AssigneeID {
			continue
		}
		if filters.DealID != "" && task.DealID != filters.DealID {
			continue
		}
		cp := *task
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockTaskRepo) UpdateStatus(ctx context.Context, id, status string, completedAt, cancelReason string) error {
	task, ok := m.tasks[id]
	if !ok {
		return fmt.Errorf("task %s: %w", id, models.ErrNotFound)
	}
	task.Status = status
	if completedAt != "" {
		task.CompletedAt = completedAt
	}
	if cancelReason != "" {
		task.CancelReason = cancelReason
	}
	return nil
}

func (m *mockTaskRepo) DueScheduled(ctx context.Context, now time.Time, limit int) ([]*secondary.TaskRecord, error) {
	var out []*secondary.TaskRecord
	for _, id := range m.order {
		task := m.tasks[id]
		if task.Status != models.TaskStatusScheduled || task.ScheduledFor == "" {
			continue
		}
		at, err := time.Parse(time.RFC3339, task.ScheduledFor)
		if err != nil || at.After(now) {
			continue
		}
		cp := *task
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockTaskRepo) Overdue(ctx context.Context, now time.Time, limit int) ([]*secondary.TaskRecord, error) {
	var out []*secondary.TaskRecord
	for _, id := range m.order {
		task := m.tasks[id]
		if task.Status != models.TaskStatusPending || task.DueAt == "" {
			continue
		}
		at, err := time.Parse(time.RFC3339, task.DueAt)
		if err != nil || at.After(now) {
			continue
		}
		cp := *task
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockTaskRepo) GetNextID(ctx context.Context) (string, error) {
	m.seq++
	return fmt.Sprintf("TASK-%03d", m.seq), nil
}

// mockReminderRepo is an in-memory ReminderRepository.
type mockReminderRepo struct {
	reminders map[string]*secondary.ReminderRecord
	order     []string
	claims    map[string]claim
	seq       int
}

type claim struct {
	workerID string
	expires  time.Time
}

func newMockReminderRepo() *mockReminderRepo {
	return &mockReminderRepo{
		reminders: make(map[string]*secondary.ReminderRecord),
		claims:    make(map[string]claim),
	}
}

func (m *mockReminderRepo) Create(ctx context.Context, rem *secondary.ReminderRecord) (bool, *secondary.ReminderRecord, error) {
	for _, id := range m.order {
		existing := m.reminders[id]
		if existing.TaskID == rem.TaskID && existing.RemindAt == rem.RemindAt && existing.Channel == rem.Channel {
			cp := *existing
			return false, &cp, nil
		}
	}
	cp := *rem
	if cp.CreatedAt == "" {
		cp.CreatedAt = rfc3339(time.Now())
	}
	m.reminders[cp.ID] = &cp
	m.order = append(m.order, cp.ID)
	out := cp
	return true, &out, nil
}

func (m *mockReminderRepo) GetByID(ctx context.Context, id string) (*secondary.ReminderRecord, error) {
	rem, ok := m.reminders[id]
	if !ok {
		return nil, fmt.Errorf("reminder %s: %w", id, models.ErrNotFound)
	}
	cp := *rem
	return &cp, nil
}

func (m *mockReminderRepo) ListByTask(ctx context.Context, taskID string) ([]*secondary.ReminderRecord, error) {
	var out []*secondary.ReminderRecord
	for _, id := range m.order {
		if m.reminders[id].TaskID == taskID {
			cp := *m.reminders[id]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockReminderRepo) Due(ctx context.Context, now time.Time, limit int) ([]*secondary.ReminderRecord, error) {
	var out []*secondary.ReminderRecord
	for _, id := range m.order {
		rem := m.reminders[id]
		if rem.FiredAt != "" {
			continue
		}
		at, err := time.Parse(time.RFC3339, rem.RemindAt)
		if err != nil || at.After(now) {
			continue
		}
		cp := *rem
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockReminderRepo) Claim(ctx context.Context, id, workerID string, now, until time.Time) error {
	rem, ok := m.reminders[id]
	if !ok || rem.FiredAt != "" {
		return &models.ClaimConflictError{Entity: "reminder", ID: id}
	}
	if c, held := m.claims[id]; held && c.workerID != workerID && c.expires.After(now) {
		return &models.ClaimConflictError{Entity: "reminder", ID: id}
	}
	m.claims[id] = claim{workerID: workerID, expires: until}
	return nil
}

func (m *mockReminderRepo) MarkFired(ctx context.Context, id string, firedAt time.Time, suppressed bool) error {
	rem, ok := m.reminders[id]
	if !ok || rem.FiredAt != "" {
		return fmt.Errorf("reminder %s not found or already fired: %w", id, models.ErrNotFound)
	}
	rem.FiredAt = rfc3339(firedAt)
	rem.Suppressed = suppressed
	delete(m.claims, id)
	return nil
}

func (m *mockReminderRepo) SuppressForTask(ctx context.Context, taskID string, at time.Time) error {
	for _, rem := range m.reminders {
		if rem.TaskID == taskID && rem.FiredAt == "" {
			rem.FiredAt = rfc3339(at)
			rem.Suppressed = true
		}
	}
	return nil
}

func (m *mockReminderRepo) ReclaimExpired(ctx context.Context, now time.Time) (int, error) {
	released := 0
	for id, c := range m.claims {
		if !c.expires.After(now) {
			delete(m.claims, id)
			released++
		}
	}
	return released, nil
}

func (m *mockReminderRepo) GetNextID(ctx context.Context) (string, error) {
	m.seq++
	return fmt.Sprintf("REM-%03d", m.seq), nil
}

// mockActivityRepo is an in-memory ActivityRepository.
type mockActivityRepo struct {
	entries []*secondary.ActivityRecord
}

func newMockActivityRepo() *mockActivityRepo {
	return &mockActivityRepo{}
}

func (m *mockActivityRepo) Append(ctx context.Context, rec *secondary.ActivityRecord) error {
	cp := *rec
	if cp.ID == "" {
		cp.ID = fmt.Sprintf("ACT-%03d", len(m.entries)+1)
	}
	if cp.CreatedAt == "" {
		cp.CreatedAt = rfc3339(time.Now())
	}
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *mockActivityRepo) ListByTask(ctx context.Context, taskID string) ([]*secondary.ActivityRecord, error) {
	var out []*secondary.ActivityRecord
	for _, e := range m.entries {
		if e.TaskID == taskID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

// mockNotificationRepo is an in-memory NotificationRepository.
type mockNotificationRepo struct {
	notifications map[string]*secondary.NotificationRecord
	order         []string
	claims        map[string]claim
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{
		notifications: make(map[string]*secondary.NotificationRecord),
		claims:        make(map[string]claim),
	}
}

func (m *mockNotificationRepo) Create(ctx context.Context, rec *secondary.NotificationRecord) (bool, *secondary.NotificationRecord, error) {
	if rec.DedupKey != "" {
		for _, id := range m.order {
			existing := m.notifications[id]
			if existing.DedupKey == rec.DedupKey {
				cp := *existing
				return false, &cp, nil
			}
		}
	}
	cp := *rec
	cp.Status = models.NotificationStatusPending
	if cp.CreatedAt == "" {
		cp.CreatedAt = rfc3339(time.Now())
	}
	cp.UpdatedAt = cp.CreatedAt
	m.notifications[cp.ID] = &cp
	m.order = append(m.order, cp.ID)
	out := cp
	return true, &out, nil
}

func (m *mockNotificationRepo) GetByID(ctx context.Context, id string) (*secondary.NotificationRecord, error) {
	rec, ok := m.notifications[id]
	if !ok {
		return nil, fmt.Errorf("notification %s: %w", id, models.ErrNotFound)
	}
	cp := *rec
	return &cp, nil
}

func (m *mockNotificationRepo) GetByDedupKey(ctx context.Context, key string) (*secondary.NotificationRecord, error) {
	for _, rec := range m.notifications {
		if rec.DedupKey == key {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("notification with dedup key %q: %w", key, models.ErrNotFound)
}

func (m *mockNotificationRepo) List(ctx context.Context, filters secondary.NotificationFilters) ([]*secondary.NotificationRecord, error) {
	var out []*secondary.NotificationRecord
	for i := len(m.order) - 1; i >= 0; i-- {
		rec := m.notifications[m.order[i]]
		if filters.Status != "" && rec.Status != filters.Status {
			continue
		}
		if filters.EventKey != "" && rec.EventKey != filters.EventKey {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockNotificationRepo) PendingForDispatch(ctx context.Context, now time.Time, limit int) ([]*secondary.NotificationRecord, error) {
	var out []*secondary.NotificationRecord
	for _, id := range m.order {
		rec := m.notifications[id]
		if rec.Terminal {
			continue
		}
		eligible := rec.Status == models.NotificationStatusPending
		if rec.Status == models.NotificationStatusFailed && rec.NextAttemptAt != "" {
			at, err := time.Parse(time.RFC3339, rec.NextAttemptAt)
			if err == nil && !at.After(now) {
				eligible = true
			}
		}
		if !eligible {
			continue
		}
		cp := *rec
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockNotificationRepo) Claim(ctx context.Context, id, workerID string, now, until time.Time) error {
	rec, ok := m.notifications[id]
	if !ok || rec.Terminal || rec.Status == models.NotificationStatusDelivered ||
		rec.Status == models.NotificationStatusDispatching {
		return &models.ClaimConflictError{Entity: "notification", ID: id}
	}
	if c, held := m.claims[id]; held && c.workerID != workerID && c.expires.After(now) {
		return &models.ClaimConflictError{Entity: "notification", ID: id}
	}
	m.claims[id] = claim{workerID: workerID, expires: until}
	return nil
}

func (m *mockNotificationRepo) MarkDispatching(ctx context.Context, id string, at time.Time) error {
	rec, ok := m.notifications[id]
	if !ok || rec.Terminal ||
		(rec.Status != models.NotificationStatusPending && rec.Status != models.NotificationStatusFailed) {
		return fmt.Errorf("notification %s not eligible for dispatch: %w", id, models.ErrNotFound)
	}
	rec.Status = models.NotificationStatusDispatching
	rec.UpdatedAt = rfc3339(at)
	return nil
}

func (m *mockNotificationRepo) MarkDelivered(ctx context.Context, id string, attempts int, at time.Time) error {
	rec, ok := m.notifications[id]
	if !ok {
		return fmt.Errorf("notification %s: %w", id, models.ErrNotFound)
	}
	rec.Status = models.NotificationStatusDelivered
	rec.AttemptsCount = attempts
	rec.LastAttemptAt = rfc3339(at)
	rec.NextAttemptAt = ""
	rec.LastError = ""
	rec.UpdatedAt = rfc3339(at)
	delete(m.claims, id)
	return nil
}

func (m *mockNotificationRepo) MarkFailed(ctx context.Context, id string, attempts int, lastError string, at, nextAttempt time.Time, terminal bool) error {
	rec, ok := m.notifications[id]
	if !ok {
		return fmt.Errorf("notification %s: %w", id, models.ErrNotFound)
	}
	rec.Status = models.NotificationStatusFailed
	rec.AttemptsCount = attempts
	rec.LastAttemptAt = rfc3339(at)
	rec.LastError = lastError
	rec.Terminal = terminal
	if terminal {
		rec.NextAttemptAt = ""
	} else {
		rec.NextAttemptAt = rfc3339(nextAttempt)
	}
	rec.UpdatedAt = rfc3339(at)
	delete(m.claims, id)
	return nil
}

func (m *mockNotificationRepo) ReclaimExpired(ctx context.Context, now time.Time) (int, error) {
	released := 0
	for id, c := range m.claims {
		if !c.expires.After(now) {
			delete(m.claims, id)
			released++
		}
	}
	return released, nil
}

// mockAttemptRepo is an in-memory AttemptRepository.
type mockAttemptRepo struct {
	attempts []*secondary.AttemptRecord
}

func newMockAttemptRepo() *mockAttemptRepo {
	return &mockAttemptRepo{}
}

func (m *mockAttemptRepo) Append(ctx context.Context, rec *secondary.AttemptRecord) error {
	cp := *rec
	if cp.ID == "" {
		cp.ID = fmt.Sprintf("att-%03d", len(m.attempts)+1)
	}
	if cp.CreatedAt == "" {
		cp.CreatedAt = rfc3339(time.Now())
	}
	m.attempts = append(m.attempts, &cp)
	return nil
}

func (m *mockAttemptRepo) ListByNotification(ctx context.Context, notificationID string) ([]*secondary.AttemptRecord, error) {
	var out []*secondary.AttemptRecord
	for _, a := range m.attempts {
		if a.NotificationID == notificationID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockAttemptRepo) SentPairs(ctx context.Context, notificationID string) (map[string]bool, error) {
	pairs := make(map[string]bool)
	for _, a := range m.attempts {
		if a.NotificationID == notificationID && a.Status == models.AttemptStatusSent {
			pairs[a.Channel+"|"+a.Recipient] = true
		}
	}
	return pairs, nil
}

// fakeAdapter is a scriptable ChannelAdapter.
type fakeAdapter struct {
	channel string
	fail    map[string]error // recipient -> error
	sends   []string         // "channel|recipient" in send order
}

func newFakeAdapter(channel string) *fakeAdapter {
	return &fakeAdapter{channel: channel, fail: make(map[string]error)}
}

func (f *fakeAdapter) Channel() string { return f.channel }

func (f *fakeAdapter) Send(ctx context.Context, recipient string, msg secondary.Message) (*secondary.SendResult, error) {
	f.sends = append(f.sends, f.channel+"|"+recipient)
	if err, ok := f.fail[recipient]; ok {
		return nil, err
	}
	return &secondary.SendResult{ProviderMessageID: "msg-" + recipient}, nil
}

// fakeRenderer returns a canned message, or an error when set.
type fakeRenderer struct {
	err error
}

func (f *fakeRenderer) Render(ctx context.Context, eventKey, channel, locale string, payload map[string]string) (*secondary.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &secondary.Message{EventKey: eventKey, Body: "rendered " + eventKey, Metadata: payload}, nil
}

// fakeResolver maps channels to adapters.
type fakeResolver struct {
	adapters map[string]secondary.ChannelAdapter
}

func newFakeResolver(adapters ...secondary.ChannelAdapter) *fakeResolver {
	r := &fakeResolver{adapters: make(map[string]secondary.ChannelAdapter)}
	for _, a := range adapters {
		r.adapters[a.Channel()] = a
	}
	return r
}

func (r *fakeResolver) Get(channel string) (secondary.ChannelAdapter, error) {
	adapter, ok := r.adapters[channel]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for channel %q", channel)
	}
	return adapter, nil
}
