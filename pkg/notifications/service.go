package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/broadcast"
	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/cache"
	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/logger"
)

// EventNotification is the wire event carrying a full notification object.
const EventNotification = "whatsapp:notification"

const (
	listCacheTTL  = 30 * time.Second
	countCacheTTL = 10 * time.Second
	cacheCapacity = 1024

	// defaultStoreTimeout bounds every store round-trip so a degraded
	// store turns into a fallback read, not a hung request.
	defaultStoreTimeout = 500 * time.Millisecond
)

// ListResult carries a list query's rows plus whether they came from the
// in-process fallback because the store was unreachable.
type ListResult struct {
	Notifications []Notification `json:"notifications"`
	Degraded      bool           `json:"-"`
}

// CountResult carries an unread count plus its degradation flag.
type CountResult struct {
	Count    int  `json:"count"`
	Degraded bool `json:"-"`
}

// Service orchestrates notification persistence, preference filtering,
// caching, and live delivery.
type Service struct {
	storage     Storage
	prefs       PreferenceStore
	broadcaster *broadcast.Broadcaster
	fallback    *FallbackBuffer
	email       EmailSender

	listCache  *cache.TTLCache[string, []Notification]
	countCache *cache.TTLCache[string, int]

	timeout time.Duration
	log     *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger.
func WithServiceLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithEmailSender enables the email delivery channel.
func WithEmailSender(sender EmailSender) ServiceOption {
	return func(s *Service) {
		s.email = sender
	}
}

// WithStoreTimeout overrides the per-round-trip store timeout.
func WithStoreTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewService creates the notification service. The broadcaster may be nil;
// live push then degrades to logs inside the broadcaster package's rules.
func NewService(storage Storage, prefs PreferenceStore, broadcaster *broadcast.Broadcaster, opts ...ServiceOption) (*Service, error) {
	if storage == nil {
		return nil, ErrStorageRequired
	}
	if prefs == nil {
		return nil, ErrPrefStoreRequired
	}
	if broadcaster == nil {
		broadcaster = broadcast.NewBroadcaster(nil)
	}

	s := &Service{
		storage:     storage,
		prefs:       prefs,
		broadcaster: broadcaster,
		fallback:    NewFallbackBuffer(),
		listCache:   cache.New[string, []Notification](cacheCapacity),
		countCache:  cache.New[string, int](cacheCapacity),
		timeout:     defaultStoreTimeout,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create builds, filters, persists, and delivers a notification.
//
// When params.UserID is set and the user's preferences block the
// notification, it is fully suppressed: the built object is returned to
// the caller with no side effects at all. Team-wide notifications are
// never preference-filtered.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Notification, error) {
	if params.TenantID == "" {
		return nil, ErrTenantRequired
	}
	if params.Title == "" {
		return nil, ErrTitleRequired
	}

	n := s.build(params)

	if n.UserID != "" {
		prefs := s.loadPreferences(ctx, n.TenantID, n.UserID)
		if !prefs.Allows(&n) {
			return &n, nil
		}
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	if err := s.storage.Create(storeCtx, n); err != nil {
		s.log.LogAttrs(ctx, slog.LevelError, "failed to persist notification",
			logger.NotificationID(n.ID),
			logger.TenantID(n.TenantID),
			logger.Error(err),
		)
	}
	cancel()

	s.fallback.Add(n)
	s.invalidate(n.TenantID)

	payload := notificationPayload(&n)
	if n.UserID != "" {
		s.broadcaster.BroadcastToUser(ctx, n.UserID, EventNotification, payload)
	} else {
		s.broadcaster.BroadcastToTeam(ctx, n.TenantID, EventNotification, payload)
	}

	if n.UserID != "" && s.email != nil {
		s.deliverEmail(ctx, n)
	}

	return &n, nil
}

// List returns notifications for the tenant (optionally scoped to one
// user's view), newest first. Results are cached for a short period per
// query shape; a store fault falls back to the in-process ring buffer.
func (s *Service) List(ctx context.Context, tenantID string, opts ListOptions) (*ListResult, error) {
	if tenantID == "" {
		return nil, ErrTenantRequired
	}

	key := listKey(tenantID, opts)
	if rows, ok := s.listCache.Get(key); ok {
		// Rows may expire within the cache window; the invariant that an
		// expired notification is never returned wins over cache reuse.
		return &ListResult{Notifications: dropExpired(rows)}, nil
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	rows, err := s.storage.List(storeCtx, tenantID, opts)
	cancel()
	if err != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "notification store unreachable, serving fallback buffer",
			logger.TenantID(tenantID),
			logger.Error(err),
		)
		return &ListResult{Notifications: s.fallback.List(tenantID, opts), Degraded: true}, nil
	}

	s.listCache.Set(key, rows, listCacheTTL)
	return &ListResult{Notifications: rows}, nil
}

// UnreadCount returns the number of unread, undismissed, unexpired
// notifications visible to the user (team view when userID is empty).
func (s *Service) UnreadCount(ctx context.Context, tenantID, userID string) (*CountResult, error) {
	if tenantID == "" {
		return nil, ErrTenantRequired
	}

	key := countKey(tenantID, userID)
	if count, ok := s.countCache.Get(key); ok {
		return &CountResult{Count: count}, nil
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	count, err := s.storage.CountUnread(storeCtx, tenantID, userID)
	cancel()
	if err != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "notification store unreachable, serving fallback count",
			logger.TenantID(tenantID),
			logger.Error(err),
		)
		return &CountResult{Count: s.fallback.CountUnread(tenantID, userID), Degraded: true}, nil
	}

	s.countCache.Set(key, count, countCacheTTL)
	return &CountResult{Count: count}, nil
}

// MarkAsRead marks one notification as read. Idempotent: re-applying is a
// no-op and never errors. Read only ever transitions false to true.
func (s *Service) MarkAsRead(ctx context.Context, tenantID, id, userID string) error {
	return s.transition(ctx, tenantID, id, userID, func(n *Notification) bool {
		if n.Read {
			return false
		}
		n.Read = true
		return true
	})
}

// Dismiss marks one notification as dismissed. Idempotent like MarkAsRead.
func (s *Service) Dismiss(ctx context.Context, tenantID, id, userID string) error {
	return s.transition(ctx, tenantID, id, userID, func(n *Notification) bool {
		if n.Dismissed {
			return false
		}
		n.Dismissed = true
		return true
	})
}

// MarkAllAsRead marks every unread notification visible to the user as read.
func (s *Service) MarkAllAsRead(ctx context.Context, tenantID, userID string) error {
	if tenantID == "" {
		return ErrTenantRequired
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.storage.List(storeCtx, tenantID, ListOptions{UserID: userID, UnreadOnly: true})
	if err != nil {
		return err
	}

	for i := range rows {
		rows[i].Read = true
		if err := s.storage.Update(storeCtx, rows[i]); err != nil {
			return err
		}
	}

	s.invalidate(tenantID)
	return nil
}

// GetPreferences returns the user's preferences, materializing the
// default row on first access.
func (s *Service) GetPreferences(ctx context.Context, tenantID, userID string) (Preferences, error) {
	if tenantID == "" {
		return Preferences{}, ErrTenantRequired
	}
	if userID == "" {
		return Preferences{}, ErrUserRequired
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.prefs.Get(ctx, tenantID, userID)
}

// UpdatePreferences replaces the user's preferences row.
func (s *Service) UpdatePreferences(ctx context.Context, tenantID, userID string, prefs Preferences) error {
	if tenantID == "" {
		return ErrTenantRequired
	}
	if userID == "" {
		return ErrUserRequired
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.prefs.Set(ctx, tenantID, userID, prefs)
}

func (s *Service) build(params CreateParams) Notification {
	if params.Type == "" {
		params.Type = TypeInfo
	}
	if params.Priority == "" {
		params.Priority = PriorityMedium
	}
	if params.Category == "" {
		params.Category = CategorySystem
	}

	now := time.Now()
	n := Notification{
		ID:          uuid.New().String(),
		TenantID:    params.TenantID,
		UserID:      params.UserID,
		Type:        params.Type,
		Category:    params.Category,
		Priority:    params.Priority,
		Title:       params.Title,
		Message:     params.Message,
		Data:        params.Data,
		Timestamp:   now,
		ActionURL:   params.ActionURL,
		ActionLabel: params.ActionLabel,
	}
	if params.ExpiresIn > 0 {
		expiresAt := now.Add(params.ExpiresIn)
		n.ExpiresAt = &expiresAt
	}
	return n
}

// loadPreferences never fails Create: an unreachable preference store
// yields the default filter.
func (s *Service) loadPreferences(ctx context.Context, tenantID, userID string) Preferences {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prefs, err := s.prefs.Get(ctx, tenantID, userID)
	if err != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "failed to load notification preferences, using defaults",
			logger.TenantID(tenantID),
			logger.UserID(userID),
			logger.Error(err),
		)
		return DefaultPreferences()
	}
	return prefs
}

func (s *Service) transition(ctx context.Context, tenantID, id, userID string, apply func(*Notification) bool) error {
	if tenantID == "" {
		return ErrTenantRequired
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.storage.Get(storeCtx, tenantID, id)
	if err != nil {
		return err
	}
	if n == nil || !n.VisibleTo(userID) {
		return ErrNotFound
	}

	if !apply(n) {
		return nil
	}

	if err := s.storage.Update(storeCtx, *n); err != nil {
		return err
	}

	s.invalidate(tenantID)
	return nil
}

func (s *Service) deliverEmail(ctx context.Context, n Notification) {
	prefs := s.loadPreferences(ctx, n.TenantID, n.UserID)
	if !prefs.Channels.Email {
		return
	}
	if err := s.email.SendNotification(ctx, n.UserID, n); err != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "failed to deliver notification email",
			logger.NotificationID(n.ID),
			logger.UserID(n.UserID),
			logger.Error(err),
		)
	}
}

func (s *Service) invalidate(tenantID string) {
	prefix := tenantID + "|"
	s.listCache.DeleteFunc(func(key string) bool {
		return len(key) >= len(prefix) && key[:len(prefix)] == prefix
	})
	s.countCache.DeleteFunc(func(key string) bool {
		return len(key) >= len(prefix) && key[:len(prefix)] == prefix
	})
}

func dropExpired(rows []Notification) []Notification {
	out := make([]Notification, 0, len(rows))
	for i := range rows {
		if !rows[i].IsExpired() {
			out = append(out, rows[i])
		}
	}
	return out
}

func listKey(tenantID string, opts ListOptions) string {
	scope := opts.UserID
	if scope == "" {
		scope = "team"
	}
	since := int64(0)
	if opts.Since != nil {
		since = opts.Since.UnixNano()
	}
	return fmt.Sprintf("%s|%s|list|%d|%d|%t|%s|%s|%d|%t",
		tenantID, scope, opts.Limit, opts.Offset, opts.UnreadOnly,
		opts.Priority, opts.Category, since, opts.IncludeDismissed)
}

func countKey(tenantID, userID string) string {
	scope := userID
	if scope == "" {
		scope = "team"
	}
	return fmt.Sprintf("%s|%s|count", tenantID, scope)
}

func notificationPayload(n *Notification) map[string]any {
	payload := map[string]any{
		"id":        n.ID,
		"tenantId":  n.TenantID,
		"type":      n.Type,
		"category":  n.Category,
		"priority":  n.Priority,
		"title":     n.Title,
		"message":   n.Message,
		"read":      n.Read,
		"dismissed": n.Dismissed,
		"createdAt": n.Timestamp,
	}
	if n.UserID != "" {
		payload["userId"] = n.UserID
	}
	if n.Data != nil {
		payload["data"] = n.Data
	}
	if n.ExpiresAt != nil {
		payload["expiresAt"] = *n.ExpiresAt
	}
	if n.ActionURL != "" {
		payload["actionUrl"] = n.ActionURL
		payload["actionLabel"] = n.ActionLabel
	}
	return payload
}
