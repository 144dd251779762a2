package reporting

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"callcenter-platform/internal/calls"
	"callcenter-platform/internal/customers"
	"callcenter-platform/internal/rbac"

	"github.com/redis/go-redis/v9"
)

// Cache is the stats cache contract. A miss is (nil, false, nil); errors
// are treated as misses by the service so a cache outage degrades to
// recomputation, never to a failed request.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache backs the stats cache with Redis.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache { return &RedisCache{rdb: rdb} }

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

const (
	adminStatsKey    = "stats:admin"
	agentStatsPrefix = "stats:agent:"
)

// Service computes dashboard statistics. Results are cached with a short
// TTL; slightly stale dashboards are acceptable, slow ones are not.
type Service struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
}

// NewService builds the reporting service. cache may be nil to disable
// caching (tests, or when Redis is unavailable).
func NewService(repo Repository, cache Cache, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Service{repo: repo, cache: cache, ttl: ttl}
}

// AdminStats returns the platform-wide snapshot; admin only.
func (s *Service) AdminStats(ctx context.Context, actor rbac.Actor) (AdminStats, error) {
	if actor.Role != rbac.RoleAdmin {
		return AdminStats{}, rbac.ErrAccessDenied
	}

	var cached AdminStats
	if s.fromCache(ctx, adminStatsKey, &cached) {
		return cached, nil
	}

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return AdminStats{}, err
	}
	custs, err := s.repo.ListCustomers(ctx, customers.ListFilter{})
	if err != nil {
		return AdminStats{}, err
	}
	records, err := s.repo.ListCallRecords(ctx, customers.RecordFilter{})
	if err != nil {
		return AdminStats{}, err
	}
	tickets, err := s.repo.ListCalls(ctx, calls.ListFilter{})
	if err != nil {
		return AdminStats{}, err
	}
	feedback, err := s.repo.ListFeedback(ctx, calls.FeedbackFilter{})
	if err != nil {
		return AdminStats{}, err
	}

	out := AdminStats{TotalUsers: len(users)}
	for _, u := range users {
		if u.Role == rbac.RoleUser {
			out.TotalAgents++
		}
	}

	out.TotalCustomers = len(custs)
	for _, c := range custs {
		switch c.Status {
		case customers.StatusPending:
			out.PendingCustomers++
		case customers.StatusContacted:
			out.ContactedCustomers++
		case customers.StatusCompleted:
			out.CompletedCustomers++
		}
	}

	out.TotalCallRecords = len(records)
	for _, r := range records {
		out.TotalCallMinutes += r.DurationMinutes
		if r.CallStatus == customers.OutcomeSuccessful {
			out.SuccessfulCallCount++
		}
		if r.RecordingURL != "" {
			out.RecordedCallCount++
		}
		if r.FollowUpRequired {
			out.FollowUpsOutstanding++
		}
	}

	out.TotalCalls = len(tickets)
	for _, c := range tickets {
		switch c.Status {
		case calls.StatusPending:
			out.PendingCalls++
		case calls.StatusCompleted:
			out.CompletedCalls++
		case calls.StatusInReview:
			out.InReviewCalls++
		}
		if c.AssignedUserID == "" {
			out.OpenCalls++
		}
	}

	out.TotalFeedback = len(feedback)
	ratingSum := 0
	for _, fb := range feedback {
		ratingSum += fb.Rating
	}
	if out.TotalFeedback > 0 {
		out.AverageRating = float64(ratingSum) / float64(out.TotalFeedback)
	}

	s.toCache(ctx, adminStatsKey, out)
	return out, nil
}

// AgentStats returns one agent's snapshot. Agents see their own; admins may
// ask for anyone's.
func (s *Service) AgentStats(ctx context.Context, actor rbac.Actor, userID string) (AgentStats, error) {
	if userID == "" || (actor.Role != rbac.RoleAdmin && userID != actor.ID) {
		return AgentStats{}, rbac.ErrAccessDenied
	}

	key := agentStatsPrefix + userID
	var cached AgentStats
	if s.fromCache(ctx, key, &cached) {
		return cached, nil
	}

	custs, err := s.repo.ListCustomers(ctx, customers.ListFilter{AssignedTo: userID})
	if err != nil {
		return AgentStats{}, err
	}
	records, err := s.repo.ListCallRecords(ctx, customers.RecordFilter{UserID: userID})
	if err != nil {
		return AgentStats{}, err
	}
	tickets, err := s.repo.ListCalls(ctx, calls.ListFilter{AssignedUserID: userID})
	if err != nil {
		return AgentStats{}, err
	}
	feedback, err := s.repo.ListFeedback(ctx, calls.FeedbackFilter{UserID: userID})
	if err != nil {
		return AgentStats{}, err
	}

	out := AgentStats{UserID: userID, AssignedCustomers: len(custs)}
	for _, c := range custs {
		switch c.Status {
		case customers.StatusPending:
			out.PendingCustomers++
		case customers.StatusContacted:
			out.ContactedCustomers++
		case customers.StatusCompleted:
			out.CompletedCustomers++
		}
	}

	out.CallRecords = len(records)
	for _, r := range records {
		out.TotalCallMinutes += r.DurationMinutes
		if r.CallStatus == customers.OutcomeSuccessful {
			out.SuccessfulCalls++
		}
	}

	out.AssignedCalls = len(tickets)
	for _, c := range tickets {
		switch c.Status {
		case calls.StatusPending:
			out.PendingCalls++
		case calls.StatusCompleted:
			out.CompletedCalls++
		}
	}
	out.SubmittedReports = len(feedback)

	s.toCache(ctx, key, out)
	return out, nil
}

func (s *Service) fromCache(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	b, ok, err := s.cache.Get(ctx, key)
	if err != nil || !ok {
		return false
	}
	return json.Unmarshal(b, dst) == nil
}

func (s *Service) toCache(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, key, b, s.ttl)
}
