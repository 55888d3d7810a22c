package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/dashboard"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/pkg/httputil"
)

const (
	statusUp          = "up"
	statusDown        = "down"
	statusDegraded    = "degraded"
	msgNotConfigured  = "not configured"
	healthVersion     = "1.0.0"
	refresherCheckKey = "refresher"
)

// HealthStatus represents the overall health of the service.
type HealthStatus struct {
	Status  string                    `json:"status"` // "healthy", "degraded", "unhealthy"
	Version string                    `json:"version"`
	Uptime  string                    `json:"uptime"`
	Checks  map[string]ComponentCheck `json:"checks"`
}

// ComponentCheck represents the health of a single component.
type ComponentCheck struct {
	Status  string `json:"status"` // "up", "down", "degraded"
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

// HealthChecker reports on the snapshot cache and the dashboard refresher.
type HealthChecker struct {
	redisClient redis.UniversalClient
	status      func() dashboard.Status
	startTime   time.Time
}

// NewHealthChecker creates a new HealthChecker. redisClient may be nil, in
// which case the cache check reports "not configured".
func NewHealthChecker(redisClient redis.UniversalClient, status func() dashboard.Status) *HealthChecker {
	return &HealthChecker{
		redisClient: redisClient,
		status:      status,
		startTime:   time.Now(),
	}
}

// HandleHealth returns the status of every component. Always 200; the body
// carries the verdict.
//
//	GET /health
func (hc *HealthChecker) HandleHealth(w http.ResponseWriter, r *http.Request) {
	checks := hc.runAllChecks(r.Context())

	httputil.OK(w, HealthStatus{
		Status:  determineOverallStatus(checks),
		Version: healthVersion,
		Uptime:  formatUptime(time.Since(hc.startTime)),
		Checks:  checks,
	})
}

// HandleLiveness always returns 200 while the process is up.
//
//	GET /health/live
func (hc *HealthChecker) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]interface{}{
		"status": "alive",
		"uptime": formatUptime(time.Since(hc.startTime)),
	})
}

// HandleReadiness returns 503 when the service cannot serve dashboard data.
//
//	GET /health/ready
func (hc *HealthChecker) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	checks := hc.runAllChecks(r.Context())
	overall := determineOverallStatus(checks)

	ready := overall != "unhealthy"
	code := http.StatusOK
	if !ready {
		code = http.StatusServiceUnavailable
	}

	httputil.JSON(w, code, map[string]interface{}{
		"ready":  ready,
		"status": overall,
		"checks": checks,
	})
}

func (hc *HealthChecker) runAllChecks(ctx context.Context) map[string]ComponentCheck {
	type result struct {
		name  string
		check ComponentCheck
	}
	ch := make(chan result, 2)

	go func() { ch <- result{"redis", hc.checkRedis(ctx)} }()
	go func() { ch <- result{refresherCheckKey, hc.checkRefresher()} }()

	checks := make(map[string]ComponentCheck, 2)
	for i := 0; i < 2; i++ {
		r := <-ch
		checks[r.name] = r.check
	}
	return checks
}

// checkRedis pings Redis with a 2-second timeout.
func (hc *HealthChecker) checkRedis(ctx context.Context) ComponentCheck {
	if hc.redisClient == nil {
		return ComponentCheck{Status: statusDown, Message: msgNotConfigured}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := hc.redisClient.Ping(pingCtx).Err()
	latency := time.Since(start)

	if err != nil {
		return ComponentCheck{
			Status:  statusDown,
			Latency: latency.String(),
			Message: fmt.Sprintf("ping failed: %v", err),
		}
	}

	status, msg := statusUp, "connected"
	if latency > 500*time.Millisecond {
		status = statusDegraded
		msg = fmt.Sprintf("slow response (%s)", latency)
	}
	return ComponentCheck{Status: status, Latency: latency.String(), Message: msg}
}

// checkRefresher is down until a refresh has succeeded, degraded when a
// later refresh failed or the loop stopped.
func (hc *HealthChecker) checkRefresher() ComponentCheck {
	if hc.status == nil {
		return ComponentCheck{Status: statusDown, Message: msgNotConfigured}
	}
	st := hc.status()

	switch {
	case st.LastError != "" && st.LastRefresh.IsZero():
		return ComponentCheck{Status: statusDown, Message: "no snapshot: " + st.LastError}
	case st.LastError != "":
		return ComponentCheck{
			Status:  statusDegraded,
			Message: fmt.Sprintf("serving snapshot from %s: %s", st.LastRefresh.UTC().Format(time.RFC3339), st.LastError),
		}
	case !st.Running && !st.LastRefresh.IsZero():
		return ComponentCheck{Status: statusDegraded, Message: "refresh loop stopped"}
	case st.LastRefresh.IsZero():
		return ComponentCheck{Status: statusDown, Message: "awaiting first refresh from " + st.Source}
	}
	return ComponentCheck{
		Status:  statusUp,
		Message: fmt.Sprintf("%d conversations from %s", st.Conversations, st.Source),
	}
}

// determineOverallStatus derives the aggregate status from individual checks.
//
// Rules:
//   - "unhealthy" if the refresher is down (no data to serve)
//   - "degraded"  if any check is degraded or a configured check is down
//   - "healthy"   otherwise
func determineOverallStatus(checks map[string]ComponentCheck) string {
	if c, ok := checks[refresherCheckKey]; ok && c.Status == statusDown && c.Message != msgNotConfigured {
		return "unhealthy"
	}

	for _, c := range checks {
		if c.Status == statusDegraded {
			return "degraded"
		}
		if c.Status == statusDown && c.Message != msgNotConfigured {
			return "degraded"
		}
	}
	return "healthy"
}

// formatUptime produces a human-readable uptime string like "3d 4h 12m 5s".
func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
