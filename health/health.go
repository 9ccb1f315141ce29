// Package health provides reusable health check functions for the services
// the outreach pipeline depends on: Redis job queues, the etcd worker
// registry, and general network reachability. Worker processes run these as
// pre-flight checks before accepting jobs.
package health

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// State classifies a check outcome.
type State string

const (
	// StateHealthy means the dependency is fully operational.
	StateHealthy State = "healthy"

	// StateDegraded means the dependency responded but with a caveat.
	StateDegraded State = "degraded"

	// StateUnhealthy means the dependency is unusable.
	StateUnhealthy State = "unhealthy"
)

// severity orders states from best to worst for aggregation.
func (s State) severity() int {
	switch s {
	case StateHealthy:
		return 0
	case StateDegraded:
		return 1
	default:
		return 2
	}
}

// Status is the outcome of a single health check.
type Status struct {
	State   State          `json:"state"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Healthy creates a healthy status.
func Healthy(message string) Status {
	return Status{State: StateHealthy, Message: message}
}

// Degraded creates a degraded status with optional details.
func Degraded(message string, details map[string]any) Status {
	return Status{State: StateDegraded, Message: message, Details: details}
}

// Unhealthy creates an unhealthy status with optional details.
func Unhealthy(message string, details map[string]any) Status {
	return Status{State: StateUnhealthy, Message: message, Details: details}
}

// IsHealthy reports whether the check passed cleanly.
func (s Status) IsHealthy() bool { return s.State == StateHealthy }

// IsUnhealthy reports whether the dependency is unusable.
func (s Status) IsUnhealthy() bool { return s.State == StateUnhealthy }

// NetworkCheck verifies TCP connectivity to a host and port.
//
// Example:
//
//	status := health.NetworkCheck("localhost", 6379, 3*time.Second)
//	if status.IsUnhealthy() {
//	    log.Fatal("redis is unreachable")
//	}
func NetworkCheck(host string, port int, timeout time.Duration) Status {
	if host == "" {
		return Unhealthy("host cannot be empty", nil)
	}
	if port < 1 || port > 65535 {
		return Unhealthy(fmt.Sprintf("invalid port %d", port), nil)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return Unhealthy(
			fmt.Sprintf("cannot connect to %s", addr),
			map[string]any{"address": addr, "error": err.Error()},
		)
	}
	conn.Close()

	return Healthy(fmt.Sprintf("connected to %s", addr))
}

// RedisCheck verifies that the Redis instance behind the URL answers PING.
// The URL uses the standard redis:// form accepted by go-redis.
func RedisCheck(ctx context.Context, url string) Status {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return Unhealthy("invalid redis URL", map[string]any{"error": err.Error()})
	}

	client := redis.NewClient(opts)
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		return Unhealthy(
			fmt.Sprintf("redis at %s did not respond", opts.Addr),
			map[string]any{"address": opts.Addr, "error": err.Error()},
		)
	}

	return Healthy(fmt.Sprintf("redis at %s responding", opts.Addr))
}

// EtcdCheck verifies that at least one etcd endpoint answers a status
// request within the context deadline. The worker registry is unusable when
// every endpoint is down.
func EtcdCheck(ctx context.Context, endpoints []string, dialTimeout time.Duration) Status {
	if len(endpoints) == 0 {
		return Unhealthy("no etcd endpoints configured", nil)
	}
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}

	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: dialTimeout,
	})
	if err != nil {
		return Unhealthy("failed to create etcd client", map[string]any{"error": err.Error()})
	}
	defer cli.Close()

	var lastErr error
	reachable := 0
	for _, ep := range endpoints {
		if _, err := cli.Status(ctx, ep); err != nil {
			lastErr = err
			continue
		}
		reachable++
	}

	switch {
	case reachable == 0:
		return Unhealthy("no etcd endpoint reachable", map[string]any{
			"endpoints": endpoints,
			"error":     lastErr.Error(),
		})
	case reachable < len(endpoints):
		return Degraded(
			fmt.Sprintf("%d of %d etcd endpoints reachable", reachable, len(endpoints)),
			map[string]any{"endpoints": endpoints},
		)
	default:
		return Healthy(fmt.Sprintf("all %d etcd endpoints reachable", reachable))
	}
}

// EnvCheck verifies that an environment variable is set and non-empty.
func EnvCheck(name string) Status {
	if name == "" {
		return Unhealthy("variable name cannot be empty", nil)
	}
	if os.Getenv(name) == "" {
		return Unhealthy(
			fmt.Sprintf("environment variable %s is not set", name),
			map[string]any{"variable": name},
		)
	}
	return Healthy(fmt.Sprintf("environment variable %s is set", name))
}

// Aggregate combines check outcomes into one status: the worst state wins.
// An empty input is healthy.
func Aggregate(statuses ...Status) Status {
	if len(statuses) == 0 {
		return Healthy("no checks performed")
	}

	worst := statuses[0]
	failing := 0
	for _, s := range statuses {
		if s.State.severity() > worst.State.severity() {
			worst = s
		}
		if !s.IsHealthy() {
			failing++
		}
	}

	if worst.IsHealthy() {
		return Healthy(fmt.Sprintf("all %d checks passed", len(statuses)))
	}
	return Status{
		State:   worst.State,
		Message: fmt.Sprintf("%d of %d checks failing: %s", failing, len(statuses), worst.Message),
		Details: worst.Details,
	}
}
