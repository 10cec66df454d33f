package domain

import (
	"errors"
	"time"
)

var (
	ErrServiceCheckNotFound = errors.New("service check not found")
	ErrDuplicateCheckKey    = errors.New("check key already exists for this service")
	ErrInvalidWeight        = errors.New("check weight must be in (0, 1]")
	ErrWeightSumExceeded    = errors.New("explicit check weights exceed 1.0")
	ErrNoRemainingWeight    = errors.New("no remaining weight for checks without an explicit weight")
	ErrWeightsDontSumToOne  = errors.New("explicit check weights must sum to 1.0 when all checks specify a weight")

	ErrCheckJobNotFound = errors.New("check job not found")
	ErrDuplicateJob     = errors.New("check job with this idempotency key already exists")
)

// Status is the canonical three-way health of one check or one service.
type Status string

const (
	StatusUp       Status = "up"
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
)

// ServiceCheck is one probe definition owned by a service.
type ServiceCheck struct {
	ID              string    `json:"id"`
	ServiceID       string    `json:"serviceId"`
	CheckKey        string    `json:"checkKey"`
	ClassPath       string    `json:"classPath"`
	IntervalSeconds int       `json:"intervalSeconds"`
	TimeoutSeconds  int       `json:"timeoutSeconds"`
	Weight          float64   `json:"weight"`
	Enabled         bool      `json:"enabled"`
	NextDueAt       time.Time `json:"nextDueAt"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// JobStatus is the lifecycle state of a CheckJob.
type JobStatus string

const (
	JobQueued JobStatus = "queued"
	JobLeased JobStatus = "leased"
	JobDone   JobStatus = "done"
	JobFailed JobStatus = "failed"
)

// CheckJob is a durable work unit: "run this check at this scheduled time".
type CheckJob struct {
	ID              string     `json:"id"`
	ServiceID       string     `json:"serviceId"`
	CheckID         string     `json:"checkId"`
	ScheduledFor    time.Time  `json:"scheduledFor"`
	Status          JobStatus  `json:"status"`
	LeaseExpiresAt  *time.Time `json:"leaseExpiresAt"`
	WorkerID        *string    `json:"workerId"`
	Attempt         int        `json:"attempt"`
	MaxAttempts     int        `json:"maxAttempts"`
	IdempotencyKey  string     `json:"idempotencyKey"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// CheckRun is the immutable outcome of executing one CheckJob.
type CheckRun struct {
	ID            string         `json:"id"`
	JobID         string         `json:"jobId"`
	ServiceID     string         `json:"serviceId"`
	CheckID       string         `json:"checkId"`
	Status        Status         `json:"status"`
	LatencyMS     *int           `json:"latencyMs,omitempty"`
	HTTPStatus    *int           `json:"httpStatus,omitempty"`
	ErrorCode     *string        `json:"errorCode,omitempty"`
	ErrorMessage  *string        `json:"errorMessage,omitempty"`
	StatusDetail  string         `json:"statusDetail"`
	SeverityLevel int            `json:"severityLevel"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	ObservedAt    time.Time      `json:"observedAt"`
}
