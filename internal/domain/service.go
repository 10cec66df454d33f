package domain

import (
	"errors"
	"time"
)

var (
	ErrServiceNotFound   = errors.New("service not found")
	ErrDuplicateSlug     = errors.New("service with this slug already exists")
	ErrSelfDependency    = errors.New("a service cannot depend on itself")
	ErrDuplicateEdge     = errors.New("dependency edge already exists")
)

// DependencyType classifies how strongly a service depends on another.
type DependencyType string

const (
	DependencySoft DependencyType = "soft"
	DependencyHard DependencyType = "hard"
)

// Service is a probed third-party service identity.
type Service struct {
	ID                     string    `json:"id"`
	Slug                   string    `json:"slug"`
	Name                   string    `json:"name"`
	IsActive               bool      `json:"isActive"`
	DefaultIntervalSeconds int       `json:"defaultIntervalSeconds"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

// ServiceDependency is a directed edge in the service dependency graph.
// Attribution treats this as a lookup relation, never a traversal — the
// graph may contain cycles.
type ServiceDependency struct {
	ID                 string         `json:"id"`
	ServiceID          string         `json:"serviceId"`
	DependsOnServiceID string         `json:"dependsOnServiceId"`
	DependencyType     DependencyType `json:"dependencyType"`
	Weight             float64        `json:"weight"`
	CreatedAt          time.Time      `json:"createdAt"`
}
