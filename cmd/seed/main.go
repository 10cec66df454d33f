// seed inserts the sample services, their dependency edge, and their
// checks into the local dev database, so the scheduler/worker pipeline
// has something to probe end to end.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/checker"
	"github.com/ErlanBelekov/dist-job-scheduler/internal/checker/samples"
	"github.com/ErlanBelekov/dist-job-scheduler/internal/domain"
	"github.com/ErlanBelekov/dist-job-scheduler/internal/infrastructure/postgres"
)

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	serviceRepo := postgres.NewServiceRepository(pool)
	checkRepo := postgres.NewCheckRepository(pool)

	serviceCheckers := []checker.ServiceChecker{
		samples.ServiceCheckerAnthropic(),
		samples.ServiceCheckerCloudflare(),
		samples.ServiceCheckerGitHub(),
	}

	serviceIDs := make(map[string]string, len(serviceCheckers))
	now := time.Now().UTC()

	for _, sc := range serviceCheckers {
		svc, err := serviceRepo.GetBySlug(ctx, sc.ServiceKey)
		if err != nil {
			if !errors.Is(err, domain.ErrServiceNotFound) {
				log.Fatalf("lookup service %s: %v", sc.ServiceKey, err)
			}
			svc, err = serviceRepo.Create(ctx, &domain.Service{
				Slug:                   sc.ServiceKey,
				Name:                   sc.ServiceKey,
				IsActive:               true,
				DefaultIntervalSeconds: 60,
			})
			if err != nil {
				log.Fatalf("create service %s: %v", sc.ServiceKey, err)
			}
			fmt.Printf("created service %s (%s)\n", sc.ServiceKey, svc.ID)
		} else {
			fmt.Printf("service %s already exists (%s)\n", sc.ServiceKey, svc.ID)
		}
		serviceIDs[sc.ServiceKey] = svc.ID

		checks, err := checker.ResolveCheckWeights(sc.ServiceKey, sc.Checks)
		if err != nil {
			log.Fatalf("resolve weights for %s: %v", sc.ServiceKey, err)
		}

		existing, err := checkRepo.ListByService(ctx, svc.ID)
		if err != nil {
			log.Fatalf("list checks for %s: %v", sc.ServiceKey, err)
		}
		existingKeys := make(map[string]bool, len(existing))
		for _, c := range existing {
			existingKeys[c.CheckKey] = true
		}

		for _, c := range checks {
			if existingKeys[c.CheckKey] {
				continue
			}
			_, err := checkRepo.Create(ctx, &domain.ServiceCheck{
				ServiceID:       svc.ID,
				CheckKey:        c.CheckKey,
				ClassPath:       c.CheckKey, // sample checks self-register by check key
				IntervalSeconds: c.IntervalSeconds,
				TimeoutSeconds:  c.TimeoutSeconds,
				Weight:          c.Weight,
				Enabled:         true,
				NextDueAt:       now,
			})
			if err != nil {
				log.Fatalf("create check %s/%s: %v", sc.ServiceKey, c.CheckKey, err)
			}
			fmt.Printf("  + check %s (weight=%.3f)\n", c.CheckKey, c.Weight)
		}
	}

	// github depends on cloudflare per samples.ServiceCheckerGitHub's
	// declared Dependencies — record the edge so attribution has
	// something to look up.
	githubID, cloudflareID := serviceIDs["github"], serviceIDs["cloudflare"]
	if githubID != "" && cloudflareID != "" {
		deps, err := serviceRepo.ListDependencies(ctx, githubID)
		if err != nil {
			log.Fatalf("list dependencies for github: %v", err)
		}
		hasEdge := false
		for _, d := range deps {
			if d.DependsOnServiceID == cloudflareID {
				hasEdge = true
			}
		}
		if !hasEdge {
			_, err := serviceRepo.AddDependency(ctx, &domain.ServiceDependency{
				ServiceID:          githubID,
				DependsOnServiceID: cloudflareID,
				DependencyType:     domain.DependencySoft,
				Weight:             0.5,
			})
			if err != nil {
				log.Fatalf("add dependency github->cloudflare: %v", err)
			}
			fmt.Println("  + dependency github -> cloudflare (soft, weight=0.5)")
		}
	}

	fmt.Println("\nSeed complete.")
}
