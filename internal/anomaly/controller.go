package anomaly

import (
	"context"
	"fmt"
	"sync"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apperr"
)

// Store persists resolution records. The upstream API client implements it.
type Store interface {
	FindAnomalyResolution(ctx context.Context, answerID string) (*Record, error)
	UpdateAnomalyResolution(ctx context.Context, id string, status Status, reviewerID string) error
}

// Controller is the caller side of the state machine. It refuses transitions
// on records that are no longer actionable and lets only one transition per
// record run at a time.
type Controller struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewController() *Controller {
	return &Controller{inFlight: make(map[string]struct{})}
}

// Fetch returns the record for an answer, or nil when none exists yet
func (c *Controller) Fetch(ctx context.Context, store Store, answerID string) (*Record, error) {
	rec, err := store.FindAnomalyResolution(ctx, answerID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch anomaly resolution: %w", err)
	}
	return rec, nil
}

// Transition asks the store to move rec to target and returns the updated
// record. On failure rec is returned unchanged; there is no retry.
func (c *Controller) Transition(ctx context.Context, store Store, rec Record, target Status, reviewerID string) (Record, error) {
	if !rec.Actionable() {
		return rec, apperr.Validation("anomaly %s is already %s", rec.ID, rec.Status)
	}
	next, err := rec.Transition(target, reviewerID)
	if err != nil {
		return rec, err
	}

	if !c.acquire(rec.ID) {
		return rec, apperr.Conflict("a transition for this anomaly is already in progress", nil)
	}
	defer c.release(rec.ID)

	if err := store.UpdateAnomalyResolution(ctx, rec.ID, target, reviewerID); err != nil {
		return rec, fmt.Errorf("failed to update anomaly resolution: %w", err)
	}
	return next, nil
}

func (c *Controller) acquire(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[id]; busy {
		return false
	}
	c.inFlight[id] = struct{}{}
	return true
}

func (c *Controller) release(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, id)
}
