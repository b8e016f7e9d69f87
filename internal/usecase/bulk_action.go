package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/xavierca1/ligue-leadsync/internal/entity"
)

type ActionKind string

const (
	ActionDeactivate ActionKind = "deactivate"
	ActionDelete     ActionKind = "delete"
)

func ParseActionKind(s string) (ActionKind, error) {
	switch ActionKind(strings.ToLower(strings.TrimSpace(s))) {
	case ActionDeactivate:
		return ActionDeactivate, nil
	case ActionDelete:
		return ActionDelete, nil
	}
	return "", fmt.Errorf("unknown bulk action %q", s)
}

func (k ActionKind) operation() entity.Operation {
	if k == ActionDelete {
		return entity.OpDelete
	}
	return entity.OpDeactivate
}

// PendingAction is a bulk action awaiting the user's confirmation. Targets
// is a copy of the selected rows taken when the action was requested, so
// later re-renders can't shift what gets acted on.
type PendingAction struct {
	Kind    ActionKind    `json:"kind"`
	Count   int           `json:"count"`
	Prompt  string        `json:"prompt"`
	Targets []entity.Lead `json:"targets"`

	generation uint64
}

type ActionResult struct {
	Kind     ActionKind `json:"kind"`
	Affected int        `json:"affected"`
}

// BulkCoordinator runs confirmed bulk actions as a single backend call and
// reconciles the store on success. The call is all-or-nothing as far as the
// store is concerned.
type BulkCoordinator struct {
	mu       sync.Mutex
	pending  *PendingAction
	inFlight bool

	accountID string
	source    LeadSource
	store     *LeadStore
	notifier  Notifier
	life      *Lifetime
}

func NewBulkCoordinator(accountID string, source LeadSource, store *LeadStore, notifier Notifier, life *Lifetime) *BulkCoordinator {
	return &BulkCoordinator{
		accountID: accountID,
		source:    source,
		store:     store,
		notifier:  notifier,
		life:      life,
	}
}

// Request opens the confirmation step. generation is the store generation
// the targets were read from; targets from a replaced collection are
// refused. With no targets it does nothing and returns nil.
func (c *BulkCoordinator) Request(kind ActionKind, targets []entity.Lead, generation uint64) (*PendingAction, error) {
	if len(targets) == 0 {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending != nil || c.inFlight {
		return nil, ErrActionPending
	}
	if generation != c.store.Generation() {
		return nil, ErrStaleView
	}

	snapshot := make([]entity.Lead, len(targets))
	for i, l := range targets {
		snapshot[i] = l.Clone()
	}
	c.pending = &PendingAction{
		Kind:    kind,
		Count:   len(snapshot),
		Prompt:  fmt.Sprintf("%s %d lead(s)?", kind.verb(), len(snapshot)),
		Targets: snapshot,

		generation: generation,
	}
	p := *c.pending
	return &p, nil
}

func (c *BulkCoordinator) Pending() *PendingAction {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return nil
	}
	p := *c.pending
	return &p
}

// Cancel drops the pending action without contacting the backend. It
// reports whether there was anything to cancel.
func (c *BulkCoordinator) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil || c.inFlight {
		return false
	}
	c.pending = nil
	return true
}

// Confirm executes the pending action. On failure the store is untouched
// and the action is dropped so the user can request it again.
func (c *BulkCoordinator) Confirm(ctx context.Context) (ActionResult, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return ActionResult{}, ErrBusy
	}
	if c.pending == nil {
		c.mu.Unlock()
		return ActionResult{}, ErrNoPendingAction
	}
	p := c.pending
	c.inFlight = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.pending = nil
		c.mu.Unlock()
	}()

	ids := make([]string, len(p.Targets))
	slots := make([]int, len(p.Targets))
	for i, l := range p.Targets {
		ids[i] = l.Identifier()
		slots[i] = l.Slot
	}

	epoch := c.life.Capture()
	var err error
	switch p.Kind {
	case ActionDeactivate:
		err = c.source.Deactivate(ctx, ids)
	case ActionDelete:
		err = c.source.Delete(ctx, ids)
	default:
		err = fmt.Errorf("unknown bulk action %q", p.Kind)
	}
	if !c.life.Current(epoch) {
		return ActionResult{}, ErrSessionClosed
	}

	op := p.Kind.operation()
	if err != nil {
		err = &TechnicalError{
			Code:    CodeActionFailed,
			Message: fmt.Sprintf("could not %s %d lead(s): %v", p.Kind, len(ids), err),
			Err:     err,
		}
		log.Printf("❌ %s bulk %s failed: %v", c.source.Provider(), p.Kind, err)
		c.notifier.Notify(ctx, outcome(c.accountID, c.source.Provider(), op, err, ""))
		return ActionResult{}, err
	}

	var affected int
	if c.store.Generation() != p.generation {
		log.Printf("⚠️ %s collection was refetched during bulk %s, skipping reconciliation", c.source.Provider(), p.Kind)
	} else if p.Kind == ActionDelete {
		affected = c.store.Remove(slots)
	} else {
		affected = c.store.MarkDeactivated(slots)
	}

	log.Printf("✅ %s bulk %s: %d lead(s)", c.source.Provider(), p.Kind, affected)
	msg := fmt.Sprintf("%d lead(s) %s", len(ids), pastTense(p.Kind))
	c.notifier.Notify(ctx, outcome(c.accountID, c.source.Provider(), op, nil, msg))
	return ActionResult{Kind: p.Kind, Affected: affected}, nil
}

func (k ActionKind) verb() string {
	if k == ActionDelete {
		return "Delete"
	}
	return "Deactivate"
}

func pastTense(k ActionKind) string {
	if k == ActionDelete {
		return "deleted"
	}
	return "deactivated"
}
