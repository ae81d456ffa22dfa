package reconcile

import (
	"context"
	"fmt"

	"event-ticketing-console/internal/models"

	"github.com/sirupsen/logrus"
)

// OpKind is the kind of a remote operation
type OpKind string

const (
	OpDelete OpKind = "delete"
	OpUpdate OpKind = "update"
	OpCreate OpKind = "create"
)

// Operation is one remote call in a reconciliation batch
type Operation struct {
	Kind OpKind `json:"kind"`
	// ID is the server id for deletes and updates and the local id for creates
	ID      string                `json:"id"`
	Payload *models.TicketPayload `json:"payload,omitempty"`
}

// Operations returns the diff as one batch: deletes, then updates, then creates
func (d Diff) Operations() []Operation {
	ops := make([]Operation, 0, len(d.ToDelete)+len(d.ToUpdate)+len(d.ToCreate))
	for _, id := range d.ToDelete {
		ops = append(ops, Operation{Kind: OpDelete, ID: id})
	}
	for i := range d.ToUpdate {
		ops = append(ops, Operation{Kind: OpUpdate, ID: d.ToUpdate[i].Record.ID, Payload: &d.ToUpdate[i].Payload})
	}
	for i := range d.ToCreate {
		ops = append(ops, Operation{Kind: OpCreate, ID: d.ToCreate[i].Record.ID, Payload: &d.ToCreate[i].Payload})
	}
	return ops
}

// Collaborator persists ticket records. Deadlines on each call are the
// collaborator's concern.
type Collaborator interface {
	Create(ctx context.Context, payload models.TicketPayload) (string, error)
	Update(ctx context.Context, id string, payload models.TicketPayload) error
	Delete(ctx context.Context, id string) error
}

// Outcome is a confirmed operation. ServerID is set for creates.
type Outcome struct {
	Op       Operation `json:"op"`
	ServerID string    `json:"server_id,omitempty"`
}

// Failure is an operation that was not confirmed
type Failure struct {
	Op      Operation `json:"op"`
	Err     error     `json:"-"`
	Message string    `json:"error"`
}

// Result aggregates one batch. RefreshRequired tells the caller to reload
// authoritative state instead of trusting its working set.
type Result struct {
	Succeeded       []Outcome `json:"succeeded"`
	Failed          []Failure `json:"failed"`
	RefreshRequired bool      `json:"refresh_required"`
}

// Driver replays a diff against a collaborator
type Driver struct {
	logger *logrus.Logger
}

// NewDriver creates a driver logging to logger
func NewDriver(logger *logrus.Logger) *Driver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Driver{logger: logger}
}

// Apply executes every operation of diff sequentially, deletes first so that
// capacity checks during creation see the post-deletion state. A failed item
// is recorded and the batch continues; nothing is retried. Once ctx is done,
// every operation not yet confirmed is reported as failed.
func (d *Driver) Apply(ctx context.Context, diff Diff, collaborator Collaborator) Result {
	ops := diff.Operations()
	result := Result{
		Succeeded: make([]Outcome, 0, len(ops)),
		Failed:    make([]Failure, 0),
	}

	for _, op := range ops {
		log := d.logger.WithFields(logrus.Fields{"op": op.Kind, "id": op.ID})

		if err := ctx.Err(); err != nil {
			result.Failed = append(result.Failed, newFailure(op, err))
			continue
		}

		serverID, err := d.execute(ctx, op, collaborator)
		if err != nil {
			log.WithError(err).Warn("reconciliation operation failed")
			result.Failed = append(result.Failed, newFailure(op, err))
			continue
		}

		log.Debug("reconciliation operation applied")
		result.Succeeded = append(result.Succeeded, Outcome{Op: op, ServerID: serverID})
	}

	result.RefreshRequired = true

	d.logger.WithFields(logrus.Fields{
		"succeeded": len(result.Succeeded),
		"failed":    len(result.Failed),
	}).Info("reconciliation batch finished")

	return result
}

func (d *Driver) execute(ctx context.Context, op Operation, collaborator Collaborator) (string, error) {
	switch op.Kind {
	case OpDelete:
		return "", collaborator.Delete(ctx, op.ID)
	case OpUpdate:
		return "", collaborator.Update(ctx, op.ID, *op.Payload)
	case OpCreate:
		return collaborator.Create(ctx, *op.Payload)
	default:
		return "", fmt.Errorf("unknown operation %q", op.Kind)
	}
}

func newFailure(op Operation, err error) Failure {
	wrapped := fmt.Errorf("%w: %s %s: %w", models.ErrRemoteOperationFailed, op.Kind, op.ID, err)
	return Failure{Op: op, Err: wrapped, Message: wrapped.Error()}
}

// Errors returns the failure errors keyed by operation id
func (r Result) Errors() map[string]string {
	errs := make(map[string]string, len(r.Failed))
	for _, f := range r.Failed {
		errs[f.Op.ID] = f.Message
	}
	return errs
}
