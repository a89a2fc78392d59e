package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/workflow"
)

// ApprovalNotifier turns workflow transitions into notifications for the
// requester and for the roles approving the next level.
type ApprovalNotifier struct {
	dispatcher notification.Dispatcher
	kind       string
}

// NewApprovalNotifier builds a notifier for one request kind, for example
// "regularization".
func NewApprovalNotifier(dispatcher notification.Dispatcher, kind string) *ApprovalNotifier {
	return &ApprovalNotifier{dispatcher: dispatcher, kind: kind}
}

// Submitted tells the approvers of the first open level about a new request.
func (n *ApprovalNotifier) Submitted(ctx context.Context, requestID, requesterID string, level user.Level) {
	n.toApprovers(ctx, level, notification.TypeRequestCreated,
		fmt.Sprintf("New %s request", n.kind),
		fmt.Sprintf("A %s request from employee %s awaits %s approval.", n.kind, requesterID, level),
		n.data(requestID, level))
}

// Approved reports an approval. A completed chain notifies the requester only.
func (n *ApprovalNotifier) Approved(ctx context.Context, requestID, requesterID string, outcome workflow.Outcome) {
	if outcome.Completed {
		n.dispatcher.Dispatch(ctx, notification.ToEmployee(requesterID, notification.TypeApproved,
			fmt.Sprintf("%s request approved", n.title()),
			fmt.Sprintf("Your %s request has been approved.", n.kind),
			n.data(requestID, user.LevelCompleted)))
		return
	}

	n.dispatcher.Dispatch(ctx, notification.ToEmployee(requesterID, notification.TypeLevelAdvanced,
		fmt.Sprintf("%s request approved by %s", n.title(), outcome.From),
		fmt.Sprintf("Your %s request moved to %s review.", n.kind, outcome.To),
		n.data(requestID, outcome.To)))
	n.toApprovers(ctx, outcome.To, notification.TypeLevelAdvanced,
		fmt.Sprintf("%s request awaiting review", n.title()),
		fmt.Sprintf("A %s request from employee %s awaits %s approval.", n.kind, requesterID, outcome.To),
		n.data(requestID, outcome.To))
}

// Rejected tells the requester the chain ended.
func (n *ApprovalNotifier) Rejected(ctx context.Context, requestID, requesterID string, level user.Level, reason string) {
	data := n.data(requestID, level)
	data["reason"] = reason
	n.dispatcher.Dispatch(ctx, notification.ToEmployee(requesterID, notification.TypeRejected,
		fmt.Sprintf("%s request rejected", n.title()),
		fmt.Sprintf("Your %s request was rejected at %s: %s", n.kind, level, reason),
		data))
}

// Cancelled withdraws the request from the approvers' queue.
func (n *ApprovalNotifier) Cancelled(ctx context.Context, requestID, requesterID string, level user.Level) {
	n.toApprovers(ctx, level, notification.TypeCancelled,
		fmt.Sprintf("%s request cancelled", n.title()),
		fmt.Sprintf("Employee %s cancelled a %s request.", requesterID, n.kind),
		n.data(requestID, level))
}

func (n *ApprovalNotifier) toApprovers(ctx context.Context, level user.Level, t notification.NotificationType, title, message string, data map[string]interface{}) {
	for _, role := range user.ApproversOf(level) {
		n.dispatcher.Dispatch(ctx, notification.ToRole(string(role), t, title, message, data))
	}
}

func (n *ApprovalNotifier) data(requestID string, level user.Level) map[string]interface{} {
	return map[string]interface{}{
		"request_id":    requestID,
		"request_kind":  n.kind,
		"current_level": string(level),
	}
}

func (n *ApprovalNotifier) title() string {
	if n.kind == "" {
		return ""
	}
	return strings.ToUpper(n.kind[:1]) + n.kind[1:]
}
