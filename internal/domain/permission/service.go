package permission

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

type PermissionService interface {
	Submit(ctx context.Context, actor user.Actor, req CreatePermissionRequest) (PermissionResponse, error)
	Approve(ctx context.Context, actor user.Actor, id string, req ApprovePermissionRequest) (PermissionResponse, error)
	Reject(ctx context.Context, actor user.Actor, id string, req RejectPermissionRequest) (PermissionResponse, error)
	Cancel(ctx context.Context, actor user.Actor, id string) (PermissionResponse, error)
	List(ctx context.Context, actor user.Actor, filter PermissionFilter) (ListPermissionResponse, error)
	Get(ctx context.Context, actor user.Actor, id string) (PermissionResponse, error)
}
