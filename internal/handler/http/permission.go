package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/permission"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
)

type PermissionHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
}

type permissionHandlerImpl struct {
	permissionService permission.PermissionService
}

func NewPermissionHandler(permissionService permission.PermissionService) PermissionHandler {
	return &permissionHandlerImpl{permissionService: permissionService}
}

func (h *permissionHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req permission.CreatePermissionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.permissionService.Submit(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Permission request submitted", result)
}

func (h *permissionHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	filter := permission.PermissionFilter{
		EmployeeID:   queryString(r, "employee_id"),
		CurrentLevel: queryString(r, "current_level"),
		Status:       queryString(r, "status"),
		StartDate:    queryString(r, "start_date"),
		EndDate:      queryString(r, "end_date"),
		Page:         queryInt(r, "page", 1),
		Limit:        queryInt(r, "limit", 20),
		SortBy:       r.URL.Query().Get("sort_by"),
		SortOrder:    r.URL.Query().Get("sort_order"),
	}

	result, err := h.permissionService.List(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *permissionHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, permission.ErrPermissionNotFound)
	if !ok {
		return
	}

	result, err := h.permissionService.Get(r.Context(), actor, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *permissionHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, permission.ErrPermissionNotFound)
	if !ok {
		return
	}

	var req permission.ApprovePermissionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.permissionService.Approve(r.Context(), actor, id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Permission request approved", result)
}

func (h *permissionHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, permission.ErrPermissionNotFound)
	if !ok {
		return
	}

	var req permission.RejectPermissionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.permissionService.Reject(r.Context(), actor, id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Permission request rejected", result)
}

func (h *permissionHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, permission.ErrPermissionNotFound)
	if !ok {
		return
	}

	result, err := h.permissionService.Cancel(r.Context(), actor, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Permission request cancelled", result)
}
