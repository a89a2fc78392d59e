package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/policy"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
)

type PolicyHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
}

type policyHandlerImpl struct {
	policyService policy.PolicyService
}

func NewPolicyHandler(policyService policy.PolicyService) PolicyHandler {
	return &policyHandlerImpl{policyService: policyService}
}

// Get implements PolicyHandler.
func (h *policyHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.policyService.Current(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, p)
}

// Update implements PolicyHandler.
func (h *policyHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req policy.UpdatePolicyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.policyService.Update(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Work hour policy updated", p)
}
