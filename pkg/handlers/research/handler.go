package research

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/metagrowth/growth-agent/pkg/adapters"
	"github.com/metagrowth/growth-agent/pkg/handlers/response"
	"github.com/metagrowth/growth-agent/pkg/models/api"
	"github.com/metagrowth/growth-agent/pkg/models/domain"
	"github.com/metagrowth/growth-agent/pkg/services/providers"
	"github.com/metagrowth/growth-agent/pkg/services/research"
	"github.com/rs/zerolog"
)

type Handler struct {
	research research.Service
}

func NewHandler(svc research.Service) *Handler {
	return &Handler{research: svc}
}

func (h *Handler) ListProviders(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, api.ProvidersResponse{Available: h.research.AvailableProviders()})
}

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks := make([]string, 0, len(domain.ResearchTasks))
	descriptions := make(map[string]string, len(domain.ResearchTasks))
	for _, t := range domain.ResearchTasks {
		tasks = append(tasks, string(t))
		descriptions[string(t)] = domain.ResearchTaskDescriptions[t]
	}
	response.JSON(w, r, http.StatusOK, api.TasksResponse{Tasks: tasks, Descriptions: descriptions})
}

func (h *Handler) Configure(w http.ResponseWriter, r *http.Request) {
	var req api.WorkflowConfigRequest
	if !response.Decode(w, r, &req) {
		return
	}

	if err := h.research.Configure(req.Config); err != nil {
		writeConfigError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, api.WorkflowConfigResponse{Status: "configured", Config: req.Config})
}

func (h *Handler) Execute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.WorkflowExecutionRequest
	if !response.Decode(w, r, &req) {
		return
	}

	report, err := h.research.Execute(ctx, research.Request{
		Domain:         req.Domain,
		MetaData:       req.MetaData,
		CompetitorData: req.CompetitorData,
		CustomConfig:   req.CustomConfig,
	})
	var cfgErr *research.ConfigError
	if errors.As(err, &cfgErr) {
		writeConfigError(w, r, err)
		return
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("domain", req.Domain).Msg("workflow execution failed")
		response.Error(w, r, http.StatusInternalServerError, fmt.Sprintf("Workflow execution failed: %v", err))
		return
	}
	response.JSON(w, r, http.StatusOK, adapters.MapResearchReportToAPI(report))
}

func (h *Handler) ExecuteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.TaskExecutionRequest
	if !response.Decode(w, r, &req) {
		return
	}

	task, ok := domain.ParseResearchTask(req.Task)
	if !ok {
		response.Error(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid task: %s", req.Task))
		return
	}

	gen, err := h.research.ExecuteTask(ctx, task, req.Prompt, req.Provider, req.Model)
	switch {
	case errors.Is(err, providers.ErrUnknownProvider), errors.Is(err, providers.ErrNotConfigured):
		response.Error(w, r, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		zerolog.Ctx(ctx).Error().Err(err).Str("task", req.Task).Msg("task execution failed")
		response.Error(w, r, http.StatusInternalServerError, fmt.Sprintf("Task execution failed: %v", err))
		return
	}
	response.JSON(w, r, http.StatusOK, adapters.MapGenerationToAPI(gen))
}

func writeConfigError(w http.ResponseWriter, r *http.Request, err error) {
	var cfgErr *research.ConfigError
	if errors.As(err, &cfgErr) {
		response.Error(w, r, http.StatusBadRequest, cfgErr.Detail)
		return
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("workflow configuration failed")
	response.Error(w, r, http.StatusInternalServerError, "Workflow configuration failed")
}
