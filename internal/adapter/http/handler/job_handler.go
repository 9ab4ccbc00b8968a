package handler

import (
	"errors"
	"io"

	"meli-reconciler/internal/adapter/http/dto"
	"meli-reconciler/internal/core/domain"
	"meli-reconciler/internal/core/ports"
	"meli-reconciler/pkg/apperror"
	"meli-reconciler/pkg/response"

	"github.com/gin-gonic/gin"
)

// JobHandler runs batch correction jobs on demand.
type JobHandler struct {
	jobs ports.JobService
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(jobs ports.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// Run handles POST /api/jobs/:job. The body is optional.
func (h *JobHandler) Run(c *gin.Context) {
	var uri dto.RunJobURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, apperror.ErrUnknownJob(c.Param("job")))
		return
	}
	job, ok := domain.ParseJobName(uri.Job)
	if !ok {
		response.Error(c, apperror.ErrUnknownJob(uri.Job))
		return
	}

	var req dto.RunJobRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	var params ports.JobParams
	if req.From != "" {
		from, err := dto.ParseDay(req.From)
		if err != nil {
			response.Error(c, apperror.Validation("from must be YYYY-MM-DD"))
			return
		}
		params.From = &from
	}

	report, err := h.jobs.Run(c.Request.Context(), job, params)
	if err != nil {
		response.Error(c, asAppError(err, func(err error) *apperror.AppError {
			return apperror.ErrJobFailed(string(job), err)
		}))
		return
	}
	response.OK(c, toJobReportResponse(report))
}

func toJobReportResponse(r *domain.JobReport) dto.JobReportResponse {
	return dto.JobReportResponse{
		Job:         string(r.Job),
		Scanned:     r.Scanned,
		Updated:     r.Updated,
		Skipped:     r.Skipped,
		Failed:      r.Failed,
		MissingSKUs: r.MissingSKUs,
		DurationMS:  r.Duration.Milliseconds(),
	}
}
