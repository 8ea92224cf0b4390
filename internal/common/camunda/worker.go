// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	apperrors "scheme-assistant/internal/common/errors"
	"scheme-assistant/internal/common/logger"
	"scheme-assistant/internal/common/metrics"
	"scheme-assistant/internal/common/validation"
)

type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// Worker is one open job subscription.
type Worker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// Open subscribes handler to taskType. Every job is counted and timed.
func Open(client zbc.Client, taskType string, maxJobsActive int, timeout time.Duration, handler JobHandler, log logger.Logger) *Worker {
	builder := client.NewJobWorker().
		JobType(taskType).
		Handler(func(client worker.JobClient, job entities.Job) {
			metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
			start := time.Now()
			defer func() {
				metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
				metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
			}()
			handler.Handle(client, job)
		}).
		MaxJobsActive(maxJobsActive)
	if timeout > 0 {
		builder = builder.Timeout(timeout)
	}

	w := &Worker{
		worker:   builder.Open(),
		logger:   log.WithFields(map[string]interface{}{"taskType": taskType}),
		taskType: taskType,
	}
	w.logger.Info("worker started", nil)
	return w
}

func (w *Worker) TaskType() string { return w.taskType }

func (w *Worker) Close() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}

// DecodeVariables validates the job variables against schema and decodes
// them into v. Failures carry INVALID_TURN_INPUT so the process can route
// around them.
func DecodeVariables(job entities.Job, schema *validation.Schema, v interface{}) error {
	raw := []byte(job.Variables)
	if schema != nil {
		res, err := schema.ValidateBytes(raw)
		if err != nil {
			return apperrors.NewInvalidTurnInputError(fmt.Sprintf("parse variables: %v", err))
		}
		if err := res.Err(); err != nil {
			return apperrors.NewInvalidTurnInputError(err.Error())
		}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return apperrors.NewInvalidTurnInputError(fmt.Sprintf("parse variables: %v", err))
	}
	return nil
}

// Complete sends the job's output variables.
func Complete(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("create complete job command: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("send complete job command: %w", err)
	}
	return nil
}

// Finish completes the job or hands err to the error handler, and updates
// the worker counters either way.
func Finish(client worker.JobClient, job entities.Job, output interface{}, err error, errs *apperrors.ErrorHandler, log logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err != nil {
		bpmnErr := errs.HandleJobError(ctx, client, job, err)
		metrics.WorkerJobsFailed.WithLabelValues(job.Type, bpmnErr.Code).Inc()
		return
	}

	if err := Complete(ctx, client, job, output); err != nil {
		log.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(job.Type).Inc()
	log.Info("job completed", map[string]interface{}{"jobKey": job.Key})
}
