package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskSegmentsRebuild = "segments.rebuild"

const TaskSegmentsRebuildAll = "segments.rebuild_all"

type SegmentsRebuildPayload struct {
	OrganizationID string `json:"organizationId"`
}

func NewSegmentsRebuildTask(payload SegmentsRebuildPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSegmentsRebuild, data), nil
}

func ParseSegmentsRebuildPayload(task *asynq.Task) (SegmentsRebuildPayload, error) {
	var payload SegmentsRebuildPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SegmentsRebuildPayload{}, err
	}
	return payload, nil
}

// NewSegmentsRebuildAllTask sweeps every organization that has segments.
func NewSegmentsRebuildAllTask() *asynq.Task {
	return asynq.NewTask(TaskSegmentsRebuildAll, nil)
}

// segmentsRebuildTaskID is shared by all pending rebuilds of one organization,
// so a burst of lead changes collapses into a single task.
func segmentsRebuildTaskID(organizationID string) string {
	return TaskSegmentsRebuild + ":" + organizationID
}
