package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type GenerationState string

const (
	GenerationIdle                      GenerationState = "IDLE"
	GenerationSubmitting                GenerationState = "SUBMITTING"
	GenerationAwaitingProjectAssignment GenerationState = "AWAITING_PROJECT_ASSIGNMENT"
	GenerationDone                      GenerationState = "DONE"
	GenerationFailed                    GenerationState = "FAILED"
)

var generationTransitions = map[GenerationState][]GenerationState{
	GenerationIdle:                      {GenerationSubmitting},
	GenerationSubmitting:                {GenerationAwaitingProjectAssignment, GenerationDone, GenerationFailed},
	GenerationAwaitingProjectAssignment: {GenerationDone, GenerationFailed},
}

func (s GenerationState) IsFinal() bool {
	return s == GenerationDone || s == GenerationFailed
}

type GenerationAttachment struct {
	URL      string `json:"url"`
	Name     string `json:"name,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

// GenerationRecord is one submitted prompt and what became of it.
type GenerationRecord struct {
	Id               uuid.UUID
	Identity         string
	Prompt           string
	ModelId          string
	ImageGenerations bool
	Thinking         bool
	Attachments      []GenerationAttachment
	IsFreshChat      bool
	ChatId           string
	ProjectId        string
	State            GenerationState
	LatestStatus     string
	DemoUrl          string
	ErrorKind        string
	ErrorMessage     string
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}

// Transition moves the record along IDLE -> SUBMITTING -> [AWAITING_PROJECT_ASSIGNMENT] -> DONE | FAILED.
func (r *GenerationRecord) Transition(to GenerationState) error {
	for _, allowed := range generationTransitions[r.State] {
		if allowed == to {
			r.State = to
			return nil
		}
	}
	return fmt.Errorf("invalid generation transition %s -> %s", r.State, to)
}
