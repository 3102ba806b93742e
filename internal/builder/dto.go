package builder

import (
	"resume-builder/resume/model"
	"resume-builder/resume/render"
	"resume-builder/resume/store"
)

type summaryRequest struct {
	Summary *string `json:"summary" validate:"required"`
}

type templateRequest struct {
	Template string `json:"template" validate:"required,max=64"`
}

type stepRequest struct {
	Step string `json:"step" validate:"required,oneof=personal summary skills experience projects education certifications"`
}

type atsRequest struct {
	TargetRole string `json:"targetRole" validate:"max=200"`
}

type createdResponse struct {
	ID string `json:"id"`
	resumeResponse
}

// resumeResponse is the persisted state plus values the UI derives from it.
type resumeResponse struct {
	store.State
	Progress         float64          `json:"progress"`
	StepLabel        string           `json:"stepLabel"`
	RenderedTemplate model.TemplateID `json:"renderedTemplate"`
}

func newResumeResponse(state store.State) resumeResponse {
	return resumeResponse{
		State:            state,
		Progress:         model.Progress(state.CurrentStep),
		StepLabel:        state.CurrentStep.Label(),
		RenderedTemplate: render.Resolve(state.SelectedTemplate),
	}
}
