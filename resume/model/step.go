package model

// BuilderStep is a form step of the builder wizard.
type BuilderStep string

const (
	StepPersonal       BuilderStep = "personal"
	StepSummary        BuilderStep = "summary"
	StepSkills         BuilderStep = "skills"
	StepExperience     BuilderStep = "experience"
	StepProjects       BuilderStep = "projects"
	StepEducation      BuilderStep = "education"
	StepCertifications BuilderStep = "certifications"
)

var steps = []BuilderStep{
	StepPersonal,
	StepSummary,
	StepSkills,
	StepExperience,
	StepProjects,
	StepEducation,
	StepCertifications,
}

var stepLabels = map[BuilderStep]string{
	StepPersonal:       "Personal",
	StepSummary:        "Summary",
	StepSkills:         "Skills",
	StepExperience:     "Experience",
	StepProjects:       "Projects",
	StepEducation:      "Education",
	StepCertifications: "Certifications",
}

// Steps returns the steps in wizard order.
func Steps() []BuilderStep {
	return append([]BuilderStep{}, steps...)
}

// FirstStep is the step a fresh or reset builder starts on.
func FirstStep() BuilderStep { return steps[0] }

// StepIndex returns the zero-based position of step, or -1 when unknown.
func StepIndex(step BuilderStep) int {
	for i, s := range steps {
		if s == step {
			return i
		}
	}
	return -1
}

// Valid reports whether step is one of the seven wizard steps.
func (s BuilderStep) Valid() bool { return StepIndex(s) >= 0 }

// Label is the display name for a step.
func (s BuilderStep) Label() string {
	if l, ok := stepLabels[s]; ok {
		return l
	}
	return string(s)
}

// Progress is the progress-bar percentage for step. Unknown steps report 0.
func Progress(step BuilderStep) float64 {
	idx := StepIndex(step)
	if idx < 0 {
		return 0
	}
	return float64(idx+1) / float64(len(steps)) * 100
}

// Next returns the step after s and false when s is the last or unknown.
func (s BuilderStep) Next() (BuilderStep, bool) {
	idx := StepIndex(s)
	if idx < 0 || idx+1 >= len(steps) {
		return s, false
	}
	return steps[idx+1], true
}

// Prev returns the step before s and false when s is the first or unknown.
func (s BuilderStep) Prev() (BuilderStep, bool) {
	idx := StepIndex(s)
	if idx <= 0 {
		return s, false
	}
	return steps[idx-1], true
}
