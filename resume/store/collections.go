package store

import (
	"context"

	"resume-builder/resume/model"
)

type entity interface {
	EntityID() string
}

func updateByID[T entity](items []T, id string, apply func(*T)) {
	for i := range items {
		if items[i].EntityID() == id {
			apply(&items[i])
			return
		}
	}
}

func removeByID[T entity](items []T, id string) []T {
	for i := range items {
		if items[i].EntityID() == id {
			out := make([]T, 0, len(items)-1)
			out = append(out, items[:i]...)
			return append(out, items[i+1:]...)
		}
	}
	return items
}

func (s *Store) AddWorkExperience(ctx context.Context, w model.WorkExperience) error {
	if w.Bullets == nil {
		w.Bullets = []string{}
	}
	return s.mutate(ctx, func(st *State) {
		st.ResumeData.WorkExperience = append(st.ResumeData.WorkExperience, w)
	})
}

func (s *Store) UpdateWorkExperience(ctx context.Context, id string, patch model.WorkExperiencePatch) error {
	return s.mutate(ctx, func(st *State) {
		updateByID(st.ResumeData.WorkExperience, id, func(w *model.WorkExperience) { patch.ApplyTo(w) })
	})
}

func (s *Store) RemoveWorkExperience(ctx context.Context, id string) error {
	return s.mutate(ctx, func(st *State) {
		st.ResumeData.WorkExperience = removeByID(st.ResumeData.WorkExperience, id)
	})
}

func (s *Store) AddProject(ctx context.Context, p model.Project) error {
	if p.Technologies == nil {
		p.Technologies = []string{}
	}
	if p.Bullets == nil {
		p.Bullets = []string{}
	}
	return s.mutate(ctx, func(st *State) {
		st.ResumeData.Projects = append(st.ResumeData.Projects, p)
	})
}

func (s *Store) UpdateProject(ctx context.Context, id string, patch model.ProjectPatch) error {
	return s.mutate(ctx, func(st *State) {
		updateByID(st.ResumeData.Projects, id, func(p *model.Project) { patch.ApplyTo(p) })
	})
}

func (s *Store) RemoveProject(ctx context.Context, id string) error {
	return s.mutate(ctx, func(st *State) {
		st.ResumeData.Projects = removeByID(st.ResumeData.Projects, id)
	})
}

func (s *Store) AddEducation(ctx context.Context, e model.Education) error {
	if e.Achievements == nil {
		e.Achievements = []string{}
	}
	return s.mutate(ctx, func(st *State) {
		st.ResumeData.Education = append(st.ResumeData.Education, e)
	})
}

func (s *Store) UpdateEducation(ctx context.Context, id string, patch model.EducationPatch) error {
	return s.mutate(ctx, func(st *State) {
		updateByID(st.ResumeData.Education, id, func(e *model.Education) { patch.ApplyTo(e) })
	})
}

func (s *Store) RemoveEducation(ctx context.Context, id string) error {
	return s.mutate(ctx, func(st *State) {
		st.ResumeData.Education = removeByID(st.ResumeData.Education, id)
	})
}

func (s *Store) AddCertification(ctx context.Context, c model.Certification) error {
	return s.mutate(ctx, func(st *State) {
		st.ResumeData.Certifications = append(st.ResumeData.Certifications, c)
	})
}

func (s *Store) UpdateCertification(ctx context.Context, id string, patch model.CertificationPatch) error {
	return s.mutate(ctx, func(st *State) {
		updateByID(st.ResumeData.Certifications, id, func(c *model.Certification) { patch.ApplyTo(c) })
	})
}

func (s *Store) RemoveCertification(ctx context.Context, id string) error {
	return s.mutate(ctx, func(st *State) {
		st.ResumeData.Certifications = removeByID(st.ResumeData.Certifications, id)
	})
}
