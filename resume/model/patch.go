package model

// Patch types carry optional fields for shallow merges. A nil field means the
// caller did not supply it and the stored value is kept.

type PersonalDetailsPatch struct {
	FullName *string `json:"fullName,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Location *string `json:"location,omitempty"`
	LinkedIn *string `json:"linkedin,omitempty"`
	Website  *string `json:"website,omitempty"`
	GitHub   *string `json:"github,omitempty"`
}

func (p PersonalDetailsPatch) ApplyTo(d *PersonalDetails) {
	setString(&d.FullName, p.FullName)
	setString(&d.Email, p.Email)
	setString(&d.Phone, p.Phone)
	setString(&d.Location, p.Location)
	setString(&d.LinkedIn, p.LinkedIn)
	setString(&d.Website, p.Website)
	setString(&d.GitHub, p.GitHub)
}

type SkillsPatch struct {
	Technical *[]string `json:"technical,omitempty"`
	Soft      *[]string `json:"soft,omitempty"`
}

func (p SkillsPatch) ApplyTo(s *Skills) {
	setStrings(&s.Technical, p.Technical)
	setStrings(&s.Soft, p.Soft)
}

type WorkExperiencePatch struct {
	Company     *string   `json:"company,omitempty"`
	Position    *string   `json:"position,omitempty"`
	Location    *string   `json:"location,omitempty"`
	StartDate   *string   `json:"startDate,omitempty"`
	EndDate     *string   `json:"endDate,omitempty"`
	Current     *bool     `json:"current,omitempty"`
	Description *string   `json:"description,omitempty"`
	Bullets     *[]string `json:"bullets,omitempty"`
}

func (p WorkExperiencePatch) ApplyTo(w *WorkExperience) {
	setString(&w.Company, p.Company)
	setString(&w.Position, p.Position)
	setString(&w.Location, p.Location)
	setString(&w.StartDate, p.StartDate)
	setString(&w.EndDate, p.EndDate)
	if p.Current != nil {
		w.Current = *p.Current
	}
	setString(&w.Description, p.Description)
	setStrings(&w.Bullets, p.Bullets)
}

type ProjectPatch struct {
	Name         *string   `json:"name,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Technologies *[]string `json:"technologies,omitempty"`
	Link         *string   `json:"link,omitempty"`
	Bullets      *[]string `json:"bullets,omitempty"`
}

func (p ProjectPatch) ApplyTo(pr *Project) {
	setString(&pr.Name, p.Name)
	setString(&pr.Description, p.Description)
	setStrings(&pr.Technologies, p.Technologies)
	setString(&pr.Link, p.Link)
	setStrings(&pr.Bullets, p.Bullets)
}

type EducationPatch struct {
	Institution  *string   `json:"institution,omitempty"`
	Degree       *string   `json:"degree,omitempty"`
	Field        *string   `json:"field,omitempty"`
	Location     *string   `json:"location,omitempty"`
	StartDate    *string   `json:"startDate,omitempty"`
	EndDate      *string   `json:"endDate,omitempty"`
	GPA          *string   `json:"gpa,omitempty"`
	Achievements *[]string `json:"achievements,omitempty"`
}

func (p EducationPatch) ApplyTo(e *Education) {
	setString(&e.Institution, p.Institution)
	setString(&e.Degree, p.Degree)
	setString(&e.Field, p.Field)
	setString(&e.Location, p.Location)
	setString(&e.StartDate, p.StartDate)
	setString(&e.EndDate, p.EndDate)
	setString(&e.GPA, p.GPA)
	setStrings(&e.Achievements, p.Achievements)
}

type CertificationPatch struct {
	Name   *string `json:"name,omitempty"`
	Issuer *string `json:"issuer,omitempty"`
	Date   *string `json:"date,omitempty"`
	Link   *string `json:"link,omitempty"`
}

func (p CertificationPatch) ApplyTo(c *Certification) {
	setString(&c.Name, p.Name)
	setString(&c.Issuer, p.Issuer)
	setString(&c.Date, p.Date)
	setString(&c.Link, p.Link)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setStrings(dst *[]string, v *[]string) {
	if v == nil {
		return
	}
	if *v == nil {
		*dst = []string{}
		return
	}
	*dst = append([]string{}, (*v)...)
}
