package model

// Document is the canonical resume aggregate. Every collection is always
// present; use Empty or Normalize to obtain a value that honours that.
type Document struct {
	PersonalDetails PersonalDetails  `json:"personalDetails" yaml:"personalDetails"`
	Summary         string           `json:"summary" yaml:"summary"`
	Skills          Skills           `json:"skills" yaml:"skills"`
	WorkExperience  []WorkExperience `json:"workExperience" yaml:"workExperience"`
	Projects        []Project        `json:"projects" yaml:"projects"`
	Education       []Education      `json:"education" yaml:"education"`
	Certifications  []Certification  `json:"certifications" yaml:"certifications"`
}

// PersonalDetails is the contact header of a resume.
type PersonalDetails struct {
	FullName string `json:"fullName" yaml:"fullName"`
	Email    string `json:"email" yaml:"email"`
	Phone    string `json:"phone" yaml:"phone"`
	Location string `json:"location" yaml:"location"`
	LinkedIn string `json:"linkedin,omitempty" yaml:"linkedin,omitempty"`
	Website  string `json:"website,omitempty" yaml:"website,omitempty"`
	GitHub   string `json:"github,omitempty" yaml:"github,omitempty"`
}

// Skills keeps technical and soft skills in display order. Duplicates are allowed.
type Skills struct {
	Technical []string `json:"technical" yaml:"technical"`
	Soft      []string `json:"soft" yaml:"soft"`
}

type WorkExperience struct {
	ID          string   `json:"id" yaml:"id"`
	Company     string   `json:"company" yaml:"company"`
	Position    string   `json:"position" yaml:"position"`
	Location    string   `json:"location" yaml:"location"`
	StartDate   string   `json:"startDate" yaml:"startDate"`
	EndDate     string   `json:"endDate" yaml:"endDate"`
	Current     bool     `json:"current" yaml:"current"`
	Description string   `json:"description" yaml:"description"`
	Bullets     []string `json:"bullets" yaml:"bullets"`
}

type Project struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description" yaml:"description"`
	Technologies []string `json:"technologies" yaml:"technologies"`
	Link         string   `json:"link,omitempty" yaml:"link,omitempty"`
	Bullets      []string `json:"bullets" yaml:"bullets"`
}

type Education struct {
	ID           string   `json:"id" yaml:"id"`
	Institution  string   `json:"institution" yaml:"institution"`
	Degree       string   `json:"degree" yaml:"degree"`
	Field        string   `json:"field" yaml:"field"`
	Location     string   `json:"location" yaml:"location"`
	StartDate    string   `json:"startDate" yaml:"startDate"`
	EndDate      string   `json:"endDate" yaml:"endDate"`
	GPA          string   `json:"gpa,omitempty" yaml:"gpa,omitempty"`
	Achievements []string `json:"achievements" yaml:"achievements"`
}

type Certification struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Issuer string `json:"issuer" yaml:"issuer"`
	Date   string `json:"date" yaml:"date"`
	Link   string `json:"link,omitempty" yaml:"link,omitempty"`
}

func (w WorkExperience) EntityID() string { return w.ID }
func (p Project) EntityID() string        { return p.ID }
func (e Education) EntityID() string      { return e.ID }
func (c Certification) EntityID() string  { return c.ID }

// Empty returns the initial document: blank scalars and empty, non-nil collections.
func Empty() Document {
	return Document{
		Skills: Skills{
			Technical: []string{},
			Soft:      []string{},
		},
		WorkExperience: []WorkExperience{},
		Projects:       []Project{},
		Education:      []Education{},
		Certifications: []Certification{},
	}
}

// Normalize replaces nil collections with empty ones, including the lists
// nested in entities. It is applied to documents decoded from outside.
func (d Document) Normalize() Document {
	d.Skills.Technical = nonNil(d.Skills.Technical)
	d.Skills.Soft = nonNil(d.Skills.Soft)
	if d.WorkExperience == nil {
		d.WorkExperience = []WorkExperience{}
	}
	for i := range d.WorkExperience {
		d.WorkExperience[i].Bullets = nonNil(d.WorkExperience[i].Bullets)
	}
	if d.Projects == nil {
		d.Projects = []Project{}
	}
	for i := range d.Projects {
		d.Projects[i].Technologies = nonNil(d.Projects[i].Technologies)
		d.Projects[i].Bullets = nonNil(d.Projects[i].Bullets)
	}
	if d.Education == nil {
		d.Education = []Education{}
	}
	for i := range d.Education {
		d.Education[i].Achievements = nonNil(d.Education[i].Achievements)
	}
	if d.Certifications == nil {
		d.Certifications = []Certification{}
	}
	return d
}

// Clone returns a deep copy so callers never share backing arrays with the original.
func (d Document) Clone() Document {
	out := d
	out.Skills.Technical = cloneStrings(d.Skills.Technical)
	out.Skills.Soft = cloneStrings(d.Skills.Soft)

	out.WorkExperience = make([]WorkExperience, len(d.WorkExperience))
	for i, w := range d.WorkExperience {
		w.Bullets = cloneStrings(w.Bullets)
		out.WorkExperience[i] = w
	}
	out.Projects = make([]Project, len(d.Projects))
	for i, p := range d.Projects {
		p.Technologies = cloneStrings(p.Technologies)
		p.Bullets = cloneStrings(p.Bullets)
		out.Projects[i] = p
	}
	out.Education = make([]Education, len(d.Education))
	for i, e := range d.Education {
		if e.Achievements != nil {
			e.Achievements = cloneStrings(e.Achievements)
		}
		out.Education[i] = e
	}
	out.Certifications = append([]Certification{}, d.Certifications...)
	return out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string{}, in...)
}
