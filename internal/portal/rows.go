package portal

import "strconv"

// IndustryEvent is an industry-connect (ICSR) event.
type IndustryEvent struct {
	ID           int64  `json:"id"`
	Name         string `json:"event_name"`
	EventType    string `json:"event_type"`
	Department   string `json:"department"`
	Year         string `json:"year"`
	Date         string `json:"event_date"`
	Company      string `json:"company"`
	Participants int    `json:"participants"`
}

func (e IndustryEvent) Key() string { return strconv.FormatInt(e.ID, 10) }

// Conclave is an industry conclave.
type Conclave struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Department   string `json:"department"`
	Year         string `json:"year"`
	Venue        string `json:"venue"`
	Date         string `json:"conclave_date"`
	Participants int    `json:"participants"`
}

func (c Conclave) Key() string { return strconv.FormatInt(c.ID, 10) }

// ResearchProject is a funded research project.
type ResearchProject struct {
	ID                    int64   `json:"id"`
	Title                 string  `json:"title"`
	PrincipalInvestigator string  `json:"principal_investigator"`
	Department            string  `json:"department"`
	FundingAgency         string  `json:"funding_agency"`
	Amount                float64 `json:"amount"`
	Status                string  `json:"status"`
	Year                  string  `json:"year"`
}

func (p ResearchProject) Key() string { return strconv.FormatInt(p.ID, 10) }

// MoU is a memorandum of understanding with an outside organisation.
type MoU struct {
	ID           int64  `json:"id"`
	Organization string `json:"organization"`
	Department   string `json:"department"`
	Purpose      string `json:"purpose"`
	SignedOn     string `json:"signed_on"`
	ValidUntil   string `json:"valid_until"`
}

func (m MoU) Key() string { return strconv.FormatInt(m.ID, 10) }

type Patent struct {
	ID                int64  `json:"id"`
	Title             string `json:"title"`
	Inventors         string `json:"inventors"`
	Department        string `json:"department"`
	Status            string `json:"status"`
	ApplicationNumber string `json:"application_number"`
	FiledOn           string `json:"filed_on"`
}

func (p Patent) Key() string { return strconv.FormatInt(p.ID, 10) }

// Externship is a faculty externship placement.
type Externship struct {
	ID           int64  `json:"id"`
	FacultyName  string `json:"faculty_name"`
	Department   string `json:"department"`
	Organization string `json:"organization"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Year         string `json:"year"`
}

func (e Externship) Key() string { return strconv.FormatInt(e.ID, 10) }

type Publication struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Authors         string `json:"authors"`
	Department      string `json:"department"`
	PublicationType string `json:"publication_type"`
	Journal         string `json:"journal"`
	Indexing        string `json:"indexing"`
	Year            string `json:"year"`
}

func (p Publication) Key() string { return strconv.FormatInt(p.ID, 10) }
