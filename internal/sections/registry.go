package sections

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/runnerr0/dataportal/internal/listview"
	"github.com/runnerr0/dataportal/internal/portal"
)

// ErrUnknownSection is returned by Lookup for an unregistered key.
var ErrUnknownSection = errors.New("unknown section")

const (
	icsrBase     = "/api/industry-connect/icsr"
	conclaveBase = "/api/industry-connect/conclave"
	researchBase = "/api/research-module"
)

func field(name, label, optionsKey string) listview.Field {
	return listview.Field{Name: name, Label: label, Default: portal.All, OptionsKey: optionsKey}
}

var searchField = listview.Field{Name: listview.SearchField, Label: "Search"}

func count(n int) string { return humanize.Comma(int64(n)) }

var ICSR = &Section[portal.IndustryEvent]{
	Info: Info{
		Key:          "icsr",
		Title:        "Industry events (ICSR)",
		ListPath:     icsrBase + "/events",
		SummaryPath:  icsrBase + "/summary",
		OptionsPath:  icsrBase + "/filter-options",
		DefaultError: "Failed to fetch events",
		GroupLabel:   "Event type",
		Filters: []listview.Field{
			field("event_type", "Event type", "event_types"),
			field("department", "Department", "departments"),
			field("year", "Year", "years"),
			searchField,
		},
		Charts: []Chart{
			{Title: "Events per year", Path: icsrBase + "/yearly-distribution"},
			{Title: "Events by type", Path: icsrBase + "/event-types"},
		},
	},
	Columns: []Column[portal.IndustryEvent]{
		{"Event", func(e portal.IndustryEvent) string { return e.Name }},
		{"Type", func(e portal.IndustryEvent) string { return e.EventType }},
		{"Department", func(e portal.IndustryEvent) string { return e.Department }},
		{"Company", func(e portal.IndustryEvent) string { return e.Company }},
		{"Date", func(e portal.IndustryEvent) string { return e.Date }},
		{"Participants", func(e portal.IndustryEvent) string { return count(e.Participants) }},
	},
	GroupBy: func(e portal.IndustryEvent) string { return e.EventType },
}

var Conclaves = &Section[portal.Conclave]{
	Info: Info{
		Key:          "conclave",
		Title:        "Conclaves",
		ListPath:     conclaveBase + "/list",
		SummaryPath:  conclaveBase + "/summary",
		DefaultError: "Failed to fetch conclaves",
		GroupLabel:   "Department",
		Filters: []listview.Field{
			field("department", "Department", "departments"),
			field("year", "Year", "years"),
			searchField,
		},
	},
	Columns: []Column[portal.Conclave]{
		{"Title", func(c portal.Conclave) string { return c.Title }},
		{"Department", func(c portal.Conclave) string { return c.Department }},
		{"Venue", func(c portal.Conclave) string { return c.Venue }},
		{"Date", func(c portal.Conclave) string { return c.Date }},
		{"Participants", func(c portal.Conclave) string { return count(c.Participants) }},
	},
	GroupBy: func(c portal.Conclave) string { return c.Department },
}

var Projects = &Section[portal.ResearchProject]{
	Info: Info{
		Key:          "projects",
		Title:        "Research projects",
		ListPath:     researchBase + "/projects/list",
		SummaryPath:  researchBase + "/summary",
		OptionsPath:  researchBase + "/filter-options",
		DefaultError: "Failed to fetch projects",
		GroupLabel:   "Funding agency",
		Filters: []listview.Field{
			field("department", "Department", "departments"),
			field("funding_agency", "Funding agency", "funding_agencies"),
			field("status", "Status", "statuses"),
			field("year", "Year", "years"),
			searchField,
		},
		Charts: []Chart{
			{Title: "Projects per year", Path: researchBase + "/projects/trend"},
			{Title: "Consultancy revenue", Path: researchBase + "/consultancy/revenue-trend"},
		},
	},
	Columns: []Column[portal.ResearchProject]{
		{"Title", func(p portal.ResearchProject) string { return p.Title }},
		{"PI", func(p portal.ResearchProject) string { return p.PrincipalInvestigator }},
		{"Department", func(p portal.ResearchProject) string { return p.Department }},
		{"Agency", func(p portal.ResearchProject) string { return p.FundingAgency }},
		{"Amount", func(p portal.ResearchProject) string { return humanize.CommafWithDigits(p.Amount, 2) }},
		{"Status", func(p portal.ResearchProject) string { return p.Status }},
	},
	GroupBy: func(p portal.ResearchProject) string { return p.FundingAgency },
}

var MoUs = &Section[portal.MoU]{
	Info: Info{
		Key:          "mous",
		Title:        "MoUs",
		ListPath:     researchBase + "/mous/list",
		SummaryPath:  researchBase + "/summary",
		OptionsPath:  researchBase + "/filter-options",
		DefaultError: "Failed to fetch MoUs",
		GroupLabel:   "Department",
		Filters: []listview.Field{
			field("department", "Department", "departments"),
			searchField,
		},
	},
	Columns: []Column[portal.MoU]{
		{"Organization", func(m portal.MoU) string { return m.Organization }},
		{"Department", func(m portal.MoU) string { return m.Department }},
		{"Purpose", func(m portal.MoU) string { return m.Purpose }},
		{"Signed", func(m portal.MoU) string { return m.SignedOn }},
		{"Valid until", func(m portal.MoU) string { return m.ValidUntil }},
	},
	GroupBy: func(m portal.MoU) string { return m.Department },
}

var Patents = &Section[portal.Patent]{
	Info: Info{
		Key:          "patents",
		Title:        "Patents",
		ListPath:     researchBase + "/patents/list",
		SummaryPath:  researchBase + "/patents/stats",
		OptionsPath:  researchBase + "/filter-options",
		DefaultError: "Failed to fetch patents",
		GroupLabel:   "Status",
		Filters: []listview.Field{
			field("department", "Department", "departments"),
			field("status", "Status", "patent_statuses"),
			searchField,
		},
	},
	Columns: []Column[portal.Patent]{
		{"Title", func(p portal.Patent) string { return p.Title }},
		{"Inventors", func(p portal.Patent) string { return p.Inventors }},
		{"Department", func(p portal.Patent) string { return p.Department }},
		{"Application", func(p portal.Patent) string { return p.ApplicationNumber }},
		{"Filed", func(p portal.Patent) string { return p.FiledOn }},
		{"Status", func(p portal.Patent) string { return p.Status }},
	},
	GroupBy: func(p portal.Patent) string { return p.Status },
}

var Externships = &Section[portal.Externship]{
	Info: Info{
		Key:          "externships",
		Title:        "Externships",
		ListPath:     researchBase + "/externships/list",
		SummaryPath:  researchBase + "/externships/summary",
		OptionsPath:  researchBase + "/filter-options",
		DefaultError: "Failed to fetch externships",
		GroupLabel:   "Department",
		Filters: []listview.Field{
			field("department", "Department", "departments"),
			field("year", "Year", "years"),
			searchField,
		},
	},
	Columns: []Column[portal.Externship]{
		{"Faculty", func(e portal.Externship) string { return e.FacultyName }},
		{"Department", func(e portal.Externship) string { return e.Department }},
		{"Organization", func(e portal.Externship) string { return e.Organization }},
		{"From", func(e portal.Externship) string { return e.StartDate }},
		{"To", func(e portal.Externship) string { return e.EndDate }},
	},
	GroupBy: func(e portal.Externship) string { return e.Department },
}

var Publications = &Section[portal.Publication]{
	Info: Info{
		Key:          "publications",
		Title:        "Publications",
		ListPath:     researchBase + "/publications/list",
		SummaryPath:  researchBase + "/publications/summary",
		OptionsPath:  researchBase + "/filter-options",
		DefaultError: "Failed to fetch publications",
		GroupLabel:   "Publication type",
		Filters: []listview.Field{
			field("department", "Department", "departments"),
			field("publication_type", "Type", "publication_types"),
			field("year", "Year", "years"),
			searchField,
		},
		Charts: []Chart{
			{Title: "Publications per year", Path: researchBase + "/publications/trend"},
			{Title: "Publications by department", Path: researchBase + "/publications/department"},
			{Title: "Publications by type", Path: researchBase + "/publications/type-distribution"},
		},
	},
	Columns: []Column[portal.Publication]{
		{"Title", func(p portal.Publication) string { return p.Title }},
		{"Authors", func(p portal.Publication) string { return p.Authors }},
		{"Department", func(p portal.Publication) string { return p.Department }},
		{"Type", func(p portal.Publication) string { return p.PublicationType }},
		{"Journal", func(p portal.Publication) string { return p.Journal }},
		{"Year", func(p portal.Publication) string { return p.Year }},
	},
	GroupBy: func(p portal.Publication) string { return p.PublicationType },
}

var registry = []Descriptor{ICSR, Conclaves, Projects, MoUs, Patents, Externships, Publications}

// All returns every section in display order.
func All() []Descriptor {
	out := make([]Descriptor, len(registry))
	copy(out, registry)
	return out
}

// Lookup finds a section by key.
func Lookup(key string) (Descriptor, error) {
	for _, d := range registry {
		if d.Describe().Key == key {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownSection, key)
}
