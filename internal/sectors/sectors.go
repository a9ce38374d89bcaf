package sectors

import "sort"

// Config holds the regulatory metadata for one sector.
// Static configuration; consumed read-only by prompt building and analysis.
type Config struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	FullName         string   `json:"fullName"`
	Authority        string   `json:"authority"`
	KeyAreas         []string `json:"keyAreas"`
	Regulations      []string `json:"regulations"`
	Authorities      []string `json:"authorities"`
	SuggestedPrompts []string `json:"suggestedPrompts"`
}

var catalog = map[string]Config{
	"ndis": {
		ID:        "ndis",
		Name:      "NDIS",
		FullName:  "NDIS Practice Standards",
		Authority: "NDIS Quality and Safeguards Commission",
		KeyAreas: []string{
			"Rights and Responsibilities",
			"Governance and Operational Management",
			"Provision of Supports",
			"Support Provision Environment",
			"Worker Screening",
			"Incident Management",
			"Complaints Management",
			"Restrictive Practices",
		},
		Regulations: []string{
			"NDIS Act 2013",
			"NDIS Practice Standards",
			"NDIS Code of Conduct",
			"NDIS Quality and Safeguards Framework",
			"Worker Screening Requirements",
		},
		Authorities: []string{"NDIS Quality and Safeguards Commission", "NDIA"},
		SuggestedPrompts: []string{
			"What are the NDIS Practice Standards?",
			"Explain worker screening requirements",
			"What are reportable incidents under NDIS?",
			"How do I manage restrictive practices?",
		},
	},
	"transport": {
		ID:        "transport",
		Name:      "Transport",
		FullName:  "Heavy Vehicle National Law (HVNL)",
		Authority: "National Heavy Vehicle Regulator (NHVR)",
		KeyAreas: []string{
			"Chain of Responsibility",
			"Fatigue Management",
			"Speed Compliance",
			"Mass & Loading",
			"Vehicle Standards",
			"Driver Competency",
			"Journey Management",
			"Record Keeping",
		},
		Regulations: []string{
			"Heavy Vehicle National Law (HVNL)",
			"Chain of Responsibility (CoR)",
			"Fatigue Management Standards",
			"Work Diary Requirements",
			"Mass, Dimension and Loading Requirements",
			"National Heavy Vehicle Accreditation Scheme (NHVAS)",
		},
		Authorities: []string{"National Heavy Vehicle Regulator (NHVR)", "Main Roads WA", "Transport WA"},
		SuggestedPrompts: []string{
			"Explain driver fatigue management requirements",
			"What are my CoR obligations as a consignor?",
			"How do I maintain NHVAS accreditation?",
			"What records must I keep for work diaries?",
		},
	},
	"healthcare": {
		ID:        "healthcare",
		Name:      "Healthcare",
		FullName:  "National Safety and Quality Health Service Standards",
		Authority: "Australian Commission on Safety and Quality in Health Care",
		KeyAreas: []string{
			"Clinical Governance",
			"Partnering with Consumers",
			"Infection Prevention",
			"Medication Safety",
			"Patient Identification",
			"Clinical Handover",
			"Blood Management",
			"Recognising Deterioration",
		},
		Regulations: []string{
			"Health Practitioner Regulation National Law",
			"Australian Health Service Safety and Quality Standards",
			"Private Health Facilities Act",
			"Medicines and Poisons Act",
		},
		Authorities: []string{"AHPRA", "Australian Commission on Safety and Quality in Health Care", "WA Department of Health"},
		SuggestedPrompts: []string{
			"What clinical governance requirements apply?",
			"How do I manage medication compliance?",
			"Explain infection control standards",
			"What patient safety incidents must be reported?",
		},
	},
	"aged_care": {
		ID:        "aged_care",
		Name:      "Aged Care",
		FullName:  "Aged Care Quality Standards",
		Authority: "Aged Care Quality and Safety Commission",
		KeyAreas: []string{
			"Consumer Dignity and Choice",
			"Ongoing Assessment and Planning",
			"Personal Care and Clinical Care",
			"Services and Supports",
			"Organisation Service Environment",
			"Feedback and Complaints",
			"Human Resources",
			"Organisational Governance",
		},
		Regulations: []string{
			"Aged Care Act 1997",
			"Aged Care Quality Standards",
			"Serious Incident Response Scheme (SIRS)",
		},
		Authorities: []string{"Aged Care Quality and Safety Commission", "Department of Health and Aged Care"},
		SuggestedPrompts: []string{
			"Explain the 8 Aged Care Quality Standards",
			"What incidents must be reported to SIRS?",
			"What are the care minute requirements?",
			"How do I manage restraint compliance?",
		},
	},
	"workplace": {
		ID:        "workplace",
		Name:      "Workplace Safety",
		FullName:  "Work Health and Safety Act & Regulations",
		Authority: "WorkSafe / SafeWork Australia",
		KeyAreas: []string{
			"PCBU Duties",
			"Risk Management",
			"Consultation",
			"Training & Competency",
			"Incident Notification",
			"Hazardous Work",
			"Emergency Procedures",
			"Worker Health Monitoring",
		},
		Regulations: []string{
			"Work Health and Safety Act 2020 (WA)",
			"WHS Regulations",
			"Codes of Practice",
			"Fair Work Act",
		},
		Authorities: []string{"WorkSafe WA", "Fair Work Commission", "Fair Work Ombudsman"},
		SuggestedPrompts: []string{
			"What are PCBU duties under WHS?",
			"How do I conduct a risk assessment?",
			"What incidents must be notified to WorkSafe?",
			"Explain psychosocial hazard requirements",
		},
	},
	"construction": {
		ID:        "construction",
		Name:      "Construction",
		FullName:  "WHS Regulations - Construction Work",
		Authority: "WorkSafe",
		KeyAreas: []string{
			"Safe Work Method Statements",
			"Principal Contractor Duties",
			"High Risk Work Licensing",
			"Working at Heights",
			"Excavation Safety",
			"Asbestos Management",
			"Electrical Safety",
			"Plant & Equipment",
		},
		Regulations: []string{
			"WHS Regulations - Construction Work",
			"Building Act 2011 (WA)",
			"High Risk Work Licensing",
		},
		Authorities: []string{"WorkSafe WA", "Building and Energy WA"},
		SuggestedPrompts: []string{
			"When do I need a SWMS?",
			"What are principal contractor obligations?",
			"Explain high risk work licensing",
			"What asbestos requirements apply?",
		},
	},
}

// Get returns the config for a sector id.
func Get(id string) (Config, bool) {
	c, ok := catalog[id]
	return c, ok
}

// IsValid reports whether the sector id exists in the catalog.
func IsValid(id string) bool {
	_, ok := catalog[id]
	return ok
}

// IDs returns all sector ids in stable order.
func IDs() []string {
	ids := make([]string, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns every sector config, ordered by id.
func All() []Config {
	out := make([]Config, 0, len(catalog))
	for _, id := range IDs() {
		out = append(out, catalog[id])
	}
	return out
}
