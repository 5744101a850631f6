package domain

import "time"

// Tracked output fields.
const (
	FieldAge                  = "Age_DOS"
	FieldBMI                  = "BMI"
	FieldSmokingStatus        = "SmokingStatus"
	FieldDiabetes             = "DiabetesMellitus"
	FieldHypertension         = "Hypertension"
	FieldCardiacDisease       = "CardiacDisease"
	FieldVTE                  = "VTE"
	FieldSteroidUse           = "SteroidUse"
	FieldCancerHistoryOther   = "CancerHistoryOther"
	FieldPBSLumpectomy        = "PBS_Lumpectomy"
	FieldPBSOther             = "PBS_Other"
	FieldMastectomyPerformed  = "Mastectomy_Performed"
	FieldMastectomyLaterality = "Mastectomy_Laterality"
	FieldMastectomyType       = "Mastectomy_Type"
	FieldRadiation            = "Radiation"
	FieldChemo                = "Chemo"
	FieldReconType            = "Recon_Type"
	FieldReconLaterality      = "Recon_Laterality"
	FieldReconTiming          = "Recon_Timing"
	FieldReconPerformed       = "Recon_Performed"
	FieldReconPlanned         = "Recon_Planned"
	FieldLymphNodeMgmt        = "LymphNodeMgmt"
	FieldLymphNodePerformed   = "LymphNodeMgmt_Performed"
	FieldReoperation          = "Stage1_Reoperation"
	FieldRehospitalization    = "Stage1_Rehospitalization"
	FieldFailure              = "Stage1_Failure"
)

// DefaultTrackedFields is the ordered list of fields a patient row carries.
func DefaultTrackedFields() []string {
	return []string{
		FieldAge,
		FieldBMI,
		FieldSmokingStatus,
		FieldDiabetes,
		FieldHypertension,
		FieldCardiacDisease,
		FieldVTE,
		FieldSteroidUse,
		FieldCancerHistoryOther,
		FieldPBSLumpectomy,
		FieldPBSOther,
		FieldMastectomyPerformed,
		FieldMastectomyLaterality,
		FieldMastectomyType,
		FieldRadiation,
		FieldChemo,
		FieldReconType,
		FieldReconLaterality,
		FieldReconTiming,
		FieldReconPerformed,
		FieldReconPlanned,
		FieldLymphNodeMgmt,
		FieldLymphNodePerformed,
		FieldReoperation,
		FieldRehospitalization,
		FieldFailure,
	}
}

// Candidate is one piece of evidence for one field from one note.
type Candidate struct {
	Field      string     `json:"field"`
	Value      FieldValue `json:"value"`
	Status     Status     `json:"status"`
	Evidence   string     `json:"evidence"`
	Section    string     `json:"section"`
	NoteType   NoteType   `json:"note_type"`
	NoteID     string     `json:"note_id"`
	NoteDate   string     `json:"note_date,omitempty"`
	Confidence float64    `json:"confidence"`
}

// ClampConfidence bounds c to [0,1].
func ClampConfidence(c float64) float64 {
	switch {
	case c != c, c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}

// ResolvedField is the single chosen answer for one field of one patient.
type ResolvedField struct {
	Field    string     `json:"field"`
	Value    FieldValue `json:"value"`
	Status   Status     `json:"status"`
	Evidence string     `json:"evidence"`
	Section  string     `json:"section"`
	NoteType NoteType   `json:"note_type"`
	NoteID   string     `json:"note_id"`
	NoteDate string     `json:"note_date,omitempty"`
	Rule     string     `json:"rule"`
}

// Resolution is a persisted ResolvedField.
type Resolution struct {
	ResolvedField
	PatientID  string    `json:"patient_id"`
	ResolvedAt time.Time `json:"resolved_at"`
}
