package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SlotCode identifies a single required-document requirement. Codes are a
// closed enumeration; which codes an incident carries is fully determined by
// its category.
type SlotCode string

const (
	SlotPoliceReport             SlotCode = "POLICE_REPORT"
	SlotCourtRecords             SlotCode = "COURT_RECORDS"
	SlotSupervisionProof         SlotCode = "SUPERVISION_PROOF"
	SlotPaymentProof             SlotCode = "PAYMENT_PROOF"
	SlotRecordsUnavailableLetter SlotCode = "RECORDS_UNAVAILABLE_LETTER"
	SlotDisciplinaryOrder        SlotCode = "DISCIPLINARY_ORDER"
	SlotReinstatementLetter      SlotCode = "REINSTATEMENT_LETTER"
	SlotJudgmentRecords          SlotCode = "JUDGMENT_RECORDS"
	SlotLienDocument             SlotCode = "LIEN_DOCUMENT"
	SlotBankruptcyPetition       SlotCode = "BANKRUPTCY_PETITION"
	SlotDischargeOrder           SlotCode = "DISCHARGE_ORDER"
	SlotNarrativeUploadOption    SlotCode = "NARRATIVE_UPLOAD_OPTION"
)

// SlotStatus is the slot lifecycle state.
type SlotStatus string

const (
	SlotStatusMissing  SlotStatus = "missing"
	SlotStatusUploaded SlotStatus = "uploaded"
	SlotStatusWaived   SlotStatus = "waived"
)

// DocumentSlot is a required-document requirement attached to an incident.
// Slots are created in "missing" status and are never deleted when their
// incident is archived.
type DocumentSlot struct {
	ID          string     `gorm:"type:char(36);primaryKey"`
	IncidentID  string     `gorm:"type:char(36);not null;index;uniqueIndex:idx_slot_incident_code,priority:1"`
	SlotCode    SlotCode   `gorm:"size:64;not null;uniqueIndex:idx_slot_incident_code,priority:2"`
	Required    bool       `gorm:"not null;default:true"`
	Status      SlotStatus `gorm:"size:16;not null;default:missing"`
	WaiveReason string     `gorm:"size:512"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Files       []UploadedFile `gorm:"foreignKey:SlotID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// BeforeCreate assigns a uuid primary key when none was provided.
func (s *DocumentSlot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name for DocumentSlot
func (DocumentSlot) TableName() string {
	return "document_slots"
}
