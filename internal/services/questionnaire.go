package services

import (
	"github.com/caseworks/licensure-materials/internal/models"
	"github.com/caseworks/licensure-materials/internal/types"
)

// DisclosureAnswers is the raw questionnaire payload. The six tracked
// questions form a closed set; handlers decode strictly so unknown keys are
// rejected rather than silently dropped. FlexBool normalizes the web form's
// boolean-ish values — anything that is not an exact truthy sentinel reads
// as false.
type DisclosureAnswers struct {
	PriorDiscipline    types.FlexBool `json:"prior_discipline"`
	PendingMatters     types.FlexBool `json:"pending_matters"`
	Misdemeanor10Yr    types.FlexBool `json:"misdemeanor_10yr"`
	FelonyEver         types.FlexBool `json:"felony_ever"`
	FinancialJudgments types.FlexBool `json:"financial_judgments"`
	Bankruptcy7Yr      types.FlexBool `json:"bankruptcy_7yr"`
}

// disclosureQuestion binds one questionnaire key to the incident it produces.
// The key doubles as the incident's source_key, which is what makes repeated
// recomputation idempotent.
type disclosureQuestion struct {
	Key      string
	Category models.IncidentCategory
	Subtype  string
	Answer   func(DisclosureAnswers) bool
}

var disclosureQuestions = []disclosureQuestion{
	{
		Key:      "prior_discipline",
		Category: models.CategoryDiscipline,
		Subtype:  "prior_discipline",
		Answer:   func(a DisclosureAnswers) bool { return a.PriorDiscipline.Bool() },
	},
	{
		Key:      "pending_matters",
		Category: models.CategoryDiscipline,
		Subtype:  "pending_matter",
		Answer:   func(a DisclosureAnswers) bool { return a.PendingMatters.Bool() },
	},
	{
		Key:      "misdemeanor_10yr",
		Category: models.CategoryBackground,
		Subtype:  "misdemeanor",
		Answer:   func(a DisclosureAnswers) bool { return a.Misdemeanor10Yr.Bool() },
	},
	{
		Key:      "felony_ever",
		Category: models.CategoryBackground,
		Subtype:  "felony",
		Answer:   func(a DisclosureAnswers) bool { return a.FelonyEver.Bool() },
	},
	{
		Key:      "financial_judgments",
		Category: models.CategoryFinancial,
		Subtype:  "judgment",
		Answer:   func(a DisclosureAnswers) bool { return a.FinancialJudgments.Bool() },
	},
	{
		Key:      "bankruptcy_7yr",
		Category: models.CategoryBankruptcy,
		Subtype:  "chapter_filing",
		Answer:   func(a DisclosureAnswers) bool { return a.Bankruptcy7Yr.Bool() },
	},
}
