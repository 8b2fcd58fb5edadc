package catalog

import (
	"creditcounter/internal/syllabus"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalize(t *testing.T) {
	records := []syllabus.SubjectRecord{
		{ID: "J-2025-0", Name: "英語演習ⅠＡ", RequirementText: "必修", Requirement: syllabus.REQUIREMENT_REQUIRED},
		{ID: "J-2025-1", Name: "", RequirementText: "選択", Requirement: syllabus.REQUIREMENT_ELECTIVE},
		{ID: "J-2025-2", Name: "英語演習ⅠＡ", RequirementText: "必修", Requirement: syllabus.REQUIREMENT_REQUIRED},
		{ID: "J-2025-3", Name: "英語演習ⅠＢ", RequirementText: "選択 必修", Requirement: syllabus.REQUIREMENT_REQUIRED},
		{ID: "J-2025-4", Name: " 日本語Ⅰ ", RequirementText: "選択", Requirement: syllabus.REQUIREMENT_ELECTIVE},
		{ID: "J-2025-5", Name: "英語演習ⅠＢ", RequirementText: "必修", Requirement: syllabus.REQUIREMENT_REQUIRED},
	}

	expected := []syllabus.SubjectRecord{
		{ID: "J-2025-0", Name: "英語演習ⅠＡ", RequirementText: "必修", Requirement: syllabus.REQUIREMENT_REQUIRED},
		{ID: "J-2025-3", Name: "英語演習ⅠＢ", RequirementText: "選択必修", Requirement: syllabus.REQUIREMENT_REQUIRED},
		{ID: "J-2025-4", Name: "日本語Ⅰ", RequirementText: "必修（留学生）", Requirement: syllabus.REQUIREMENT_REQUIRED},
	}

	if diff := cmp.Diff(expected, Normalize(records)); diff != "" {
		t.Fatal(diff)
	}
}
