package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

const sampleQuestionnaire = `{
  "groups": [
    {"id": "g1", "title": "One", "steps": [{"id": "s1"}, {"id": "s2"}]},
    {"id": "g2", "title": "Two", "steps": [{"id": "s3"}]}
  ],
  "steps": {
    "s3": {"id": "s3", "title": "Third", "fields": []},
    "s1": {
      "id": "s1", "key": "intro", "title": "First",
      "fields": [{"name": "age", "label": "Age", "type": "number", "required": true}],
      "traversal": [{"when": {"all": [{"lt": ["age", 6]}]}, "go": {"type": "step", "id": "s3"}}],
      "fallbackNext": {"type": "step", "id": "s2"}
    },
    "s2": {"id": "s2", "title": "Second", "fields": []}
  }
}`

func TestStepTable_PreservesDocumentOrder(t *testing.T) {
	var q Questionnaire
	if err := json.Unmarshal([]byte(sampleQuestionnaire), &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := []string{"s3", "s1", "s2"}
	if got := q.Steps.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}

	out, err := json.Marshal(q.Steps)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(out)
	if !(strings.Index(s, `"s3"`) < strings.Index(s, `"s1"`) && strings.Index(s, `"s1"`) < strings.Index(s, `"s2"`)) {
		t.Errorf("marshalled order changed: %s", s)
	}
}

func TestStepTable_DuplicateKeyKeepsFirstPosition(t *testing.T) {
	var table StepTable
	data := `{"a":{"id":"a","title":"old"},"b":{"id":"b"},"a":{"id":"a","title":"new"}}`
	if err := json.Unmarshal([]byte(data), &table); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := table.Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("keys = %v", got)
	}
	step, _ := table.Get("a")
	if step.Title != "new" {
		t.Errorf("title = %q, want new", step.Title)
	}
}

func TestQuestionnaire_RoundTrip(t *testing.T) {
	var q Questionnaire
	if err := json.Unmarshal([]byte(sampleQuestionnaire), &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	first, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var again Questionnaire
	if err := json.Unmarshal(first, &again); err != nil {
		t.Fatalf("unmarshal again: %v", err)
	}
	second, err := json.Marshal(again)
	if err != nil {
		t.Fatalf("marshal again: %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("round trip not stable:\n%s\n%s", first, second)
	}

	s1, ok := again.Step("s1")
	if !ok {
		t.Fatal("s1 missing")
	}
	if s1.AnswerKey() != "intro" {
		t.Errorf("answer key = %q, want intro", s1.AnswerKey())
	}
	if s1.FallbackNext == nil || s1.FallbackNext.ID != "s2" {
		t.Errorf("fallbackNext = %+v", s1.FallbackNext)
	}
	if len(s1.Traversal) != 1 || !s1.Traversal[0].When.HasAll() {
		t.Errorf("traversal = %+v", s1.Traversal)
	}
}

func TestQuestionnaire_FirstStepID(t *testing.T) {
	q := Questionnaire{
		Groups: []Group{
			{ID: "g", Steps: []StepRef{{ID: "x"}, {ID: "y"}}},
			{ID: "h", Steps: []StepRef{{ID: "z"}}},
		},
	}
	id, ok := q.FirstStepID()
	if !ok || id != "x" {
		t.Errorf("FirstStepID() = %q, %v", id, ok)
	}

	headless := Questionnaire{
		Groups: []Group{
			{ID: "empty"},
			{ID: "g", Steps: []StepRef{{ID: "x"}}},
		},
	}
	if id, ok := headless.FirstStepID(); ok {
		t.Errorf("empty first group: FirstStepID() = %q, want no entry step", id)
	}

	var empty Questionnaire
	if _, ok := empty.FirstStepID(); ok {
		t.Error("empty questionnaire should have no first step")
	}
}

func TestNewQuestionnaire(t *testing.T) {
	q := NewQuestionnaire()
	id, ok := q.FirstStepID()
	if !ok || id != "welcome-step" {
		t.Fatalf("FirstStepID() = %q, %v", id, ok)
	}
	step, ok := q.Step(id)
	if !ok {
		t.Fatal("welcome step missing from table")
	}
	if step.AnswerKey() != "welcome" {
		t.Errorf("answer key = %q", step.AnswerKey())
	}
	f, ok := step.Field("name")
	if !ok || !f.Required || f.Type != FieldTypeText {
		t.Errorf("name field = %+v", f)
	}
}

func TestFieldType_IsValid(t *testing.T) {
	for _, ft := range FieldTypes {
		if !ft.IsValid() {
			t.Errorf("%s should be valid", ft)
		}
	}
	if FieldType("slider").IsValid() {
		t.Error("slider should not be valid")
	}
}
