package models

import (
	"bytes"
	"encoding/json"
)

// OptionalString различает три состояния поля PATCH: не передано, null и значение.
type OptionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON вызывается только для присутствующего в теле поля.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// SetString - удобный конструктор для тестов и сидов.
func SetString(v string) OptionalString {
	return OptionalString{Set: true, Value: &v}
}

// ReportUpdate - частичное изменение обращения сотрудником.
// Незаданные поля остаются без изменений.
type ReportUpdate struct {
	Status           *ReportStatus
	Priority         *ReportPriority
	OfficialResponse OptionalString
	ActionTaken      OptionalString
}

// IsEmpty сообщает, что обновление ничего не меняет.
func (u ReportUpdate) IsEmpty() bool {
	return u.Status == nil && u.Priority == nil && !u.OfficialResponse.Set && !u.ActionTaken.Set
}

// ReportFilter - условия публичного поиска. nil означает "все".
type ReportFilter struct {
	Search   string
	Status   *ReportStatus
	Priority *ReportPriority
}
