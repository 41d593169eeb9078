// Package seed описывает демонстрационные данные и читает их из YAML.
package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed reports.yaml
var defaultFixtures []byte

// UserFixture - гражданин из справочника.
type UserFixture struct {
	Email string  `yaml:"email"`
	Name  *string `yaml:"name"`
}

// ReportFixture - обращение, которое проходит обычный приём, а затем модерацию.
type ReportFixture struct {
	Location          string  `yaml:"location"`
	Coordinates       *string `yaml:"coordinates"`
	IssueType         string  `yaml:"issueType"`
	Description       string  `yaml:"description"`
	Priority          string  `yaml:"priority"`
	Name              *string `yaml:"name"`
	Email             *string `yaml:"email"`
	Anonymous         bool    `yaml:"anonymous"`
	ContactForUpdates *bool   `yaml:"contactForUpdates"`

	Status           string  `yaml:"status"`
	OfficialResponse *string `yaml:"officialResponse"`
	ActionTaken      *string `yaml:"actionTaken"`
}

// Fixtures - содержимое файла сидов.
type Fixtures struct {
	Users   []UserFixture   `yaml:"users"`
	Reports []ReportFixture `yaml:"reports"`
}

// Default возвращает встроенный набор данных.
func Default() (*Fixtures, error) {
	return Parse(defaultFixtures)
}

// Load читает фикстуры из файла.
func Load(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: не удалось прочитать %s: %w", path, err)
	}
	return Parse(data)
}

// Parse разбирает YAML. Неизвестные ключи считаются ошибкой.
func Parse(data []byte) (*Fixtures, error) {
	var f Fixtures
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("seed: некорректный YAML: %w", err)
	}
	return &f, nil
}
