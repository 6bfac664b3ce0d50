package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/jwebster45206/npc-engine/internal/config"
	"github.com/jwebster45206/npc-engine/internal/storage"
	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/clock"
	"github.com/jwebster45206/npc-engine/pkg/dialogue"
	"github.com/jwebster45206/npc-engine/pkg/schedule"
	pkgstorage "github.com/jwebster45206/npc-engine/pkg/storage"
)

func main() {
	dataDir := flag.String("data", "./data", "data directory holding npcs/, dialogue/ and pcs/")
	tuningFile := flag.String("tuning", "", "optional tuning YAML file to check")
	flag.Parse()

	v := NewValidator()
	if *tuningFile != "" {
		tuning, err := config.LoadTuning(*tuningFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			os.Exit(1)
		}
		v.clock = tuning.Clock
	}

	if err := v.ValidateDir(*dataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Data in %s is valid! (%d npcs, %d dialogues, %d pcs)\n",
		*dataDir, len(v.npcs), v.dialogues, v.pcs)
}

// Validator checks NPC, dialogue and PC definition files.
type Validator struct {
	clock     clock.Clock
	npcs      map[string]bool
	dialogues int
	pcs       int
	errors    []string
}

func NewValidator() *Validator {
	return &Validator{clock: clock.Default(), npcs: make(map[string]bool)}
}

// ValidateDir checks every definition under dir and returns one error
// listing all problems found.
func (v *Validator) ValidateDir(dir string) error {
	v.errors = nil

	npcFiles, err := jsonFiles(filepath.Join(dir, "npcs"))
	if err != nil {
		return err
	}
	for _, f := range npcFiles {
		v.validateNPCFile(f)
	}

	dialogueFiles, err := jsonFiles(filepath.Join(dir, "dialogue"))
	if err != nil {
		return err
	}
	for _, f := range dialogueFiles {
		v.validateDialogueFile(f)
	}

	pcFiles, err := jsonFiles(filepath.Join(dir, "pcs"))
	if err != nil {
		return err
	}
	for _, f := range pcFiles {
		v.validatePCFile(f)
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", dir, strings.Join(v.errors, "\n"))
	}
	return nil
}

func jsonFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// readStrict decodes a file rejecting unknown fields. It returns the file's
// id (its name without .json) and false if the file could not be decoded.
func (v *Validator) readStrict(path string, target any) (string, bool) {
	id := strings.TrimSuffix(filepath.Base(path), ".json")
	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s: filename must be lowercase snake_case", path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		v.addError(fmt.Sprintf("%s: %v", path, err))
		return id, false
	}
	if !json.Valid(data) {
		v.addError(fmt.Sprintf("%s: invalid JSON", path))
		return id, false
	}
	if target == nil {
		return id, true
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		v.addError(fmt.Sprintf("%s: failed strict JSON unmarshaling: %v", path, err))
		return id, false
	}
	return id, true
}

func (v *Validator) validateNPCFile(path string) {
	var def pkgstorage.NPCDefinition
	id, ok := v.readStrict(path, &def)
	if !ok {
		return
	}
	v.npcs[id] = true

	if def.ID != "" && def.ID != id {
		v.addError(fmt.Sprintf("%s: id %q does not match filename", path, def.ID))
	}
	v.validateIDFormat(path, "home", def.Home)
	v.validateIDFormat(path, "workplace", def.Workplace)
	v.validateIDFormat(path, "faction", def.Faction)
	if def.Home == "" && def.Location == "" {
		v.addError(fmt.Sprintf("%s: needs a home or a starting location", path))
	}

	hours := v.clock.HoursPerDay
	for i, e := range def.Schedule {
		if !e.Valid(hours) {
			v.addError(fmt.Sprintf("%s: schedule entry %d has invalid hours %d-%d", path, i, e.StartHour, e.EndHour))
		}
		if e.LocationID == "" {
			v.addError(fmt.Sprintf("%s: schedule entry %d has no location", path, i))
		}
	}
	sorted := slices.Clone(def.Schedule)
	schedule.SortEntries(sorted)
	if schedule.Overlapping(sorted) {
		v.addError(fmt.Sprintf("%s: schedule entries overlap", path))
	}
	for day, loc := range def.WeeklyOverrides {
		if day < 0 || day >= v.clock.DaysPerWeek {
			v.addError(fmt.Sprintf("%s: weekly override for day %d is outside the week", path, day))
		}
		v.validateIDFormat(path, "weekly override location", loc)
	}
	for hour, loc := range def.ForcedLocations {
		if hour < 0 || hour >= hours {
			v.addError(fmt.Sprintf("%s: forced location for hour %d is outside the day", path, hour))
		}
		v.validateIDFormat(path, "forced location", loc)
	}
}

func (v *Validator) validateDialogueFile(path string) {
	id, ok := v.readStrict(path, nil)
	if !ok {
		return
	}
	v.dialogues++
	if !v.npcs[id] {
		v.addError(fmt.Sprintf("%s: no NPC definition named %s", path, id))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		v.addError(fmt.Sprintf("%s: %v", path, err))
		return
	}
	nodes, err := storage.DecodeDialogue(data)
	if err != nil {
		v.addError(fmt.Sprintf("%s: %v", path, err))
		return
	}
	if len(nodes) == 0 {
		v.addError(fmt.Sprintf("%s: dialogue has no nodes", path))
		return
	}
	for _, err := range dialogue.Validate(nodes) {
		v.addError(fmt.Sprintf("%s: %v", path, err))
	}
	for _, n := range nodes {
		v.validateIDFormat(path, "node id", n.ID)
		for _, r := range n.Responses {
			v.validateIDFormat(path, "response id", r.ID)
		}
	}
}

func (v *Validator) validatePCFile(path string) {
	var spec actor.PCSpec
	id, ok := v.readStrict(path, &spec)
	if !ok {
		return
	}
	v.pcs++
	if spec.ID == "" {
		spec.ID = id
	}
	if _, err := actor.NewPCFromSpec(&spec); err != nil {
		v.addError(fmt.Sprintf("%s: %v", path, err))
	}
}

func (v *Validator) validateIDFormat(path, fieldName, id string) {
	if id == "" {
		return
	}
	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s: %s '%s' should be lowercase snake_case", path, fieldName, id))
	}
}

func (v *Validator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}
