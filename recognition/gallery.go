package recognition

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
)

// StudentDirectory resolves roll numbers against the student store. A
// missing roll number is not an error; it reports ok=false.
type StudentDirectory interface {
	FindByRoll(rollNo string) (id uint, name string, ok bool, err error)
}

// Gallery is the immutable label -> identity mapping for one session.
// Reloading requires starting a new session.
type Gallery struct {
	identities map[int]Identity
}

// LoadGallery reads the persisted label map (JSON, label -> roll number,
// written by the training job) and resolves each entry against the student
// directory. A missing mapping file is a ConfigurationError; a roll number
// with no matching student is skipped with a log line, since that identity
// simply cannot be recognized this session.
func LoadGallery(labelMapPath string, directory StudentDirectory) (*Gallery, error) {
	data, err := os.ReadFile(labelMapPath)
	if err != nil {
		return nil, &ConfigurationError{Op: "load label map " + labelMapPath, Err: err}
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigurationError{Op: "parse label map " + labelMapPath, Err: err}
	}

	gallery := &Gallery{identities: make(map[int]Identity, len(raw))}
	for labelStr, rollNo := range raw {
		label, err := strconv.Atoi(labelStr)
		if err != nil {
			return nil, &ConfigurationError{Op: "parse label map " + labelMapPath,
				Err: fmt.Errorf("non-integer label %q", labelStr)}
		}

		id, name, ok, err := directory.FindByRoll(rollNo)
		if err != nil {
			return nil, &ConfigurationError{Op: "resolve roll " + rollNo, Err: err}
		}
		if !ok {
			log.Printf("gallery: no student registered for roll %s (label %d), skipping", rollNo, label)
			continue
		}
		gallery.identities[label] = Identity{Label: label, StudentID: id, RollNo: rollNo, Name: name}
	}

	log.Printf("gallery: loaded %d identities from %s", len(gallery.identities), labelMapPath)
	return gallery, nil
}

// Resolve looks up the identity for a classifier label. Pure lookup, no
// side effects.
func (g *Gallery) Resolve(label int) (Identity, bool) {
	identity, ok := g.identities[label]
	return identity, ok
}

// Size returns the number of resolvable identities.
func (g *Gallery) Size() int {
	return len(g.identities)
}
