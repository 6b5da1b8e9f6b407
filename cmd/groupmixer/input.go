// Input-file loading for the groupmixer CLI.
//
// The file mirrors the classic JSON surface:
//
//	{
//	  "problem": {
//	    "people":  [{"id": "p0", "attributes": {"role": "host"}, "sessions": [0, 1]}],
//	    "groups":  [{"id": "g0", "size": 4}],
//	    "num_sessions": 4
//	  },
//	  "objectives":  [{"type": "maximize_unique_contacts", "weight": 1.0}],
//	  "constraints": [
//	    {"type": "MustStayTogether", "people": ["p0", "p1"]},
//	    {"type": "ShouldNotBeTogether", "people": ["p2", "p3"], "penalty_weight": 100},
//	    {"type": "RepeatEncounter", "max_allowed_encounters": 2,
//	     "penalty_function": "squared", "penalty_weight": 10}
//	  ],
//	  "solver": {"solver_type": "SimulatedAnnealing", "stop_conditions": {...}, ...},
//	  "initial_schedule": null
//	}
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/hashicorp/go-set/v3"

	"github.com/guwidoe/GroupMixer-sub001/problem"
)

type inputFile struct {
	Problem struct {
		People []struct {
			ID         string            `json:"id"`
			Attributes map[string]string `json:"attributes"`
			Sessions   []int             `json:"sessions"`
		} `json:"people"`
		Groups []struct {
			ID   string `json:"id"`
			Size int    `json:"size"`
		} `json:"groups"`
		NumSessions int `json:"num_sessions"`
	} `json:"problem"`
	Objectives []struct {
		Type   string  `json:"type"`
		Weight float64 `json:"weight"`
	} `json:"objectives"`
	Constraints     []map[string]any `json:"constraints"`
	Solver          map[string]any   `json:"solver"`
	InitialSchedule [][][]string     `json:"initial_schedule"`
}

// loadInput parses the JSON file into the library's model.
func loadInput(path string) (inputFile, error) {
	var in inputFile
	raw, err := os.ReadFile(path)
	if err != nil {
		return in, fmt.Errorf("reading %s: %w", path, err)
	}
	if err = json.Unmarshal(raw, &in); err != nil {
		return in, fmt.Errorf("parsing %s: %w", path, err)
	}

	return in, nil
}

// toDefinition converts the wire problem block.
func (in inputFile) toDefinition() problem.ProblemDefinition {
	def := problem.ProblemDefinition{NumSessions: in.Problem.NumSessions}
	for _, p := range in.Problem.People {
		person := problem.Person{ID: p.ID, Attributes: p.Attributes}
		if p.Sessions != nil {
			person.Sessions = set.From(p.Sessions)
		}
		def.People = append(def.People, person)
	}
	for _, g := range in.Problem.Groups {
		def.Groups = append(def.Groups, problem.Group{ID: g.ID, Capacity: g.Size})
	}

	return def
}

// toObjectives converts the wire objective list.
func (in inputFile) toObjectives() []problem.Objective {
	out := make([]problem.Objective, 0, len(in.Objectives))
	for _, o := range in.Objectives {
		out = append(out, problem.Objective{Kind: o.Type, Weight: o.Weight})
	}

	return out
}

// wire shapes for the three constraint kinds.
type wireTogether struct {
	People   []string `mapstructure:"people"`
	Sessions []int    `mapstructure:"sessions"`
}

type wireApart struct {
	People   []string `mapstructure:"people"`
	Weight   float64  `mapstructure:"penalty_weight"`
	Sessions []int    `mapstructure:"sessions"`
}

type wireRepeat struct {
	Cap    int     `mapstructure:"max_allowed_encounters"`
	Shape  string  `mapstructure:"penalty_function"`
	Weight float64 `mapstructure:"penalty_weight"`
}

// toConstraints decodes each {"type": ..., ...} entry into its typed kind.
func (in inputFile) toConstraints() ([]problem.Constraint, error) {
	out := make([]problem.Constraint, 0, len(in.Constraints))
	for i, raw := range in.Constraints {
		kind, _ := raw["type"].(string)
		switch kind {
		case "MustStayTogether":
			var w wireTogether
			if err := mapstructure.Decode(raw, &w); err != nil {
				return nil, fmt.Errorf("constraint %d: %w", i, err)
			}
			c := problem.MustStayTogether{People: w.People}
			if w.Sessions != nil {
				c.Sessions = set.From(w.Sessions)
			}
			out = append(out, c)

		case "ShouldNotBeTogether":
			var w wireApart
			if err := mapstructure.Decode(raw, &w); err != nil {
				return nil, fmt.Errorf("constraint %d: %w", i, err)
			}
			c := problem.ShouldNotBeTogether{People: w.People, Weight: w.Weight}
			if w.Sessions != nil {
				c.Sessions = set.From(w.Sessions)
			}
			out = append(out, c)

		case "RepeatEncounter":
			var w wireRepeat
			if err := mapstructure.Decode(raw, &w); err != nil {
				return nil, fmt.Errorf("constraint %d: %w", i, err)
			}
			shape, err := problem.ParsePenaltyShape(w.Shape)
			if err != nil {
				return nil, fmt.Errorf("constraint %d: unknown penalty_function %q", i, w.Shape)
			}
			out = append(out, problem.RepeatEncounter{Cap: w.Cap, Shape: shape, Weight: w.Weight})

		default:
			return nil, fmt.Errorf("constraint %d: unknown type %q", i, kind)
		}
	}

	return out, nil
}
