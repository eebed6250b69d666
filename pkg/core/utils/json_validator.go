package utils

import (
	"encoding/json"
	"fmt"
	"reflect"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// ParseStrategy names the decoder that accepted a document.
type ParseStrategy string

const (
	StrategyJSON     ParseStrategy = "json"
	StrategyRepaired ParseStrategy = "json-repair"
	StrategyHJSON    ParseStrategy = "hjson"
)

// RepairJSON fixes common hand-editing mistakes in JSON documents:
// missing quotes around keys, single quotes, trailing commas, comments,
// unclosed arrays/objects and surrounding markdown code fences.
func RepairJSON(malformedJSON string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformedJSON)
	if err != nil {
		return "", fmt.Errorf("JSON_REPAIR_FAILED: %v", err)
	}
	return repaired, nil
}

// ParseHJSON parses Human-friendly JSON (Hjson) and returns standard JSON.
// Hjson allows comments, unquoted keys and strings, and optional commas.
func ParseHJSON(hjsonData string) (string, error) {
	var result interface{}
	if err := hjson.Unmarshal([]byte(hjsonData), &result); err != nil {
		return "", fmt.Errorf("HJSON_PARSE_ERROR: %v", err)
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("JSON_MARSHAL_ERROR: %v", err)
	}
	return string(jsonBytes), nil
}

// SmartParse decodes input into target, trying in order:
// 1. Standard JSON
// 2. JSON repair
// 3. Hjson (most lenient)
// Each attempt decodes into a fresh value; target is only written by the
// strategy that succeeds. It returns that strategy.
func SmartParse(input string, target interface{}) (ParseStrategy, error) {
	firstErr := decodeFresh([]byte(input), target)
	if firstErr == nil {
		return StrategyJSON, nil
	}

	if repaired, err := RepairJSON(input); err == nil {
		if err := decodeFresh([]byte(repaired), target); err == nil {
			return StrategyRepaired, nil
		}
	}

	if converted, err := ParseHJSON(input); err == nil {
		if err := decodeFresh([]byte(converted), target); err == nil {
			return StrategyHJSON, nil
		}
	}

	return "", fmt.Errorf("SMART_PARSE_FAILED: all parsing strategies failed: %v", firstErr)
}

// decodeFresh unmarshals into a zero value of target's element type and
// copies it over target on success.
func decodeFresh(data []byte, target interface{}) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		// Let encoding/json report the invalid target.
		return json.Unmarshal(data, target)
	}
	fresh := reflect.New(rv.Elem().Type())
	if err := json.Unmarshal(data, fresh.Interface()); err != nil {
		return err
	}
	rv.Elem().Set(fresh.Elem())
	return nil
}
