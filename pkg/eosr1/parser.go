package eosr1

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"
)

// SignatureParser defines the interface for loading raw signatures from various sources.
type SignatureParser interface {
	// ParseSignatures parses raw (r, s) signatures from a source and returns them.
	ParseSignatures(source string) ([]*RawSignature, error)
}

// JSONParser parses raw signatures from JSON files.
type JSONParser struct {
	MessageField string // Field name for message (default: "message")
	RField       string // Field name for r (default: "r")
	SField       string // Field name for s (default: "s")
	ZField       string // Field name for z/digest (default: "z", empty = hash message)
}

// ParseSignatures parses raw signatures from a JSON file.
//
// Expected format:
//
//	[
//	  {"message": "...", "r": "...", "s": "..."},
//	  {"z": "0x...", "r": "0x...", "s": "0x..."}
//	]
//
// Integers are decimal unless prefixed with 0x or containing hex letters.
func (p *JSONParser) ParseSignatures(jsonFile string) ([]*RawSignature, error) {
	file, err := os.Open(jsonFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.UseNumber() // Preserve large numbers as json.Number instead of float64

	var items []map[string]interface{}
	if err := decoder.Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	messageField := orDefault(p.MessageField, "message")
	rField := orDefault(p.RField, "r")
	sField := orDefault(p.SField, "s")
	zField := orDefault(p.ZField, "z")

	signatures := make([]*RawSignature, 0, len(items))
	for i, item := range items {
		sig := &RawSignature{}

		if zVal, ok := item[zField]; ok {
			z, err := parseBigInt(zVal)
			if err != nil {
				return nil, fmt.Errorf("record %d: failed to parse z: %w", i, err)
			}
			sig.Z = z
		} else if msgVal, ok := item[messageField]; ok {
			message, ok := msgVal.(string)
			if !ok {
				return nil, fmt.Errorf("record %d: message field must be a string", i)
			}
			sig.Z = new(big.Int).SetBytes(HashMessage([]byte(message)))
		} else {
			return nil, fmt.Errorf("record %d: missing message or z field", i)
		}

		rVal, ok := item[rField]
		if !ok {
			return nil, fmt.Errorf("record %d: missing r field", i)
		}
		if sig.R, err = parseBigInt(rVal); err != nil {
			return nil, fmt.Errorf("record %d: failed to parse r: %w", i, err)
		}

		sVal, ok := item[sField]
		if !ok {
			return nil, fmt.Errorf("record %d: missing s field", i)
		}
		if sig.S, err = parseBigInt(sVal); err != nil {
			return nil, fmt.Errorf("record %d: failed to parse s: %w", i, err)
		}

		signatures = append(signatures, sig)
	}

	return signatures, nil
}

// CSVParser parses raw signatures from CSV files with a header row.
type CSVParser struct {
	MessageCol string // Column name for message (default: "message")
	RCol       string // Column name for r (default: "r")
	SCol       string // Column name for s (default: "s")
	ZCol       string // Column name for z/digest (default: "z")
}

// ParseSignatures parses raw signatures from a CSV file.
func (p *CSVParser) ParseSignatures(csvFile string) ([]*RawSignature, error) {
	file, err := os.Open(csvFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	messageCol := orDefault(p.MessageCol, "message")
	rCol := orDefault(p.RCol, "r")
	sCol := orDefault(p.SCol, "s")
	zCol := orDefault(p.ZCol, "z")

	messageIdx, rIdx, sIdx, zIdx := -1, -1, -1, -1
	for i, col := range header {
		switch col {
		case messageCol:
			messageIdx = i
		case rCol:
			rIdx = i
		case sCol:
			sIdx = i
		case zCol:
			zIdx = i
		}
	}
	if rIdx == -1 || sIdx == -1 {
		return nil, fmt.Errorf("missing required columns: r or s")
	}
	if zIdx == -1 && messageIdx == -1 {
		return nil, fmt.Errorf("missing message or z column")
	}

	signatures := make([]*RawSignature, 0)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		sig := &RawSignature{}
		if zIdx >= 0 && record[zIdx] != "" {
			if sig.Z, err = parseBigInt(record[zIdx]); err != nil {
				return nil, fmt.Errorf("line %d: failed to parse z: %w", line, err)
			}
		} else if messageIdx >= 0 {
			sig.Z = new(big.Int).SetBytes(HashMessage([]byte(record[messageIdx])))
		} else {
			return nil, fmt.Errorf("line %d: missing message or z value", line)
		}

		if sig.R, err = parseBigInt(record[rIdx]); err != nil {
			return nil, fmt.Errorf("line %d: failed to parse r: %w", line, err)
		}
		if sig.S, err = parseBigInt(record[sIdx]); err != nil {
			return nil, fmt.Errorf("line %d: failed to parse s: %w", line, err)
		}

		signatures = append(signatures, sig)
	}

	return signatures, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// parseBigInt parses a non-negative big integer from a hex string (0x prefix
// or hex letters), a decimal string or a JSON number.
func parseBigInt(val interface{}) (*big.Int, error) {
	var s string
	switch v := val.(type) {
	case string:
		s = strings.TrimSpace(v)
	case json.Number:
		s = v.String()
	case int64:
		return big.NewInt(v), nil
	case int:
		return big.NewInt(int64(v)), nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", val)
	}

	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	} else if strings.ContainsAny(s, "abcdefABCDEF") {
		base = 16
	}

	z, ok := new(big.Int).SetString(s, base)
	if !ok || z.Sign() < 0 {
		return nil, fmt.Errorf("invalid number format: %v", val)
	}
	return z, nil
}
