package display

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// KeyMap maps an object key to its display label.
// Keys with no entry are kept as they are.
type KeyMap map[string]string

// Label returns the display label for key.
func (m KeyMap) Label(key string) string {
	if label, ok := m[key]; ok {
		return label
	}
	return key
}

// KoreanKeyMap returns the labels of the Korean document view.
func KoreanKeyMap() KeyMap {
	return KeyMap{
		"metadata":                            "메타데이터",
		"last_updated":                        "마지막 업데이트",
		"user_development_environment":        "사용자 개발 환경",
		"os":                                  "운영체제",
		"osVersion":                           "OS 버전",
		"pythonVersion":                       "파이썬 버전",
		"hardware":                            "하드웨어",
		"cpuArch":                             "CPU 아키텍처",
		"ide":                                 "IDE",
		"ideVersion":                          "IDE 버전",
		"shell":                               "쉘",
		"llm_instruction_for_code_generation": "LLM 코드 생성 가이드",
		"devops_and_infrastructure_plan":      "DevOps 및 인프라 계획",
		"useDocker":                           "Docker 사용 여부",
		"useCI":                               "CI 사용 여부",
		"ciProvider":                          "CI 도구",
		"deploymentTarget":                    "배포 대상",
		"gitRepoURL":                          "Git 저장소 URL",
		"network_info":                        "네트워크 정보",
		"details":                             "상세 정보",
		"ping_test":                           "핑 테스트",
		"system_details_for_reference":        "참고용 시스템 상세 정보",
		"hardware_info":                       "하드웨어 정보",
		"gpu_info":                            "GPU 정보",
		"python_executable":                   "Python 실행파일 경로",
		"is_venv":                             "가상환경 사용 여부",
		"pip_freeze":                          "pip freeze 결과",
	}
}

// ErrInvalidJSON is returned when the input is not a single JSON value.
var ErrInvalidJSON = errors.New("invalid JSON document")

// TranslateKeys renames every object key in data, at any depth and inside
// arrays, and returns compact JSON.
//
// Key order is preserved. When two keys translate to the same label the
// label keeps the position of its first occurrence and the value of its
// last, which is how an insertion-ordered map behaves on reassignment.
// Strings and numbers are copied verbatim.
func TranslateKeys(data []byte, keys KeyMap) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	out, err := translateValue(dec, keys)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data", ErrInvalidJSON)
	}
	return out, nil
}

// TranslateIndent is TranslateKeys followed by indentation with the
// given prefix and indent.
func TranslateIndent(data []byte, keys KeyMap, prefix, indent string) ([]byte, error) {
	compact, err := TranslateKeys(data, keys)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, prefix, indent); err != nil {
		return nil, fmt.Errorf("indent: %w", err)
	}
	return buf.Bytes(), nil
}

// member is one translated object entry.
type member struct {
	key   string
	value []byte
}

func translateValue(dec *json.Decoder, keys KeyMap) ([]byte, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return translateObject(dec, keys)
		case '[':
			return translateArray(dec, keys)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", v)
		}
	case string:
		return encodeString(v)
	case json.Number:
		return []byte(v.String()), nil
	case bool:
		if v {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case nil:
		return []byte("null"), nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func translateObject(dec *json.Decoder, keys KeyMap) ([]byte, error) {
	var (
		members []member
		index   = make(map[string]int)
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key %v is not a string", tok)
		}
		value, err := translateValue(dec, keys)
		if err != nil {
			return nil, err
		}

		label := keys.Label(key)
		if i, seen := index[label]; seen {
			members[i].value = value
			continue
		}
		index[label] = len(members)
		members = append(members, member{key: label, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range members {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := encodeString(m.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(m.value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func translateArray(dec *json.Decoder, keys KeyMap) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i := 0; dec.More(); i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		value, err := translateValue(dec, keys)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// encodeString quotes s as JSON without escaping HTML characters.
func encodeString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
